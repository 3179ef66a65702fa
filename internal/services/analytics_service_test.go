package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/cache"
	"github.com/hireloop/hireloop/internal/models"
)

func timelineOf(statuses ...models.CandidateStatus) []models.TimelineEntry {
	out := make([]models.TimelineEntry, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, models.TimelineEntry{Type: string(s)})
	}
	return out
}

func TestComputeFunnelCountsRejectedByHistory(t *testing.T) {
	cands := []models.Candidate{
		{ID: "1", Status: models.StatusApplied},
		{ID: "2", Status: models.StatusInterview},
		{ID: "3", Status: models.StatusHired},
		{ID: "4", Status: models.StatusRejected, Timeline: timelineOf(models.StatusApplied, models.StatusScreening, models.StatusRejected)},
	}
	f := computeFunnel(cands)

	assert.Equal(t, 4, f.Total)
	counts := map[models.CandidateStatus]int{}
	for _, s := range f.Stages {
		counts[s.Stage] = s.Count
	}
	assert.Equal(t, 4, counts[models.StatusApplied])
	assert.Equal(t, 3, counts[models.StatusScreening])
	assert.Equal(t, 2, counts[models.StatusInterview])
	assert.Equal(t, 1, counts[models.StatusOffer])
	assert.Equal(t, 1, counts[models.StatusHired])
	assert.Equal(t, 1, f.Rejected)
	assert.Equal(t, 75.0, f.Stages[1].Percentage)
}

func TestComputeComplianceFlagsAdverseImpact(t *testing.T) {
	var cands []models.Candidate
	add := func(group string, applicants, hires int) {
		for i := 0; i < applicants; i++ {
			st := models.StatusRejected
			if i < hires {
				st = models.StatusHired
			}
			cands = append(cands, models.Candidate{Status: st, Demographics: &models.Demographics{Gender: group}})
		}
	}
	add("female", 10, 3)
	add("male", 10, 5)
	cands = append(cands, models.Candidate{Status: models.StatusHired})

	r := computeCompliance(cands, "gender")
	require.Len(t, r.Groups, 2)
	assert.Equal(t, 1, r.Undisclosed)

	female, male := r.Groups[0], r.Groups[1]
	assert.Equal(t, "female", female.Group)
	assert.InDelta(t, 0.3, female.SelectionRate, 1e-9)
	assert.InDelta(t, 0.6, female.ImpactRatio, 1e-9)
	assert.True(t, female.AdverseImpact)
	assert.InDelta(t, 1.0, male.ImpactRatio, 1e-9)
	assert.False(t, male.AdverseImpact)
}

func TestComputeMetricsAndTimeToHire(t *testing.T) {
	created := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	hired10 := created.Add(10 * 24 * time.Hour)
	hired20 := created.Add(20 * 24 * time.Hour)

	jobs := []models.Job{
		{ID: "j1", Department: "Engineering", Status: models.JobActive},
		{ID: "j2", Department: "Sales", Status: models.JobClosed},
	}
	cands := []models.Candidate{
		{ID: "1", JobID: "j1", Status: models.StatusHired, CreatedAt: created, HiredAt: &hired10},
		{ID: "2", JobID: "j2", Status: models.StatusHired, CreatedAt: created, HiredAt: &hired20},
		{ID: "3", JobID: "j1", Status: models.StatusApplied, CreatedAt: created},
	}
	offers := []models.Offer{
		{CandidateID: "1", Status: models.OfferAccepted},
		{CandidateID: "2", Status: models.OfferAccepted},
		{CandidateID: "3", Status: models.OfferDeclined},
		{CandidateID: "4", Status: models.OfferDraft},
	}
	ivs := []models.Interview{{Status: models.InterviewScheduled}, {Status: models.InterviewCompleted}}

	m := computeMetrics(cands, jobs, ivs, offers)
	assert.Equal(t, 3, m.TotalCandidates)
	assert.Equal(t, 1, m.ActiveJobs)
	assert.Equal(t, 1, m.InterviewsScheduled)
	assert.Equal(t, 3, m.OffersSent)
	assert.Equal(t, 2, m.OffersAccepted)
	assert.Equal(t, 2, m.Hires)
	assert.InDelta(t, 66.67, m.OfferAcceptanceRate, 1e-9)
	assert.InDelta(t, 15.0, m.AvgTimeToHireDays, 1e-9)

	tth := computeTimeToHire(cands, jobs)
	assert.Equal(t, 2, tth.Overall.Hires)
	assert.InDelta(t, 15.0, tth.Overall.MedianDays, 1e-9)
	assert.InDelta(t, 10.0, tth.ByDepartment["Engineering"].AvgDays, 1e-9)
	assert.InDelta(t, 20.0, tth.ByDepartment["Sales"].AvgDays, 1e-9)
}

func TestComputeSourcesAndInterviews(t *testing.T) {
	r3, r5 := 3, 5
	cands := []models.Candidate{
		{ID: "1", Source: models.SourceReferral, Status: models.StatusHired},
		{ID: "2", Source: models.SourceReferral, Status: models.StatusRejected},
		{ID: "3", Source: models.SourceLinkedIn, Status: models.StatusApplied},
	}
	ivs := []models.Interview{
		{CandidateID: "1", Status: models.InterviewCompleted, Type: models.InterviewVideo, Rating: &r5},
		{CandidateID: "2", Status: models.InterviewCompleted, Type: models.InterviewPhone, Rating: &r3},
		{CandidateID: "2", Status: models.InterviewNoShow, Type: models.InterviewPhone},
		{CandidateID: "3", Status: models.InterviewScheduled, Type: models.InterviewPhone},
		{CandidateID: "3", Status: models.InterviewCancelled, Type: models.InterviewVideo},
	}
	offers := []models.Offer{{CandidateID: "1", Status: models.OfferAccepted}}

	stats := computeSources(cands, ivs, offers)
	require.Len(t, stats, 2)
	assert.Equal(t, models.SourceReferral, stats[0].Source)
	assert.Equal(t, 2, stats[0].Applicants)
	assert.Equal(t, 2, stats[0].Interviews)
	assert.Equal(t, 1, stats[0].Offers)
	assert.Equal(t, 50.0, stats[0].HireRate)

	im := computeInterviewMetrics(ivs)
	assert.Equal(t, 5, im.Total)
	assert.Equal(t, 3, im.ByType[models.InterviewPhone])
	assert.Equal(t, 1, im.ByStatus[models.InterviewCancelled])
	// cancelled interviews stay out of the rate denominator
	assert.InDelta(t, 66.67, im.CompletionRate, 1e-9)
	assert.InDelta(t, 33.33, im.NoShowRate, 1e-9)
	assert.InDelta(t, 4.0, im.AvgRating, 1e-9)
}

func TestAnalyticsServesFromCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := newHarness(1)
	createJane(t, h, h.seedJob("Cache"))

	svc := NewAnalyticsService(h.candidates, h.jobs, h.interviews, h.offers, cache.NewRedisCache(rdb, "analytics:"), time.Minute)
	m, err := svc.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalCandidates)

	_, err = h.candidateSvc.Create(ctx, actorOf(recruiter), CreateCandidateInput{Name: "Second", Email: "s@example.com", JobID: "job-cache"})
	require.NoError(t, err)

	m, err = svc.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalCandidates, "served from cache")

	uncached := NewAnalyticsService(h.candidates, h.jobs, h.interviews, h.offers, nil, 0)
	m, err = uncached.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalCandidates)

	// a zero ttl bypasses redis even when a cache is wired
	zeroTTL := NewAnalyticsService(h.candidates, h.jobs, h.interviews, h.offers, cache.NewRedisCache(rdb, "analytics:"), 0)
	m, err = zeroTTL.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalCandidates)

	_, err = svc.Compliance(ctx, "zodiac")
	assert.Error(t, err)
}
