package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
)

func createJane(t *testing.T, h *harness, job *models.Job) *models.Candidate {
	t.Helper()
	c, err := h.candidateSvc.Create(context.Background(), actorOf(recruiter), CreateCandidateInput{
		Name:   "Jane Doe",
		Email:  "jane@example.com",
		JobID:  job.ID,
		Skills: []string{"Go", "go", " SQL "},
		Source: models.SourceReferral,
	})
	require.NoError(t, err)
	return c
}

func TestCandidateLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	job := h.seedJob("Backend Engineer")

	c := createJane(t, h, job)
	assert.Equal(t, models.StatusApplied, c.Status)
	require.Len(t, c.Timeline, 1)
	assert.Equal(t, "Application Received", c.Timeline[0].Title)
	assert.Equal(t, []string{"Go", "SQL"}, c.Skills)
	assert.Equal(t, "Backend Engineer", c.Position)

	c, err := h.candidateSvc.Advance(ctx, actorOf(recruiter), c.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScreening, c.Status)
	assert.Len(t, c.Timeline, 2)

	c, err = h.candidateSvc.Reject(ctx, actorOf(recruiter), c.ID, "not a fit")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, c.Status)
	assert.Len(t, c.Timeline, 3)

	_, err = h.candidateSvc.Advance(ctx, actorOf(recruiter), c.ID, "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidTransition))

	stored, err := h.candidates.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
	assert.Len(t, stored.Timeline, 3)

	updated, _ := h.jobs.GetByID(ctx, job.ID)
	assert.EqualValues(t, 1, updated.ApplicantCount)
}

func TestEveryTransitionAppendsOneMatchingTimelineEntry(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("SRE"))

	want := []models.CandidateStatus{models.StatusScreening, models.StatusInterview, models.StatusOffer, models.StatusHired}
	for i, status := range want {
		got, err := h.candidateSvc.Advance(ctx, actorOf(recruiter), c.ID, "")
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
		require.Len(t, got.Timeline, i+2)
		assert.Equal(t, string(status), got.Timeline[i+1].Type)
	}

	hired, _ := h.candidates.GetByID(ctx, c.ID)
	require.NotNil(t, hired.HiredAt)

	_, err := h.candidateSvc.Reject(ctx, actorOf(recruiter), c.ID, "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidTransition))
}

func TestTransitionIsIdempotentAndRejectsSkips(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Designer"))

	_, err := h.candidateSvc.Transition(ctx, c.ID, models.StatusInterview, "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidTransition))

	got, err := h.candidateSvc.Transition(ctx, c.ID, models.StatusApplied, "")
	require.NoError(t, err)
	assert.Len(t, got.Timeline, 1)
}

func TestConcurrentStatusChangeIsConflict(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Analyst"))

	// someone else moved the candidate after we read it
	stale, _ := h.candidates.GetByID(ctx, c.ID)
	_, err := h.candidateSvc.Advance(ctx, actorOf(recruiter), c.ID, "")
	require.NoError(t, err)

	svc := h.candidateSvc.(*candidateService)
	err = svc.apply(ctx, "test", stale, models.StatusScreening, "")
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
}

func TestCreateCandidateValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	job := h.seedJob("QA")

	_, err := h.candidateSvc.Create(ctx, actorOf(recruiter), CreateCandidateInput{Name: "", Email: "a@b.c", JobID: job.ID})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = h.candidateSvc.Create(ctx, actorOf(recruiter), CreateCandidateInput{Name: "A", Email: "nope", JobID: job.ID})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = h.candidateSvc.Create(ctx, actorOf(recruiter), CreateCandidateInput{Name: "A", Email: "a@b.c", JobID: "missing"})
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	require.NoError(t, h.jobs.SetStatus(ctx, job.ID, models.JobClosed, job.UpdatedAt))
	_, err = h.candidateSvc.Create(ctx, actorOf(recruiter), CreateCandidateInput{Name: "A", Email: "a@b.c", JobID: job.ID})
	assert.True(t, utils.IsCode(err, utils.CodeFailedPrecondition))
}

func TestStatusChangeFansOutToHiringTeam(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("PM"))

	_, err := h.candidateSvc.Advance(ctx, actorOf(recruiter), c.ID, "strong resume")
	require.NoError(t, err)

	entries := h.activity.byAction(models.ActionStatusChanged)
	require.Len(t, entries, 1)
	assert.Equal(t, "Riley Recruiter", entries[0].ActorName)
	assert.Equal(t, "Jane Doe", entries[0].TargetName)

	notes := h.sink.For(manager.ID)
	require.Len(t, notes, 2) // created + advanced
	assert.Equal(t, models.NotifyStatus, notes[1].Kind)
	assert.Equal(t, "strong resume", notes[1].Body)
	assert.Empty(t, h.sink.For(recruiter.ID))

	assert.Contains(t, h.publisher.actions, models.ActionStatusChanged)
}

func TestUpdateEvaluationBounds(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Data"))

	_, err := h.candidateSvc.UpdateEvaluation(ctx, actorOf(recruiter), c.ID, models.Evaluation{Overall: 101})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	got, err := h.candidateSvc.UpdateEvaluation(ctx, actorOf(recruiter), c.ID, models.Evaluation{Overall: 88, Technical: 90})
	require.NoError(t, err)
	assert.Equal(t, 88.0, got.Evaluation.Overall)
}

func TestGetWithRelations(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Ops"))

	_, err := h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{
		EntityType: models.EntityCandidate,
		EntityID:   c.ID,
		Content:    "great call",
	})
	require.NoError(t, err)

	d, err := h.candidateSvc.GetWithRelations(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, d.Candidate.ID)
	require.NotNil(t, d.Job)
	assert.Equal(t, "Ops", d.Job.Title)
	assert.Len(t, d.Comments, 1)
	assert.Empty(t, d.Interviews)
	assert.Empty(t, d.Offers)
}
