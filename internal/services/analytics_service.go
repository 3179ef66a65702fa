package services

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hireloop/hireloop/internal/cache"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/pipeline"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	"github.com/hireloop/hireloop/internal/utils"
)

// fourFifths is the EEOC adverse impact threshold.
const fourFifths = 0.8

type HiringMetrics struct {
	TotalCandidates     int     `json:"total_candidates"`
	ActiveJobs          int     `json:"active_jobs"`
	InterviewsScheduled int     `json:"interviews_scheduled"`
	OffersSent          int     `json:"offers_sent"`
	OffersAccepted      int     `json:"offers_accepted"`
	Hires               int     `json:"hires"`
	OfferAcceptanceRate float64 `json:"offer_acceptance_rate"`
	AvgTimeToHireDays   float64 `json:"avg_time_to_hire_days"`
}

type FunnelStage struct {
	Stage      models.CandidateStatus `json:"stage"`
	Count      int                    `json:"count"`
	Percentage float64                `json:"percentage"`
}

type Funnel struct {
	Total     int           `json:"total"`
	Stages    []FunnelStage `json:"stages"`
	Rejected  int           `json:"rejected"`
	Withdrawn int           `json:"withdrawn"`
}

type HireDuration struct {
	Hires      int     `json:"hires"`
	AvgDays    float64 `json:"avg_days"`
	MedianDays float64 `json:"median_days"`
}

type TimeToHire struct {
	Overall      HireDuration            `json:"overall"`
	ByDepartment map[string]HireDuration `json:"by_department"`
}

type SourceStats struct {
	Source     models.CandidateSource `json:"source"`
	Applicants int                    `json:"applicants"`
	Interviews int                    `json:"interviews"`
	Offers     int                    `json:"offers"`
	Hires      int                    `json:"hires"`
	HireRate   float64                `json:"hire_rate"`
}

type InterviewMetrics struct {
	Total          int                            `json:"total"`
	ByStatus       map[models.InterviewStatus]int `json:"by_status"`
	ByType         map[models.InterviewType]int   `json:"by_type"`
	CompletionRate float64                        `json:"completion_rate"`
	NoShowRate     float64                        `json:"no_show_rate"`
	AvgRating      float64                        `json:"avg_rating"`
}

type ComplianceGroup struct {
	Group         string  `json:"group"`
	Applicants    int     `json:"applicants"`
	Hires         int     `json:"hires"`
	SelectionRate float64 `json:"selection_rate"`
	ImpactRatio   float64 `json:"impact_ratio"`
	AdverseImpact bool    `json:"adverse_impact"`
}

type ComplianceReport struct {
	Dimension   string            `json:"dimension"`
	Groups      []ComplianceGroup `json:"groups"`
	Undisclosed int               `json:"undisclosed"`
	Threshold   float64           `json:"threshold"`
}

type AnalyticsService interface {
	Metrics(ctx context.Context) (*HiringMetrics, error)
	Funnel(ctx context.Context, jobID string) (*Funnel, error)
	TimeToHire(ctx context.Context) (*TimeToHire, error)
	Sources(ctx context.Context) ([]SourceStats, error)
	Interviews(ctx context.Context) (*InterviewMetrics, error)
	Compliance(ctx context.Context, dimension string) (*ComplianceReport, error)
}

type analyticsService struct {
	candidates mongorepo.CandidateRepository
	jobs       mongorepo.JobRepository
	interviews mongorepo.InterviewRepository
	offers     mongorepo.OfferRepository
	cache      cache.Cache
	ttl        time.Duration
}

// NewAnalyticsService builds read-only reports over full scans. A nil cache or
// zero ttl disables caching.
func NewAnalyticsService(
	candidates mongorepo.CandidateRepository,
	jobs mongorepo.JobRepository,
	interviews mongorepo.InterviewRepository,
	offers mongorepo.OfferRepository,
	c cache.Cache,
	ttl time.Duration,
) AnalyticsService {
	return &analyticsService{candidates: candidates, jobs: jobs, interviews: interviews, offers: offers, cache: c, ttl: ttl}
}

type snapshot struct {
	candidates []models.Candidate
	jobs       []models.Job
	interviews []models.Interview
	offers     []models.Offer
}

func (s *analyticsService) snapshot(ctx context.Context, op string) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.candidates, err = s.candidates.List(gctx, mongorepo.CandidateFilter{})
		return err
	})
	g.Go(func() (err error) {
		snap.jobs, err = s.jobs.List(gctx, mongorepo.JobFilter{})
		return err
	})
	g.Go(func() (err error) {
		snap.interviews, err = s.interviews.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.offers, err = s.offers.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load analytics data", err)
	}
	return snap, nil
}

func (s *analyticsService) Metrics(ctx context.Context) (*HiringMetrics, error) {
	const op = "AnalyticsService.Metrics"

	return cache.Remember(ctx, s.cache, "metrics", s.ttl, func(ctx context.Context) (*HiringMetrics, error) {
		snap, err := s.snapshot(ctx, op)
		if err != nil {
			return nil, err
		}
		m := computeMetrics(snap.candidates, snap.jobs, snap.interviews, snap.offers)
		return &m, nil
	})
}

func (s *analyticsService) Funnel(ctx context.Context, jobID string) (*Funnel, error) {
	const op = "AnalyticsService.Funnel"

	return cache.Remember(ctx, s.cache, "funnel:"+jobID, s.ttl, func(ctx context.Context) (*Funnel, error) {
		cands, err := s.candidates.List(ctx, mongorepo.CandidateFilter{JobID: jobID})
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to load candidates", err)
		}
		f := computeFunnel(cands)
		return &f, nil
	})
}

func (s *analyticsService) TimeToHire(ctx context.Context) (*TimeToHire, error) {
	const op = "AnalyticsService.TimeToHire"

	return cache.Remember(ctx, s.cache, "time-to-hire", s.ttl, func(ctx context.Context) (*TimeToHire, error) {
		snap, err := s.snapshot(ctx, op)
		if err != nil {
			return nil, err
		}
		t := computeTimeToHire(snap.candidates, snap.jobs)
		return &t, nil
	})
}

func (s *analyticsService) Sources(ctx context.Context) ([]SourceStats, error) {
	const op = "AnalyticsService.Sources"

	out, err := cache.Remember(ctx, s.cache, "sources", s.ttl, func(ctx context.Context) (*[]SourceStats, error) {
		snap, err := s.snapshot(ctx, op)
		if err != nil {
			return nil, err
		}
		stats := computeSources(snap.candidates, snap.interviews, snap.offers)
		return &stats, nil
	})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (s *analyticsService) Interviews(ctx context.Context) (*InterviewMetrics, error) {
	const op = "AnalyticsService.Interviews"

	return cache.Remember(ctx, s.cache, "interviews", s.ttl, func(ctx context.Context) (*InterviewMetrics, error) {
		ivs, err := s.interviews.ListAll(ctx)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to load interviews", err)
		}
		m := computeInterviewMetrics(ivs)
		return &m, nil
	})
}

func (s *analyticsService) Compliance(ctx context.Context, dimension string) (*ComplianceReport, error) {
	const op = "AnalyticsService.Compliance"

	if dimension == "" {
		dimension = "gender"
	}
	if _, ok := demographicGetters[dimension]; !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown dimension "+dimension, nil)
	}
	return cache.Remember(ctx, s.cache, "compliance:"+dimension, s.ttl, func(ctx context.Context) (*ComplianceReport, error) {
		cands, err := s.candidates.List(ctx, mongorepo.CandidateFilter{})
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to load candidates", err)
		}
		r := computeCompliance(cands, dimension)
		return &r, nil
	})
}

func computeMetrics(cands []models.Candidate, jobs []models.Job, ivs []models.Interview, offers []models.Offer) HiringMetrics {
	m := HiringMetrics{TotalCandidates: len(cands)}
	for _, j := range jobs {
		if j.Status == models.JobActive {
			m.ActiveJobs++
		}
	}
	for _, iv := range ivs {
		if iv.Status == models.InterviewScheduled {
			m.InterviewsScheduled++
		}
	}
	declined := 0
	for _, o := range offers {
		switch o.Status {
		case models.OfferSent, models.OfferExpired, models.OfferWithdrawn:
			m.OffersSent++
		case models.OfferAccepted:
			m.OffersSent++
			m.OffersAccepted++
		case models.OfferDeclined:
			m.OffersSent++
			declined++
		}
	}
	if answered := m.OffersAccepted + declined; answered > 0 {
		m.OfferAcceptanceRate = round2(float64(m.OffersAccepted) / float64(answered) * 100)
	}

	var days []float64
	for _, c := range cands {
		if c.Status == models.StatusHired {
			m.Hires++
		}
		if d, ok := hireDays(c); ok {
			days = append(days, d)
		}
	}
	m.AvgTimeToHireDays = round2(mean(days))
	return m
}

// reachedStage counts candidates at or beyond stage, plus candidates who left
// the pipeline after passing through it.
func reachedStage(c models.Candidate, stage models.CandidateStatus) bool {
	if r := pipeline.Rank(c.Status); r >= 0 {
		return r >= pipeline.Rank(stage)
	}
	return stage == models.StatusApplied || c.ReachedStage(stage)
}

func computeFunnel(cands []models.Candidate) Funnel {
	f := Funnel{Total: len(cands)}
	for _, stage := range pipeline.Stages() {
		n := 0
		for _, c := range cands {
			if reachedStage(c, stage) {
				n++
			}
		}
		f.Stages = append(f.Stages, FunnelStage{Stage: stage, Count: n, Percentage: percent(n, len(cands))})
	}
	for _, c := range cands {
		switch c.Status {
		case models.StatusRejected:
			f.Rejected++
		case models.StatusWithdrawn:
			f.Withdrawn++
		}
	}
	return f
}

func computeTimeToHire(cands []models.Candidate, jobs []models.Job) TimeToHire {
	deptOf := make(map[string]string, len(jobs))
	for _, j := range jobs {
		deptOf[j.ID] = j.Department
	}

	var all []float64
	byDept := map[string][]float64{}
	for _, c := range cands {
		d, ok := hireDays(c)
		if !ok {
			continue
		}
		all = append(all, d)
		dept := deptOf[c.JobID]
		if dept == "" {
			dept = "Unknown"
		}
		byDept[dept] = append(byDept[dept], d)
	}

	out := TimeToHire{Overall: summarize(all), ByDepartment: make(map[string]HireDuration, len(byDept))}
	for dept, ds := range byDept {
		out.ByDepartment[dept] = summarize(ds)
	}
	return out
}

func computeSources(cands []models.Candidate, ivs []models.Interview, offers []models.Offer) []SourceStats {
	interviewed := map[string]bool{}
	for _, iv := range ivs {
		interviewed[iv.CandidateID] = true
	}
	offered := map[string]bool{}
	for _, o := range offers {
		if o.Status != models.OfferDraft && o.Status != models.OfferApproved {
			offered[o.CandidateID] = true
		}
	}

	bySource := map[models.CandidateSource]*SourceStats{}
	for _, c := range cands {
		st, ok := bySource[c.Source]
		if !ok {
			st = &SourceStats{Source: c.Source}
			bySource[c.Source] = st
		}
		st.Applicants++
		if interviewed[c.ID] {
			st.Interviews++
		}
		if offered[c.ID] {
			st.Offers++
		}
		if c.Status == models.StatusHired {
			st.Hires++
		}
	}

	out := make([]SourceStats, 0, len(bySource))
	for _, st := range bySource {
		st.HireRate = percent(st.Hires, st.Applicants)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Applicants != out[j].Applicants {
			return out[i].Applicants > out[j].Applicants
		}
		return out[i].Source < out[j].Source
	})
	return out
}

func computeInterviewMetrics(ivs []models.Interview) InterviewMetrics {
	m := InterviewMetrics{
		Total:    len(ivs),
		ByStatus: map[models.InterviewStatus]int{},
		ByType:   map[models.InterviewType]int{},
	}
	var ratings []float64
	for _, iv := range ivs {
		m.ByStatus[iv.Status]++
		m.ByType[iv.Type]++
		if iv.Rating != nil {
			ratings = append(ratings, float64(*iv.Rating))
		}
	}

	// scheduled and cancelled interviews never had an attendance outcome
	concluded := m.ByStatus[models.InterviewCompleted] + m.ByStatus[models.InterviewNoShow]
	m.CompletionRate = percent(m.ByStatus[models.InterviewCompleted], concluded)
	m.NoShowRate = percent(m.ByStatus[models.InterviewNoShow], concluded)
	m.AvgRating = round2(mean(ratings))
	return m
}

var demographicGetters = map[string]func(*models.Demographics) string{
	"gender":     func(d *models.Demographics) string { return d.Gender },
	"ethnicity":  func(d *models.Demographics) string { return d.Ethnicity },
	"veteran":    func(d *models.Demographics) string { return boolGroup(d.Veteran, "veteran", "non_veteran") },
	"disability": func(d *models.Demographics) string { return boolGroup(d.Disability, "disability", "no_disability") },
}

func boolGroup(v *bool, yes, no string) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return yes
	default:
		return no
	}
}

func computeCompliance(cands []models.Candidate, dimension string) ComplianceReport {
	get := demographicGetters[dimension]
	r := ComplianceReport{Dimension: dimension, Threshold: fourFifths, Groups: []ComplianceGroup{}}

	byGroup := map[string]*ComplianceGroup{}
	for _, c := range cands {
		group := ""
		if c.Demographics != nil {
			group = get(c.Demographics)
		}
		if group == "" {
			r.Undisclosed++
			continue
		}
		g, ok := byGroup[group]
		if !ok {
			g = &ComplianceGroup{Group: group}
			byGroup[group] = g
		}
		g.Applicants++
		if c.Status == models.StatusHired {
			g.Hires++
		}
	}

	best := 0.0
	for _, g := range byGroup {
		g.SelectionRate = float64(g.Hires) / float64(g.Applicants)
		best = math.Max(best, g.SelectionRate)
	}
	for _, g := range byGroup {
		g.ImpactRatio = 1
		if best > 0 {
			g.ImpactRatio = g.SelectionRate / best
		}
		g.AdverseImpact = g.ImpactRatio < fourFifths
		g.SelectionRate = round2(g.SelectionRate)
		g.ImpactRatio = round2(g.ImpactRatio)
		r.Groups = append(r.Groups, *g)
	}
	sort.Slice(r.Groups, func(i, j int) bool { return r.Groups[i].Group < r.Groups[j].Group })
	return r
}

func hireDays(c models.Candidate) (float64, bool) {
	if c.HiredAt == nil || c.HiredAt.Before(c.CreatedAt) {
		return 0, false
	}
	return c.HiredAt.Sub(c.CreatedAt).Hours() / 24, true
}

func summarize(days []float64) HireDuration {
	return HireDuration{Hires: len(days), AvgDays: round2(mean(days)), MedianDays: round2(median(days))}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(n) / float64(total) * 100)
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
