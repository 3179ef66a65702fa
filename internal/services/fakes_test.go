package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/notify"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

// ---- candidates ----

type fakeCandidates struct {
	mu     sync.Mutex
	byID   map[string]*models.Candidate
	writes int
}

func newFakeCandidates() *fakeCandidates {
	return &fakeCandidates{byID: map[string]*models.Candidate{}}
}

func cloneCandidate(c *models.Candidate) *models.Candidate {
	cp := *c
	cp.Timeline = append([]models.TimelineEntry(nil), c.Timeline...)
	cp.Skills = append([]string(nil), c.Skills...)
	return &cp
}

func (f *fakeCandidates) Create(_ context.Context, c *models.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[c.ID] = cloneCandidate(c)
	f.writes++
	return nil
}

func (f *fakeCandidates) GetByID(_ context.Context, id string) (*models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return cloneCandidate(c), nil
}

func (f *fakeCandidates) List(_ context.Context, flt mongorepo.CandidateFilter) ([]models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Candidate{}
	for _, c := range f.byID {
		if flt.JobID != "" && c.JobID != flt.JobID {
			continue
		}
		if flt.Status != "" && c.Status != flt.Status {
			continue
		}
		out = append(out, *cloneCandidate(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCandidates) UpdateStatus(_ context.Context, id string, from, to models.CandidateStatus, entry models.TimelineEntry, hiredAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok || c.Status != from {
		return utils.ErrNotFound
	}
	c.Status = to
	c.Timeline = append(c.Timeline, entry)
	if hiredAt != nil {
		c.HiredAt = hiredAt
	}
	f.writes++
	return nil
}

func (f *fakeCandidates) UpdateEvaluation(_ context.Context, id string, ev models.Evaluation, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	c.Evaluation, c.UpdatedAt = ev, at
	f.writes++
	return nil
}

func (f *fakeCandidates) UpdateDetails(_ context.Context, id, name, email, phone string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	c.Name, c.Email, c.Phone, c.UpdatedAt = name, email, phone, at
	f.writes++
	return nil
}

func (f *fakeCandidates) SetFile(_ context.Context, id string, kind models.FileKind, storageID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	if kind == models.FileResume {
		c.ResumeFileID = storageID
	} else {
		c.CoverLetterFileID = storageID
	}
	c.UpdatedAt = at
	f.writes++
	return nil
}

func (f *fakeCandidates) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// ---- jobs ----

type fakeJobs struct {
	mu   sync.Mutex
	byID map[string]*models.Job
}

func newFakeJobs() *fakeJobs { return &fakeJobs{byID: map[string]*models.Job{}} }

func (f *fakeJobs) Create(_ context.Context, j *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *j
	f.byID[j.ID] = &cp
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, id string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *j
	cp.HiringTeam = append([]models.HiringAssignment(nil), j.HiringTeam...)
	return &cp, nil
}

func (f *fakeJobs) List(_ context.Context, flt mongorepo.JobFilter) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Job{}
	for _, j := range f.byID {
		if flt.Status != "" && j.Status != flt.Status {
			continue
		}
		if flt.Department != "" && j.Department != flt.Department {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeJobs) Replace(_ context.Context, j *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[j.ID]; !ok {
		return utils.ErrNotFound
	}
	cp := *j
	f.byID[j.ID] = &cp
	return nil
}

func (f *fakeJobs) SetStatus(_ context.Context, id string, status models.JobStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	j.Status, j.UpdatedAt = status, at
	return nil
}

func (f *fakeJobs) IncrementApplicants(_ context.Context, id string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	j.ApplicantCount += delta
	return nil
}

func (f *fakeJobs) AddTeamMember(_ context.Context, id string, a models.HiringAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	team := []models.HiringAssignment{}
	for _, x := range j.HiringTeam {
		if x.MemberID != a.MemberID {
			team = append(team, x)
		}
	}
	j.HiringTeam = append(team, a)
	return nil
}

func (f *fakeJobs) RemoveTeamMember(_ context.Context, id, memberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	team := []models.HiringAssignment{}
	for _, x := range j.HiringTeam {
		if x.MemberID != memberID {
			team = append(team, x)
		}
	}
	j.HiringTeam = team
	return nil
}

// ---- interviews ----

type fakeInterviews struct {
	mu   sync.Mutex
	byID map[string]*models.Interview
}

func newFakeInterviews() *fakeInterviews {
	return &fakeInterviews{byID: map[string]*models.Interview{}}
}

func (f *fakeInterviews) Create(_ context.Context, iv *models.Interview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *iv
	f.byID[iv.ID] = &cp
	return nil
}

func (f *fakeInterviews) GetByID(_ context.Context, id string) (*models.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *iv
	return &cp, nil
}

func (f *fakeInterviews) all(keep func(*models.Interview) bool) []models.Interview {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Interview{}
	for _, iv := range f.byID {
		if keep(iv) {
			out = append(out, *iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func (f *fakeInterviews) ListByCandidate(_ context.Context, candidateID string) ([]models.Interview, error) {
	return f.all(func(iv *models.Interview) bool { return iv.CandidateID == candidateID }), nil
}

func (f *fakeInterviews) ListScheduledOverlapping(_ context.Context, start, end time.Time) ([]models.Interview, error) {
	return f.all(func(iv *models.Interview) bool {
		return iv.Status == models.InterviewScheduled && iv.Overlaps(start, end)
	}), nil
}

func (f *fakeInterviews) ListUpcoming(_ context.Context, from time.Time, limit int64) ([]models.Interview, error) {
	out := f.all(func(iv *models.Interview) bool {
		return iv.Status == models.InterviewScheduled && !iv.ScheduledAt.Before(from)
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInterviews) ListAll(_ context.Context) ([]models.Interview, error) {
	return f.all(func(*models.Interview) bool { return true }), nil
}

func (f *fakeInterviews) Reschedule(_ context.Context, id string, start, end time.Time, minutes int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	iv.ScheduledAt, iv.EndsAt, iv.DurationMinutes, iv.UpdatedAt = start, end, minutes, at
	return nil
}

func (f *fakeInterviews) SetStatus(_ context.Context, id string, status models.InterviewStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	iv.Status, iv.UpdatedAt = status, at
	return nil
}

func (f *fakeInterviews) SetFeedback(_ context.Context, id, feedback string, rating int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	iv.Feedback, iv.Rating, iv.Status, iv.UpdatedAt = feedback, &rating, models.InterviewCompleted, at
	return nil
}

// ---- offers / approvals / outbox ----

type fakeOffers struct {
	mu      sync.Mutex
	byID    map[string]*models.Offer
	writes  int
	saveErr error
}

func newFakeOffers() *fakeOffers { return &fakeOffers{byID: map[string]*models.Offer{}} }

func (f *fakeOffers) GetByID(_ context.Context, id string) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOffers) GetByCandidateJob(_ context.Context, candidateID, jobID string) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.byID {
		if o.CandidateID == candidateID && o.JobID == jobID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeOffers) ListByCandidate(_ context.Context, candidateID string) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Offer{}
	for _, o := range f.byID {
		if o.CandidateID == candidateID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOffers) ListAll(_ context.Context) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Offer{}
	for _, o := range f.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOffers) Save(_ context.Context, o *models.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	for id, existing := range f.byID {
		if existing.CandidateID == o.CandidateID && existing.JobID == o.JobID && id != o.ID {
			delete(f.byID, id)
		}
	}
	cp := *o
	cp.Approvals = nil
	f.byID[o.ID] = &cp
	f.writes++
	return nil
}

func (f *fakeOffers) SetStatus(_ context.Context, id string, u models.OfferStatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	o.Status, o.UpdatedAt = u.Status, u.UpdatedAt
	if u.SentAt != nil {
		o.SentAt = u.SentAt
	}
	if u.RespondedAt != nil {
		o.RespondedAt = u.RespondedAt
	}
	f.writes++
	return nil
}

func (f *fakeOffers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeOffers) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type fakeApprovals struct {
	mu   sync.Mutex
	rows []models.Approval
}

func (f *fakeApprovals) Upsert(_ context.Context, a *models.Approval) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].OfferID == a.OfferID && f.rows[i].ApproverID == a.ApproverID {
			f.rows[i] = *a
			return nil
		}
	}
	f.rows = append(f.rows, *a)
	return nil
}

func (f *fakeApprovals) ListByOffer(_ context.Context, offerID string) ([]models.Approval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Approval{}
	for _, a := range f.rows {
		if a.OfferID == offerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApprovals) DeleteByOffer(_ context.Context, offerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, a := range f.rows {
		if a.OfferID != offerID {
			kept = append(kept, a)
		}
	}
	f.rows = kept
	return nil
}

type fakeOutbox struct {
	mu    sync.Mutex
	byKey map[string]*models.OutboxEvent
}

func newFakeOutbox() *fakeOutbox { return &fakeOutbox{byKey: map[string]*models.OutboxEvent{}} }

func (f *fakeOutbox) Insert(_ context.Context, ev *models.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byKey[ev.Key]; ok {
		return utils.ErrDuplicate
	}
	cp := *ev
	f.byKey[ev.Key] = &cp
	return nil
}

func (f *fakeOutbox) GetByKey(_ context.Context, key string) (*models.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.byKey[key]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeOutbox) ListPending(_ context.Context, before time.Time, limit int64) ([]models.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.OutboxEvent{}
	for _, ev := range f.byKey {
		if ev.Status == models.OutboxPending && ev.CreatedAt.Before(before) {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (f *fakeOutbox) find(id string) *models.OutboxEvent {
	for _, ev := range f.byKey {
		if ev.ID == id {
			return ev
		}
	}
	return nil
}

func (f *fakeOutbox) MarkDone(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := f.find(id)
	if ev == nil {
		return utils.ErrNotFound
	}
	ev.Status, ev.ProcessedAt = models.OutboxDone, &at
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id, reason string, giveUp bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := f.find(id)
	if ev == nil {
		return utils.ErrNotFound
	}
	ev.Attempts++
	ev.LastError = reason
	if giveUp {
		ev.Status = models.OutboxFailed
	}
	return nil
}

// ---- comments / reactions ----

type fakeComments struct {
	mu   sync.Mutex
	rows []*models.Comment
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeComments) GetByID(_ context.Context, id string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeComments) ListByEntity(_ context.Context, typ models.EntityType, id string, includeDeleted bool) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.rows {
		if c.EntityType == typ && c.EntityID == id && (includeDeleted || !c.IsDeleted) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeComments) UpdateContent(_ context.Context, id, content string, editedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.ID == id && !c.IsDeleted {
			c.Content, c.EditedAt = content, &editedAt
			return nil
		}
	}
	return utils.ErrNotFound
}

func (f *fakeComments) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.ID == id {
			c.IsDeleted = true
			return nil
		}
	}
	return utils.ErrNotFound
}

type fakeReactions struct {
	mu   sync.Mutex
	rows []models.Reaction
}

func (f *fakeReactions) Add(_ context.Context, r *models.Reaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.rows {
		if x.CommentID == r.CommentID && x.UserID == r.UserID && x.Emoji == r.Emoji {
			return utils.ErrDuplicate
		}
	}
	f.rows = append(f.rows, *r)
	return nil
}

func (f *fakeReactions) Remove(_ context.Context, commentID, userID, emoji string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, x := range f.rows {
		if x.CommentID == commentID && x.UserID == userID && x.Emoji == emoji {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReactions) ListByComments(_ context.Context, ids []string) ([]models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []models.Reaction{}
	for _, x := range f.rows {
		if want[x.CommentID] {
			out = append(out, x)
		}
	}
	return out, nil
}

// ---- tasks ----

type fakeTasks struct {
	mu   sync.Mutex
	byID map[string]*models.Task
}

func newFakeTasks() *fakeTasks { return &fakeTasks{byID: map[string]*models.Task{}} }

func (f *fakeTasks) Create(_ context.Context, t *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTasks) GetByID(_ context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) ListByAssignee(_ context.Context, assigneeID string, includeClosed bool) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Task{}
	for _, t := range f.byID {
		if t.AssigneeID == assigneeID && (includeClosed || !t.Status.Closed()) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTasks) ListByRelated(_ context.Context, typ models.TargetType, id string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Task{}
	for _, t := range f.byID {
		if t.RelatedTo != nil && t.RelatedTo.Type == typ && t.RelatedTo.ID == id {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTasks) SetStatus(_ context.Context, id string, status models.TaskStatus, completedAt *time.Time, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	t.Status, t.CompletedAt, t.UpdatedAt = status, completedAt, at
	return nil
}

func (f *fakeTasks) Reassign(_ context.Context, id, assigneeID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	t.AssigneeID, t.UpdatedAt = assigneeID, at
	return nil
}

// ---- postgres-backed rows ----

type fakeMembers struct {
	mu   sync.Mutex
	byID map[string]*models.TeamMember
}

func newFakeMembers(ms ...*models.TeamMember) *fakeMembers {
	f := &fakeMembers{byID: map[string]*models.TeamMember{}}
	for _, m := range ms {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeMembers) Create(_ context.Context, m *models.TeamMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.UserID == m.UserID {
			return utils.ErrDuplicate
		}
	}
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeMembers) GetByID(_ context.Context, id string) (*models.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMembers) GetByUserID(_ context.Context, userID string) (*models.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.byID {
		if m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeMembers) FindByIDs(_ context.Context, ids []string) ([]models.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.TeamMember{}
	for _, id := range ids {
		if m, ok := f.byID[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMembers) List(_ context.Context, activeOnly bool) ([]models.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.TeamMember{}
	for _, m := range f.byID {
		if !activeOnly || m.Active {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMembers) UpdateRole(_ context.Context, id string, role models.MemberRole, perms pq.StringArray, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	m.Role, m.Permissions, m.UpdatedAt = role, perms, at
	return nil
}

func (f *fakeMembers) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return utils.ErrNotFound
	}
	m.Active, m.UpdatedAt = active, at
	return nil
}

type fakeActivity struct {
	mu   sync.Mutex
	rows []models.ActivityEntry
}

func (f *fakeActivity) Insert(_ context.Context, e *models.ActivityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.IdempotencyKey != nil {
		for _, x := range f.rows {
			if x.IdempotencyKey != nil && *x.IdempotencyKey == *e.IdempotencyKey {
				return utils.ErrDuplicate
			}
		}
	}
	f.rows = append(f.rows, *e)
	return nil
}

func (f *fakeActivity) GetByIdempotencyKey(_ context.Context, key string) (*models.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.rows {
		if x.IdempotencyKey != nil && *x.IdempotencyKey == key {
			cp := x
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeActivity) List(_ context.Context, flt pgrepo.ActivityFilter) ([]models.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ActivityEntry{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		x := f.rows[i]
		if flt.TargetID != "" && x.TargetID != flt.TargetID {
			continue
		}
		if flt.ActorID != "" && x.ActorID != flt.ActorID {
			continue
		}
		out = append(out, x)
	}
	return out, nil
}

func (f *fakeActivity) byAction(a models.ActivityAction) []models.ActivityEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ActivityEntry
	for _, x := range f.rows {
		if x.Action == a {
			out = append(out, x)
		}
	}
	return out
}

type recordingPublisher struct {
	mu      sync.Mutex
	actions []models.ActivityAction
}

func (p *recordingPublisher) Publish(_ context.Context, e *models.ActivityEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, e.Action)
	return nil
}

// ---- wiring ----

type harness struct {
	candidates *fakeCandidates
	jobs       *fakeJobs
	interviews *fakeInterviews
	offers     *fakeOffers
	approvals  *fakeApprovals
	outbox     *fakeOutbox
	comments   *fakeComments
	reactions  *fakeReactions
	tasks      *fakeTasks
	members    *fakeMembers
	activity   *fakeActivity
	sink       *notify.MemorySink
	publisher  *recordingPublisher

	activitySvc  ActivityService
	candidateSvc CandidateService
	jobSvc       JobService
	offerSvc     OfferService
	commentSvc   CommentService
	interviewSvc InterviewService
	taskSvc      TaskService
	teamSvc      TeamService
}

var (
	recruiter = &models.TeamMember{
		ID: "m-recruiter", UserID: "u-recruiter", Name: "Riley Recruiter", Email: "riley@example.com",
		Role: models.RoleRecruiter, Permissions: models.PermissionStrings(models.PermissionsForRole(models.RoleRecruiter)), Active: true,
	}
	manager = &models.TeamMember{
		ID: "m-manager", UserID: "u-manager", Name: "Morgan Manager", Email: "morgan@example.com",
		Role: models.RoleHiringManager, Permissions: models.PermissionStrings(models.PermissionsForRole(models.RoleHiringManager)), Active: true,
	}
	director = &models.TeamMember{
		ID: "m-director", UserID: "u-director", Name: "Dana Director", Email: "dana@example.com",
		Role: models.RoleAdmin, Permissions: models.PermissionStrings(models.PermissionsForRole(models.RoleAdmin)), Active: true,
	}
)

func newHarness(requiredApprovals int) *harness {
	h := &harness{
		candidates: newFakeCandidates(),
		jobs:       newFakeJobs(),
		interviews: newFakeInterviews(),
		offers:     newFakeOffers(),
		approvals:  &fakeApprovals{},
		outbox:     newFakeOutbox(),
		comments:   &fakeComments{},
		reactions:  &fakeReactions{},
		tasks:      newFakeTasks(),
		activity:   &fakeActivity{},
		sink:       notify.NewMemorySink(),
		publisher:  &recordingPublisher{},
	}
	r, m, d := *recruiter, *manager, *director
	h.members = newFakeMembers(&r, &m, &d)

	h.activitySvc = NewActivityService(ActivityDeps{
		Activity:   h.activity,
		Candidates: h.candidates,
		Jobs:       h.jobs,
		Interviews: h.interviews,
		Offers:     h.offers,
		Tasks:      h.tasks,
		Members:    h.members,
		Sink:       h.sink,
		Publishers: []notify.Publisher{h.publisher},
	})
	h.candidateSvc = NewCandidateService(h.candidates, h.jobs, h.interviews, h.offers, h.comments, h.activitySvc, nil)
	h.jobSvc = NewJobService(h.jobs, h.members, h.activitySvc, nil)
	h.offerSvc = NewOfferService(OfferDeps{
		Offers:            h.offers,
		Approvals:         h.approvals,
		Outbox:            h.outbox,
		Candidates:        h.candidateSvc,
		Jobs:              h.jobs,
		Activity:          h.activitySvc,
		RequiredApprovals: requiredApprovals,
	})
	h.commentSvc = NewCommentService(CommentDeps{
		Comments:   h.comments,
		Reactions:  h.reactions,
		Candidates: h.candidates,
		Jobs:       h.jobs,
		Interviews: h.interviews,
		Members:    h.members,
		Activity:   h.activitySvc,
	})
	h.interviewSvc = NewInterviewService(h.interviews, h.candidates, h.activitySvc, nil)
	h.taskSvc = NewTaskService(h.tasks, h.members, h.activitySvc, nil)
	h.teamSvc = NewTeamService(h.members, h.activitySvc, nil)
	return h
}

func actorOf(m *models.TeamMember) models.ActorRef { return models.ActorFromMember(m) }

func (h *harness) seedJob(title string) *models.Job {
	now := time.Now().UTC()
	j := &models.Job{
		ID:         "job-" + strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Title:      title,
		Department: "Engineering",
		Type:       models.JobFullTime,
		Status:     models.JobActive,
		Urgency:    models.UrgencyMedium,
		Currency:   "USD",
		HiringTeam: []models.HiringAssignment{{MemberID: manager.ID, Role: "hiring_manager", AssignedAt: now}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_ = h.jobs.Create(context.Background(), j)
	return j
}
