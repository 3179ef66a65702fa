package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/models"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

const maxCommentLength = 10000

type AddCommentInput struct {
	EntityType models.EntityType
	EntityID   string
	Content    string
	ParentID   string
	// Mentions are team member ids chosen by the client, never parsed from Content.
	Mentions []string
}

type CommentService interface {
	Add(ctx context.Context, actor models.ActorRef, in AddCommentInput) (*models.Comment, error)
	Edit(ctx context.Context, actor models.ActorRef, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, actor models.ActorRef, id string) error
	// List returns the live comments on an entity in insertion order, with reactions.
	List(ctx context.Context, entityType models.EntityType, entityID string) ([]models.Comment, error)
	AddReaction(ctx context.Context, actor models.ActorRef, commentID, emoji string) ([]models.Reaction, error)
	RemoveReaction(ctx context.Context, actor models.ActorRef, commentID, emoji string) ([]models.Reaction, error)
}

type CommentDeps struct {
	Comments   mongorepo.CommentRepository
	Reactions  mongorepo.ReactionRepository
	Candidates mongorepo.CandidateRepository
	Jobs       mongorepo.JobRepository
	Interviews mongorepo.InterviewRepository
	Members    pgrepo.TeamMemberRepository
	Activity   ActivityService
	Logger     *logrus.Logger
}

type commentService struct {
	CommentDeps
	now func() time.Time
}

func NewCommentService(d CommentDeps) CommentService {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	return &commentService{CommentDeps: d, now: func() time.Time { return time.Now().UTC() }}
}

// entityRef resolves the activity target and job scope of a commented entity.
func (s *commentService) entityRef(ctx context.Context, op string, typ models.EntityType, id string) (models.TargetType, string, error) {
	var (
		target models.TargetType
		jobID  string
		err    error
	)
	switch typ {
	case models.EntityCandidate:
		target = models.TargetCandidate
		var c *models.Candidate
		if c, err = s.Candidates.GetByID(ctx, id); err == nil {
			jobID = c.JobID
		}
	case models.EntityJob:
		target = models.TargetJob
		if _, err = s.Jobs.GetByID(ctx, id); err == nil {
			jobID = id
		}
	case models.EntityInterview:
		target = models.TargetInterview
		var iv *models.Interview
		if iv, err = s.Interviews.GetByID(ctx, id); err == nil {
			jobID = iv.JobID
		}
	default:
		return "", "", utils.E(utils.CodeInvalidArgument, op, "unknown entity type", nil)
	}
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", "", utils.E(utils.CodeNotFound, op, string(typ)+" not found", err)
		}
		return "", "", utils.E(utils.CodeInternal, op, "failed to load "+string(typ), err)
	}
	return target, jobID, nil
}

func (s *commentService) Add(ctx context.Context, actor models.ActorRef, in AddCommentInput) (*models.Comment, error) {
	const op = "CommentService.Add"

	if !in.EntityType.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown entity type", nil)
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content is required", nil)
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content is too long", nil)
	}

	target, jobID, err := s.entityRef(ctx, op, in.EntityType, in.EntityID)
	if err != nil {
		return nil, err
	}

	if in.ParentID != "" {
		parent, err := s.Comments.GetByID(ctx, in.ParentID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeInvalidArgument, op, "parent comment not found", err)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to load parent comment", err)
		}
		if parent.IsDeleted || parent.EntityType != in.EntityType || parent.EntityID != in.EntityID {
			return nil, utils.E(utils.CodeInvalidArgument, op, "parent comment is not on this entity", nil)
		}
	}

	mentions, err := s.resolveMentions(ctx, op, in.Mentions)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		ID:         uuid.NewString(),
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		AuthorID:   actor.MemberID,
		AuthorName: actor.DisplayName(),
		Content:    content,
		ParentID:   in.ParentID,
		Mentions:   mentions,
		CreatedAt:  s.now(),
		Reactions:  []models.Reaction{},
	}
	if err := s.Comments.Create(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create comment", err)
	}

	recipients := make([]Recipient, 0, len(mentions))
	for _, id := range mentions {
		recipients = append(recipients, Recipient{MemberID: id, Kind: models.NotifyMention})
	}
	recordActivity(ctx, s.Activity, s.Logger, LogInput{
		Action:     models.ActionCommentAdded,
		Actor:      actor,
		TargetType: target,
		TargetID:   in.EntityID,
		JobID:      jobID,
		Metadata:   map[string]any{"comment_id": c.ID, "mentions": len(mentions)},
		Message:    excerpt(content, 140),
		Notify:     recipients,
	})
	return c, nil
}

// resolveMentions dedupes ids and rejects any that is not an active team member.
func (s *commentService) resolveMentions(ctx context.Context, op string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return out, nil
	}

	members, err := s.Members.FindByIDs(ctx, out)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to resolve mentions", err)
	}
	found := make(map[string]bool, len(members))
	for _, m := range members {
		found[m.ID] = m.Active
	}
	for _, id := range out {
		if !found[id] {
			return nil, utils.E(utils.CodeInvalidArgument, op, "unknown mentioned member "+id, nil)
		}
	}
	return out, nil
}

func (s *commentService) loadLive(ctx context.Context, op, id string) (*models.Comment, error) {
	c, err := s.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "comment not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get comment", err)
	}
	if c.IsDeleted {
		return nil, utils.E(utils.CodeNotFound, op, "comment not found", utils.ErrNotFound)
	}
	return c, nil
}

func (s *commentService) Edit(ctx context.Context, actor models.ActorRef, id, content string) (*models.Comment, error) {
	const op = "CommentService.Edit"

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content is required", nil)
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content is too long", nil)
	}
	c, err := s.loadLive(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID == "" || c.AuthorID != actor.MemberID {
		return nil, utils.E(utils.CodeForbidden, op, "only the author can edit a comment", nil)
	}

	now := s.now()
	if err := s.Comments.UpdateContent(ctx, id, content, now); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "comment not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to edit comment", err)
	}
	c.Content, c.EditedAt = content, &now
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, actor models.ActorRef, id string) error {
	const op = "CommentService.Delete"

	c, err := s.loadLive(ctx, op, id)
	if err != nil {
		return err
	}
	isAuthor := c.AuthorID != "" && c.AuthorID == actor.MemberID
	if !isAuthor && actor.Role != models.RoleAdmin {
		return utils.E(utils.CodeForbidden, op, "only the author or an admin can delete a comment", nil)
	}
	if err := s.Comments.SoftDelete(ctx, id); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete comment", err)
	}
	return nil
}

func (s *commentService) List(ctx context.Context, entityType models.EntityType, entityID string) ([]models.Comment, error) {
	const op = "CommentService.List"

	if !entityType.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown entity type", nil)
	}
	comments, err := s.Comments.ListByEntity(ctx, entityType, entityID, false)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list comments", err)
	}
	if len(comments) == 0 {
		return comments, nil
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	reactions, err := s.Reactions.ListByComments(ctx, ids)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list reactions", err)
	}
	byComment := make(map[string][]models.Reaction, len(comments))
	for _, r := range reactions {
		byComment[r.CommentID] = append(byComment[r.CommentID], r)
	}
	for i := range comments {
		comments[i].Reactions = byComment[comments[i].ID]
		if comments[i].Reactions == nil {
			comments[i].Reactions = []models.Reaction{}
		}
	}
	return comments, nil
}

func (s *commentService) AddReaction(ctx context.Context, actor models.ActorRef, commentID, emoji string) ([]models.Reaction, error) {
	const op = "CommentService.AddReaction"

	emoji = strings.TrimSpace(emoji)
	if emoji == "" || utf8.RuneCountInString(emoji) > 16 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "emoji is invalid", nil)
	}
	if _, err := s.loadLive(ctx, op, commentID); err != nil {
		return nil, err
	}

	err := s.Reactions.Add(ctx, &models.Reaction{
		ID:        uuid.NewString(),
		CommentID: commentID,
		UserID:    actorKey(actor),
		Emoji:     emoji,
		CreatedAt: s.now(),
	})
	if err != nil && !errors.Is(err, utils.ErrDuplicate) {
		return nil, utils.E(utils.CodeInternal, op, "failed to add reaction", err)
	}
	return s.reactionsOf(ctx, op, commentID)
}

func (s *commentService) RemoveReaction(ctx context.Context, actor models.ActorRef, commentID, emoji string) ([]models.Reaction, error) {
	const op = "CommentService.RemoveReaction"

	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "emoji is required", nil)
	}
	if _, err := s.Reactions.Remove(ctx, commentID, actorKey(actor), emoji); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to remove reaction", err)
	}
	return s.reactionsOf(ctx, op, commentID)
}

func (s *commentService) reactionsOf(ctx context.Context, op, commentID string) ([]models.Reaction, error) {
	out, err := s.Reactions.ListByComments(ctx, []string{commentID})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list reactions", err)
	}
	if out == nil {
		out = []models.Reaction{}
	}
	return out, nil
}

// BuildThreads nests comments under their parents, keeping input order at
// every level. Replies whose parent is missing become roots.
func BuildThreads(comments []models.Comment) []*models.CommentThread {
	nodes := make(map[string]*models.CommentThread, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &models.CommentThread{Comment: c, Replies: []*models.CommentThread{}}
	}
	roots := make([]*models.CommentThread, 0, len(comments))
	for _, c := range comments {
		n := nodes[c.ID]
		if p, ok := nodes[c.ParentID]; ok && c.ParentID != "" && c.ParentID != c.ID {
			p.Replies = append(p.Replies, n)
			continue
		}
		roots = append(roots, n)
	}
	return roots
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
