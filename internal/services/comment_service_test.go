package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
)

func TestCommentMentionsNotifyResolvedMembers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Writer"))

	cm, err := h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{
		EntityType: models.EntityCandidate,
		EntityID:   c.ID,
		Content:    "@Morgan can you take a look?",
		Mentions:   []string{manager.ID, manager.ID, recruiter.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{manager.ID, recruiter.ID}, cm.Mentions)

	var mentions []models.Notification
	for _, n := range h.sink.For(manager.ID) {
		if n.Kind == models.NotifyMention {
			mentions = append(mentions, n)
		}
	}
	require.Len(t, mentions, 1)
	assert.Contains(t, mentions[0].Title, "Riley Recruiter")
	// the author is never notified about their own comment
	assert.Empty(t, h.sink.For(recruiter.ID))

	_, err = h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{
		EntityType: models.EntityCandidate,
		EntityID:   c.ID,
		Content:    "hi",
		Mentions:   []string{"m-ghost"},
	})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestCommentValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Support"))

	_, err := h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{EntityType: "offer", EntityID: c.ID, Content: "x"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{EntityType: models.EntityCandidate, EntityID: c.ID, Content: "   "})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{EntityType: models.EntityCandidate, EntityID: "nobody", Content: "x"})
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{EntityType: models.EntityCandidate, EntityID: c.ID, Content: "x", ParentID: "missing"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestSoftDeletedCommentDisappearsButIsKept(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Legal"))

	cm, err := h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{EntityType: models.EntityCandidate, EntityID: c.ID, Content: "first"})
	require.NoError(t, err)
	_, err = h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{EntityType: models.EntityCandidate, EntityID: c.ID, Content: "second"})
	require.NoError(t, err)

	err = h.commentSvc.Delete(ctx, actorOf(manager), cm.ID)
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	require.NoError(t, h.commentSvc.Delete(ctx, actorOf(recruiter), cm.ID))

	list, err := h.commentSvc.List(ctx, models.EntityCandidate, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Content)

	stored, err := h.comments.GetByID(ctx, cm.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
}

func TestAdminCanDeleteAnyComment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Finance"))
	cm, err := h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{EntityType: models.EntityCandidate, EntityID: c.ID, Content: "oops"})
	require.NoError(t, err)

	require.NoError(t, h.commentSvc.Delete(ctx, actorOf(director), cm.ID))
}

func TestEditOnlyByAuthor(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Sales"))
	cm, err := h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{EntityType: models.EntityCandidate, EntityID: c.ID, Content: "draft"})
	require.NoError(t, err)

	_, err = h.commentSvc.Edit(ctx, actorOf(director), cm.ID, "hijack")
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	edited, err := h.commentSvc.Edit(ctx, actorOf(recruiter), cm.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", edited.Content)
	assert.NotNil(t, edited.EditedAt)
}

func TestReactionsAreSetLike(t *testing.T) {
	ctx := context.Background()
	h := newHarness(1)
	c := createJane(t, h, h.seedJob("Growth"))
	cm, err := h.commentSvc.Add(ctx, actorOf(recruiter), AddCommentInput{EntityType: models.EntityCandidate, EntityID: c.ID, Content: "ship it"})
	require.NoError(t, err)

	_, err = h.commentSvc.AddReaction(ctx, actorOf(manager), cm.ID, "👍")
	require.NoError(t, err)
	got, err := h.commentSvc.AddReaction(ctx, actorOf(manager), cm.ID, "👍")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = h.commentSvc.AddReaction(ctx, actorOf(director), cm.ID, "👍")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = h.commentSvc.RemoveReaction(ctx, actorOf(manager), cm.ID, "👍")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	got, err = h.commentSvc.RemoveReaction(ctx, actorOf(manager), cm.ID, "👍")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	list, err := h.commentSvc.List(ctx, models.EntityCandidate, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Reactions, 1)
}

func TestBuildThreads(t *testing.T) {
	comments := []models.Comment{
		{ID: "1", Content: "root"},
		{ID: "2", ParentID: "1", Content: "reply"},
		{ID: "3", Content: "another root"},
		{ID: "4", ParentID: "2", Content: "nested"},
		{ID: "5", ParentID: "gone", Content: "orphan"},
	}
	roots := BuildThreads(comments)

	require.Len(t, roots, 3)
	assert.Equal(t, "1", roots[0].ID)
	assert.Equal(t, "3", roots[1].ID)
	assert.Equal(t, "5", roots[2].ID)
	require.Len(t, roots[0].Replies, 1)
	assert.Equal(t, "2", roots[0].Replies[0].ID)
	require.Len(t, roots[0].Replies[0].Replies, 1)
	assert.Equal(t, "4", roots[0].Replies[0].Replies[0].ID)
}
