package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hireloop/hireloop/internal/models"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "ats.activity.offer_sent", Subject(models.ActionOfferSent))
	assert.Equal(t, "ats.activity.comment_added", Subject(models.ActionCommentAdded))
}
