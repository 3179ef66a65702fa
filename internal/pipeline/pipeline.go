// Package pipeline holds the candidate status state machine. A candidate moves
// forward one stage at a time along the advance table, or is rejected from any
// non-terminal stage. There are no backward or skip transitions.
package pipeline

import (
	"errors"
	"time"

	"github.com/hireloop/hireloop/internal/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var advanceTable = map[models.CandidateStatus]models.CandidateStatus{
	models.StatusApplied:   models.StatusScreening,
	models.StatusScreening: models.StatusInterview,
	models.StatusInterview: models.StatusOffer,
	models.StatusOffer:     models.StatusHired,
}

var stages = []models.CandidateStatus{
	models.StatusApplied,
	models.StatusScreening,
	models.StatusInterview,
	models.StatusOffer,
	models.StatusHired,
}

var titles = map[models.CandidateStatus]string{
	models.StatusApplied:   "Application Received",
	models.StatusScreening: "Moved to Screening",
	models.StatusInterview: "Moved to Interview",
	models.StatusOffer:     "Offer Extended",
	models.StatusHired:     "Hired",
	models.StatusRejected:  "Application Rejected",
	models.StatusWithdrawn: "Application Withdrawn",
}

// Stages returns the forward pipeline in funnel order.
func Stages() []models.CandidateStatus {
	out := make([]models.CandidateStatus, len(stages))
	copy(out, stages)
	return out
}

// Rank is the position of s in Stages, or -1 for rejected/withdrawn/unknown.
func Rank(s models.CandidateStatus) int {
	for i, st := range stages {
		if st == s {
			return i
		}
	}
	return -1
}

func Valid(s models.CandidateStatus) bool {
	_, ok := titles[s]
	return ok
}

func IsTerminal(s models.CandidateStatus) bool {
	return s == models.StatusHired || s == models.StatusRejected || s == models.StatusWithdrawn
}

// Next returns the single forward transition from s.
func Next(s models.CandidateStatus) (models.CandidateStatus, bool) {
	n, ok := advanceTable[s]
	return n, ok
}

func Advance(s models.CandidateStatus) (models.CandidateStatus, error) {
	n, ok := Next(s)
	if !ok {
		return "", ErrInvalidTransition
	}
	return n, nil
}

func Reject(s models.CandidateStatus) (models.CandidateStatus, error) {
	if !Valid(s) || IsTerminal(s) {
		return "", ErrInvalidTransition
	}
	return models.StatusRejected, nil
}

// Allowed reports whether from -> to is a legal single step.
func Allowed(from, to models.CandidateStatus) bool {
	if n, ok := Next(from); ok && n == to {
		return true
	}
	if to == models.StatusRejected {
		_, err := Reject(from)
		return err == nil
	}
	return false
}

// Entry builds the timeline entry recorded when a candidate enters status.
func Entry(status models.CandidateStatus, at time.Time, description string) models.TimelineEntry {
	title, ok := titles[status]
	if !ok {
		title = string(status)
	}
	return models.TimelineEntry{
		Date:        at.UTC(),
		Type:        string(status),
		Title:       title,
		Description: description,
	}
}
