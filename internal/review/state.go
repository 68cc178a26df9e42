package review

import (
	"fmt"

	"github.com/agora-agent/internal/models"
)

// logTransitions is the allowed transition table for generation log entries.
// rejected and published are terminal; nothing skips approved on the way to
// published.
var logTransitions = map[models.LogStatus][]models.LogStatus{
	models.LogStatusPending:   {models.LogStatusGenerated, models.LogStatusRejected},
	models.LogStatusGenerated: {models.LogStatusApproved, models.LogStatusRejected},
	models.LogStatusApproved:  {models.LogStatusPublished},
}

// candidateTransitions is the allowed transition table for article
// candidates. dismissed and used are terminal.
var candidateTransitions = map[models.CandidateStatus][]models.CandidateStatus{
	models.CandidateStatusNew:      {models.CandidateStatusScored},
	models.CandidateStatusScored:   {models.CandidateStatusApproved, models.CandidateStatusDismissed},
	models.CandidateStatusApproved: {models.CandidateStatusUsed},
}

// CanTransitionLog reports whether a generation log entry may move from one
// status to another
func CanTransitionLog(from, to models.LogStatus) bool {
	for _, allowed := range logTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanTransitionCandidate reports whether an article candidate may move from
// one status to another
func CanTransitionCandidate(from, to models.CandidateStatus) bool {
	for _, allowed := range candidateTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionLog validates and applies a status change to a log entry in
// memory; persisting it is the caller's job (usually inside a transaction)
func TransitionLog(entry *models.GenerationLog, to models.LogStatus) error {
	if !CanTransitionLog(entry.Status, to) {
		return fmt.Errorf("invalid log transition %s -> %s for entry %d", entry.Status, to, entry.ID)
	}
	entry.Status = to
	return nil
}

// TransitionCandidate validates and applies a status change to a candidate
// in memory
func TransitionCandidate(candidate *models.ArticleCandidate, to models.CandidateStatus) error {
	if !CanTransitionCandidate(candidate.Status, to) {
		return fmt.Errorf("invalid candidate transition %s -> %s for candidate %d", candidate.Status, to, candidate.ID)
	}
	candidate.Status = to
	return nil
}
