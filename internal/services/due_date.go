package services

import (
	"time"

	"hubledger/internal/models"
)

// SkipReason explains why a template was not generated in a run.
type SkipReason string

const (
	SkipNotActive        SkipReason = "NotActive"
	SkipFutureStart      SkipReason = "FutureStart"
	SkipPastEndDate      SkipReason = "PastEndDate"
	SkipAlreadyGenerated SkipReason = "AlreadyGeneratedThisPeriod"
)

// DueDecision is the outcome of EvaluateDue.
type DueDecision struct {
	Due        bool
	SkipReason SkipReason
	NextDue    time.Time
}

// NextDueDate returns the first instant the template may generate again.
// A template that never generated is due from its start date.
func NextDueDate(tpl *models.RecurringTemplate) time.Time {
	if tpl.LastGeneratedDate == nil {
		return tpl.StartDate
	}
	days := tpl.FrequencyDays
	if days < 1 {
		days = 1
	}
	return tpl.LastGeneratedDate.AddDate(0, 0, days)
}

// EvaluateDue decides whether tpl should generate at now. The checks run in
// a fixed order and the first failing one names the skip reason. The
// generation would be stamped with now, so now is what is compared against
// the end date.
func EvaluateDue(tpl *models.RecurringTemplate, now time.Time) DueDecision {
	next := NextDueDate(tpl)

	if tpl.Status != models.TemplateStatusActive || tpl.IsArchived() {
		return DueDecision{SkipReason: SkipNotActive, NextDue: next}
	}
	if tpl.StartDate.After(now) {
		return DueDecision{SkipReason: SkipFutureStart, NextDue: next}
	}
	// Inclusive boundary: exactly FrequencyDays after the last run is due.
	if tpl.LastGeneratedDate != nil && now.Before(next) {
		return DueDecision{SkipReason: SkipAlreadyGenerated, NextDue: next}
	}
	if tpl.EndDate != nil && now.After(*tpl.EndDate) {
		return DueDecision{SkipReason: SkipPastEndDate, NextDue: next}
	}
	return DueDecision{Due: true, NextDue: next}
}
