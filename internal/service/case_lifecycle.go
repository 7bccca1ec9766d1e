package service

import (
	"time"

	"relief-ops/internal/model"
)

// forward order of the non-cancelled states
var lifecycleOrder = map[model.CaseStatus]int{
	model.CaseStatusNew:          0,
	model.CaseStatusAcknowledged: 1,
	model.CaseStatusEnRoute:      2,
	model.CaseStatusArrived:      3,
	model.CaseStatusClosed:       4,
}

// CanTransition reports whether a case may move from one status to another.
// Only the next forward state is reachable; cancelled is reachable from any
// open state; closed and cancelled are terminal.
func CanTransition(from, to model.CaseStatus) bool {
	if !from.IsOpen() || !to.Valid() {
		return false
	}
	if to == model.CaseStatusCancelled {
		return true
	}
	fi, ok := lifecycleOrder[from]
	if !ok {
		return false
	}
	return lifecycleOrder[to] == fi+1
}

// applyTransition mutates c to the target status, stamping the phase
// timestamp and appending one timeline entry. Callers validate first.
func applyTransition(c *model.Case, to model.CaseStatus, actorID *string, now time.Time) {
	c.Status = to
	switch to {
	case model.CaseStatusAcknowledged:
		c.AcknowledgedAt = &now
	case model.CaseStatusArrived:
		c.ArrivedAt = &now
	case model.CaseStatusClosed:
		c.ClosedAt = &now
	}
	c.Timeline = c.Timeline.Append(now, actorID, "status="+string(to))
	c.UpdatedBy = actorID
}
