package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"relief-ops/internal/dto"
	"relief-ops/internal/model"
	"relief-ops/internal/repository"
	pkgerrors "relief-ops/pkg/errors"
)

// AssignmentService volunteer/case optimizer: compute a plan, then apply it
type AssignmentService interface {
	Plan(ctx context.Context) (*dto.PlanResponse, error)
	// Apply assigns each suggestion in its own transaction. Suggestions whose
	// case changed since the plan was computed are rejected with
	// AlreadyAssigned; the rest still apply. A storage failure stops the run
	// and the remaining suggestions are reported as rejected.
	Apply(ctx context.Context, req *dto.ApplyPlanRequest, actorID *string) (*dto.ApplyPlanResponse, error)
}

type assignmentService struct {
	repo     *repository.Repository
	notifier Notifier
	auditor  Auditor
	logger   *zap.Logger
	now      func() time.Time
}

// NewAssignmentService creates the assignment optimizer service
func NewAssignmentService(repo *repository.Repository, notifier Notifier, auditor Auditor, logger *zap.Logger) AssignmentService {
	return &assignmentService{
		repo:     repo,
		notifier: notifier,
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

// ════════════════════════════════════════════════════════════
// Plan
// ════════════════════════════════════════════════════════════

func (s *assignmentService) Plan(ctx context.Context) (*dto.PlanResponse, error) {
	var (
		cases      []model.Case
		volunteers []model.User
		workload   map[string]int
	)

	// ── one snapshot for cases, volunteers and workload ──
	err := s.repo.ReadSnapshot(ctx, func(tx *repository.Repository) error {
		var err error
		if cases, err = tx.Case.ListOpenUnassigned(ctx); err != nil {
			return err
		}
		if volunteers, err = tx.User.ListByRoles(ctx, model.RoleVolunteer); err != nil {
			return err
		}
		workload, err = tx.Case.CountOpenByAssignee(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("load optimizer input failed", zap.Error(err))
		return nil, err
	}

	plan := Optimize(cases, volunteers, workload)

	resp := &dto.PlanResponse{
		Suggestions: make([]dto.SuggestionResponse, 0, len(plan.Suggestions)),
		Unmatched:   plan.Unmatched,
	}
	for _, sg := range plan.Suggestions {
		resp.Suggestions = append(resp.Suggestions, dto.SuggestionResponse{
			CaseID:        sg.Case.CaseID,
			CaseVersion:   sg.Case.Version,
			Region:        sg.Case.Region,
			VolunteerID:   sg.Volunteer.UserID,
			VolunteerName: sg.Volunteer.Username,
			Score:         sg.Score,
			Rationale:     sg.Rationale,
		})
	}

	s.logger.Info("optimizer plan computed",
		zap.Int("open_unassigned", len(cases)),
		zap.Int("volunteers", len(volunteers)),
		zap.Int("suggestions", len(resp.Suggestions)))
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// Apply
// ════════════════════════════════════════════════════════════

func (s *assignmentService) Apply(ctx context.Context, req *dto.ApplyPlanRequest, actorID *string) (*dto.ApplyPlanResponse, error) {
	resp := &dto.ApplyPlanResponse{Applied: make([]string, 0, len(req.Suggestions))}
	applied := make([]dto.ApplySuggestion, 0, len(req.Suggestions))
	reject := func(sg dto.ApplySuggestion, reason string) {
		resp.Rejected = append(resp.Rejected, dto.ApplyRejection{CaseID: sg.CaseID, Reason: reason})
	}

	seenCase := make(map[string]bool, len(req.Suggestions))
	seenVolunteer := make(map[string]bool, len(req.Suggestions))
	var failed error
	for _, sg := range req.Suggestions {
		if failed != nil {
			reject(sg, "not attempted: "+failed.Error())
			continue
		}
		// a plan pairs each case and each volunteer at most once
		if seenCase[sg.CaseID] || seenVolunteer[sg.VolunteerID] {
			reject(sg, fmt.Sprintf("%s: duplicate case or volunteer in plan", pkgerrors.ErrAlreadyAssigned))
			continue
		}
		seenCase[sg.CaseID] = true
		seenVolunteer[sg.VolunteerID] = true

		err := s.applyOne(ctx, sg, actorID)
		switch {
		case err == nil:
			applied = append(applied, sg)
			resp.Applied = append(resp.Applied, sg.CaseID)
		case errors.Is(err, pkgerrors.ErrAlreadyAssigned), errors.Is(err, pkgerrors.ErrNotFound):
			reject(sg, err.Error())
		default:
			// stop here; earlier suggestions are committed and still get notified
			s.logger.Error("apply suggestion failed", zap.String("case_id", sg.CaseID), zap.Error(err))
			failed = err
			reject(sg, err.Error())
		}
	}

	// ── notify after every commit ──
	for _, sg := range applied {
		s.notifier.Notify(ctx, sg.VolunteerID,
			fmt.Sprintf("You have been assigned to case %s. (optimizer)", sg.CaseID),
			Ref{Type: RelatedCase, ID: sg.CaseID})
		s.auditor.Record(ctx, actorID, AuditEntityCase, map[string]interface{}{
			"action": "assign", "case_id": sg.CaseID, "volunteer_id": sg.VolunteerID, "source": "optimizer",
		})
	}
	if len(applied) > 0 {
		s.notifier.NotifyCoordinators(ctx,
			fmt.Sprintf("Optimizer applied: %d assignments.", len(applied)),
			Ref{Type: RelatedPlan})
	}
	s.auditor.Record(ctx, actorID, AuditEntityPlan, map[string]interface{}{
		"action":   "apply",
		"applied":  resp.Applied,
		"rejected": len(resp.Rejected),
	})
	return resp, nil
}

func (s *assignmentService) applyOne(ctx context.Context, sg dto.ApplySuggestion, actorID *string) error {
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		c, err := lockCase(ctx, tx, sg.CaseID)
		if err != nil {
			return err
		}
		if c.Version != sg.CaseVersion || c.AssignedTo != nil || !c.Status.IsOpen() {
			return fmt.Errorf("%w: %s", pkgerrors.ErrAlreadyAssigned, sg.CaseID)
		}
		volunteerID := sg.VolunteerID
		if _, err := assignCase(ctx, tx, c, &volunteerID, nil, actorID, s.now().UTC()); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return fmt.Errorf("%w: %s", pkgerrors.ErrAlreadyAssigned, sg.CaseID)
			}
			return err
		}
		return nil
	})
}
