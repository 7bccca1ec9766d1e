package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-ops/internal/dto"
	"relief-ops/internal/model"
	"relief-ops/internal/repository"
	pkgerrors "relief-ops/pkg/errors"
)

var (
	ErrCaseNotFound      = fmt.Errorf("case %w", pkgerrors.ErrNotFound)
	ErrVolunteerNotFound = fmt.Errorf("volunteer %w", pkgerrors.ErrNotFound)
	ErrShelterNotFound   = fmt.Errorf("shelter %w", pkgerrors.ErrNotFound)
)

// CaseService case intake, lifecycle and manual assignment
type CaseService interface {
	Create(ctx context.Context, req *dto.CreateCaseRequest, actorID *string) (*model.Case, error)
	GetByID(ctx context.Context, id string) (*model.Case, error)
	List(ctx context.Context, req *dto.CaseListRequest) ([]model.Case, int64, error)
	// Assign sets or clears the volunteer and optionally links a shelter.
	// A full shelter does not fail the call: ShelterLinked is false and a
	// warning is returned.
	Assign(ctx context.Context, caseID string, req *dto.AssignCaseRequest, actorID *string) (*dto.AssignCaseResponse, error)
	// Transition moves the case along the lifecycle state machine
	Transition(ctx context.Context, caseID string, target model.CaseStatus, actorID *string) (*model.Case, error)
}

type caseService struct {
	repo     *repository.Repository
	notifier Notifier
	auditor  Auditor
	logger   *zap.Logger
	now      func() time.Time
}

// NewCaseService creates the case service
func NewCaseService(repo *repository.Repository, notifier Notifier, auditor Auditor, logger *zap.Logger) CaseService {
	return &caseService{
		repo:     repo,
		notifier: notifier,
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *caseService) Create(ctx context.Context, req *dto.CreateCaseRequest, actorID *string) (*model.Case, error) {
	now := s.now().UTC()
	c := &model.Case{
		VictimName:     req.VictimName,
		ContactEmail:   req.ContactEmail,
		Phone:          req.Phone,
		Region:         req.Region,
		Country:        req.Country,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Description:    req.Description,
		AttachmentPath: req.AttachmentPath,
		Status:         model.CaseStatusNew,
		Timeline:       model.Timeline{}.Append(now, nil, "created"),
	}
	c.CreatedBy = actorID
	c.Version = 1

	if err := s.repo.Case.Create(ctx, c); err != nil {
		s.logger.Error("create case failed", zap.Error(err))
		return nil, err
	}

	s.notifier.NotifyCoordinators(ctx, "New emergency case submitted: "+c.CaseID, Ref{Type: RelatedCase, ID: c.CaseID})
	s.auditor.Record(ctx, actorID, AuditEntityCase, map[string]interface{}{
		"action": "create", "case_id": c.CaseID, "region": c.Region,
	})
	return c, nil
}

func (s *caseService) GetByID(ctx context.Context, id string) (*model.Case, error) {
	c, err := s.repo.Case.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, id)
		}
		s.logger.Error("get case failed", zap.String("case_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *caseService) List(ctx context.Context, req *dto.CaseListRequest) ([]model.Case, int64, error) {
	filter := repository.CaseFilter{
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Region:     req.Region,
	}
	cases, total, err := s.repo.Case.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list cases failed", zap.Error(err))
		return nil, 0, err
	}
	return cases, total, nil
}

func (s *caseService) Assign(ctx context.Context, caseID string, req *dto.AssignCaseRequest, actorID *string) (*dto.AssignCaseResponse, error) {
	var (
		updated *model.Case
		linked  bool
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		c, err := lockCase(ctx, tx, caseID)
		if err != nil {
			return err
		}
		linked, err = assignCase(ctx, tx, c, req.VolunteerID, req.ShelterID, actorID, s.now().UTC())
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrNotFound) {
			s.logger.Error("assign case failed", zap.String("case_id", caseID), zap.Error(err))
		}
		return nil, err
	}

	resp := &dto.AssignCaseResponse{Case: updated, ShelterLinked: linked}
	if req.ShelterID != nil && !linked {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s: %s", pkgerrors.ErrShelterFull, *req.ShelterID))
	}

	ref := Ref{Type: RelatedCase, ID: caseID}
	if updated.AssignedTo != nil {
		s.notifier.Notify(ctx, *updated.AssignedTo, fmt.Sprintf("You have been assigned to case %s.", caseID), ref)
	}
	s.notifier.NotifyCoordinators(ctx, fmt.Sprintf("Case %s assignment updated.", caseID), ref)
	s.auditor.Record(ctx, actorID, AuditEntityCase, map[string]interface{}{
		"action":         "assign",
		"case_id":        caseID,
		"volunteer_id":   req.VolunteerID,
		"shelter_id":     req.ShelterID,
		"shelter_linked": linked,
	})
	return resp, nil
}

func (s *caseService) Transition(ctx context.Context, caseID string, target model.CaseStatus, actorID *string) (*model.Case, error) {
	var (
		updated *model.Case
		from    model.CaseStatus
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		c, err := lockCase(ctx, tx, caseID)
		if err != nil {
			return err
		}
		from = c.Status
		if !CanTransition(c.Status, target) {
			return fmt.Errorf("%w: %s -> %s", pkgerrors.ErrInvalidTransition, c.Status, target)
		}
		applyTransition(c, target, actorID, s.now().UTC())
		if err := tx.Case.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrNotFound) && !errors.Is(err, pkgerrors.ErrInvalidTransition) {
			s.logger.Error("case transition failed", zap.String("case_id", caseID), zap.Error(err))
		}
		return nil, err
	}

	ref := Ref{Type: RelatedCase, ID: caseID}
	if updated.AssignedTo != nil {
		s.notifier.Notify(ctx, *updated.AssignedTo, fmt.Sprintf("Status for case %s set to %s.", caseID, target), ref)
	}
	s.notifier.NotifyCoordinators(ctx, fmt.Sprintf("Case %s status changed to %s.", caseID, target), ref)
	s.auditor.Record(ctx, actorID, AuditEntityCase, map[string]interface{}{
		"action": "status", "case_id": caseID, "from": from, "to": target,
	})
	return updated, nil
}

// ── shared helpers ──

func lockCase(ctx context.Context, tx *repository.Repository, caseID string) (*model.Case, error) {
	c, err := tx.Case.GetForUpdate(ctx, caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
		}
		return nil, err
	}
	return c, nil
}

// assignCase writes the assignee and the optional shelter link on a case the
// caller already holds inside tx. It reports whether the shelter got linked.
func assignCase(
	ctx context.Context,
	tx *repository.Repository,
	c *model.Case,
	volunteerID, shelterID, actorID *string,
	now time.Time,
) (bool, error) {
	if volunteerID != nil {
		v, err := tx.User.GetByID(ctx, *volunteerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, fmt.Errorf("%w: %s", ErrVolunteerNotFound, *volunteerID)
			}
			return false, err
		}
		if v.Role != model.RoleVolunteer {
			return false, fmt.Errorf("%w: %s", ErrVolunteerNotFound, *volunteerID)
		}
	}

	c.AssignedTo = volunteerID
	assignee := ""
	if volunteerID != nil {
		assignee = *volunteerID
	}
	c.Timeline = c.Timeline.Append(now, actorID, "assigned_to="+assignee)

	linked := false
	if shelterID != nil {
		if _, err := tx.Shelter.GetByID(ctx, *shelterID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, fmt.Errorf("%w: %s", ErrShelterNotFound, *shelterID)
			}
			return false, err
		}
		ok, err := tx.Shelter.DecrementAvailable(ctx, *shelterID)
		if err != nil {
			return false, err
		}
		if ok {
			c.ShelterID = shelterID
			c.Timeline = c.Timeline.Append(now, actorID, "shelter_assigned="+*shelterID)
			linked = true
		}
	}

	c.UpdatedBy = actorID
	if err := tx.Case.Update(ctx, c); err != nil {
		return false, err
	}
	return linked, nil
}
