package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"relief-ops/internal/dto"
	"relief-ops/internal/forecast"
	"relief-ops/internal/model"
	"relief-ops/internal/repository"
	pkgerrors "relief-ops/pkg/errors"
)

var ErrBloodUnitNotFound = fmt.Errorf("blood unit %w", pkgerrors.ErrNotFound)

// bloodAlertDays a unit expiring within this many days raises an alert on write
const bloodAlertDays = 7

// BloodService blood inventory administration. Every write is audited once
// and raises threshold alerts to coordinators.
type BloodService interface {
	List(ctx context.Context) ([]model.BloodUnit, error)
	Create(ctx context.Context, req *dto.BloodUnitRequest, actorID *string) (*model.BloodUnit, error)
	Update(ctx context.Context, id string, req *dto.UpdateBloodUnitRequest, actorID *string) (*model.BloodUnit, error)
	Delete(ctx context.Context, id string, actorID *string) error
	// BulkWrite replaces the whole inventory
	BulkWrite(ctx context.Context, req *dto.BulkBloodRequest, actorID *string) (*dto.BulkBloodResponse, error)
	// Inventory read view consumed by the forecasting engine
	Inventory(ctx context.Context) ([]forecast.InventoryUnit, error)
}

type bloodService struct {
	repo     *repository.Repository
	notifier Notifier
	auditor  Auditor
	logger   *zap.Logger
	now      func() time.Time
}

// NewBloodService creates the inventory service
func NewBloodService(repo *repository.Repository, notifier Notifier, auditor Auditor, logger *zap.Logger) BloodService {
	return &bloodService{
		repo:     repo,
		notifier: notifier,
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *bloodService) List(ctx context.Context) ([]model.BloodUnit, error) {
	units, err := s.repo.Blood.List(ctx)
	if err != nil {
		s.logger.Error("list blood inventory failed", zap.Error(err))
		return nil, err
	}
	return units, nil
}

func (s *bloodService) Create(ctx context.Context, req *dto.BloodUnitRequest, actorID *string) (*model.BloodUnit, error) {
	unit := unitFromRequest(req)
	unit.CreatedBy = actorID
	if err := s.repo.Blood.Create(ctx, &unit); err != nil {
		s.logger.Error("create blood unit failed", zap.Error(err))
		return nil, err
	}

	s.alert(ctx, unit)
	s.auditor.Record(ctx, actorID, AuditEntityBlood, map[string]interface{}{"action": "create", "row": unit})
	return &unit, nil
}

func (s *bloodService) Update(ctx context.Context, id string, req *dto.UpdateBloodUnitRequest, actorID *string) (*model.BloodUnit, error) {
	unit, err := s.repo.Blood.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBloodUnitNotFound, id)
		}
		s.logger.Error("get blood unit failed", zap.String("unit_id", id), zap.Error(err))
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Region != nil {
		unit.Region = *req.Region
		fields["region"] = *req.Region
	}
	if req.Country != nil {
		unit.Country = *req.Country
		fields["country"] = *req.Country
	}
	if req.BloodType != nil {
		unit.BloodType = *req.BloodType
		fields["blood_type"] = *req.BloodType
	}
	if req.Units != nil {
		unit.Units = *req.Units
		fields["units"] = *req.Units
	}
	if req.ExpiresOn != nil {
		unit.ExpiresOn = *req.ExpiresOn
		fields["expires_on"] = *req.ExpiresOn
	}
	unit.UpdatedBy = actorID

	if err := s.repo.Blood.Update(ctx, unit); err != nil {
		s.logger.Error("update blood unit failed", zap.String("unit_id", id), zap.Error(err))
		return nil, err
	}

	s.alert(ctx, *unit)
	s.auditor.Record(ctx, actorID, AuditEntityBlood, map[string]interface{}{"action": "update", "id": id, "fields": fields})
	return unit, nil
}

func (s *bloodService) Delete(ctx context.Context, id string, actorID *string) error {
	if err := s.repo.Blood.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrBloodUnitNotFound, id)
		}
		s.logger.Error("delete blood unit failed", zap.String("unit_id", id), zap.Error(err))
		return err
	}
	s.auditor.Record(ctx, actorID, AuditEntityBlood, map[string]interface{}{"action": "delete", "id": id})
	return nil
}

func (s *bloodService) BulkWrite(ctx context.Context, req *dto.BulkBloodRequest, actorID *string) (*dto.BulkBloodResponse, error) {
	units := make([]model.BloodUnit, 0, len(req.Units))
	for i := range req.Units {
		u := unitFromRequest(&req.Units[i])
		u.CreatedBy = actorID
		units = append(units, u)
	}

	if err := s.repo.Blood.ReplaceAll(ctx, units); err != nil {
		s.logger.Error("bulk write blood inventory failed", zap.Int("rows", len(units)), zap.Error(err))
		return nil, err
	}

	for _, u := range units {
		s.alert(ctx, u)
	}
	s.auditor.Record(ctx, actorID, AuditEntityBlood, map[string]interface{}{"action": "bulk_write", "rows": len(units)})
	return &dto.BulkBloodResponse{Rows: len(units)}, nil
}

func (s *bloodService) Inventory(ctx context.Context) ([]forecast.InventoryUnit, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]forecast.InventoryUnit, 0, len(rows))
	for _, r := range rows {
		out = append(out, forecast.InventoryUnit{
			UnitID:    r.UnitID,
			Region:    r.Region,
			Country:   r.Country,
			BloodType: r.BloodType,
			Units:     r.Units,
			ExpiresOn: r.ExpiresOn,
		})
	}
	return out, nil
}

// alert notifies coordinators when a written row crossed a threshold
func (s *bloodService) alert(ctx context.Context, u model.BloodUnit) {
	msg := bloodThresholdMessage(u.Units, u.ExpiresOn, s.now())
	if msg == "" {
		return
	}
	s.notifier.NotifyCoordinators(ctx, msg, Ref{Type: RelatedBloodUnit, ID: u.UnitID})
}

// bloodThresholdMessage empty when the row needs no attention. Unparsable
// dates are not alerted on.
func bloodThresholdMessage(units int, expiresOn string, now time.Time) string {
	if units <= 0 {
		return "Blood inventory alert: units is 0."
	}
	raw := strings.TrimSpace(expiresOn)
	if raw == "" {
		return ""
	}
	days, err := forecast.DaysUntil(raw, now)
	if err != nil {
		return ""
	}
	switch {
	case days < 0:
		return fmt.Sprintf("Blood inventory alert: record expired %d day(s) ago.", -days)
	case days <= bloodAlertDays:
		return fmt.Sprintf("Blood inventory alert: record expiring in %d day(s).", days)
	}
	return ""
}

func unitFromRequest(req *dto.BloodUnitRequest) model.BloodUnit {
	return model.BloodUnit{
		Region:    req.Region,
		Country:   req.Country,
		BloodType: req.BloodType,
		Units:     req.Units,
		ExpiresOn: req.ExpiresOn,
	}
}
