package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"relief-ops/internal/model"
	"relief-ops/internal/repository"
)

// Audit entity kinds
const (
	AuditEntityCase  = "case"
	AuditEntityBlood = "blood_inventory"
	AuditEntityPlan  = "assignment_plan"
)

// Notification related types
const (
	RelatedCase      = "case"
	RelatedBloodUnit = "blood_unit"
	RelatedPlan      = "assignment_plan"
)

// Ref optional link from a notification to the entity it is about
type Ref struct {
	Type string
	ID   string
}

// Notifier notification collaborator. Delivery is best effort: failures are
// logged and never returned to the caller.
type Notifier interface {
	Notify(ctx context.Context, recipientID, message string, ref Ref)
	// NotifyCoordinators fans out to every non-deleted admin and coordinator
	NotifyCoordinators(ctx context.Context, message string, ref Ref)
}

// Auditor audit collaborator. Append-only and best effort.
type Auditor interface {
	Record(ctx context.Context, actorID *string, entityKind string, payload interface{})
}

// ── repository-backed implementations ──

type repoNotifier struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotifier stores notifications through the repository
func NewNotifier(repo *repository.Repository, logger *zap.Logger) Notifier {
	return &repoNotifier{repo: repo, logger: logger}
}

func (n *repoNotifier) Notify(ctx context.Context, recipientID, message string, ref Ref) {
	if recipientID == "" {
		return
	}
	note := &model.Notification{UserID: recipientID, Message: message}
	if ref.Type != "" {
		note.RelatedType = &ref.Type
		note.RelatedID = &ref.ID
	}
	if err := n.repo.Notification.Create(ctx, note); err != nil {
		n.logger.Warn("notification not delivered",
			zap.String("recipient", recipientID), zap.Error(err))
	}
}

func (n *repoNotifier) NotifyCoordinators(ctx context.Context, message string, ref Ref) {
	users, err := n.repo.User.ListByRoles(ctx, model.RoleAdmin, model.RoleCoordinator)
	if err != nil {
		n.logger.Warn("resolve coordinators failed", zap.Error(err))
		return
	}
	for _, u := range users {
		n.Notify(ctx, u.UserID, message, ref)
	}
}

type repoAuditor struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditor appends audit rows through the repository
func NewAuditor(repo *repository.Repository, logger *zap.Logger) Auditor {
	return &repoAuditor{repo: repo, logger: logger}
}

func (a *repoAuditor) Record(ctx context.Context, actorID *string, entityKind string, payload interface{}) {
	b, err := json.Marshal(payload)
	if err != nil {
		a.logger.Warn("audit payload not encodable", zap.String("entity_kind", entityKind), zap.Error(err))
		return
	}
	entry := &model.AuditLog{ActorID: actorID, EntityKind: entityKind, Payload: string(b)}
	if err := a.repo.Audit.Create(ctx, entry); err != nil {
		a.logger.Warn("audit record not written", zap.String("entity_kind", entityKind), zap.Error(err))
	}
}
