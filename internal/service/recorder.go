package service

import (
	"context"

	"sterilizer_control/internal/controller"
	"sterilizer_control/internal/models"
	"sterilizer_control/internal/repository"
)

// AuditRecorder persists the controller's terminal records to SQLite. The
// in-memory bounded histories stay authoritative; these tables are the
// durable audit trail.
type AuditRecorder struct {
	repos *repository.Repository
}

func NewAuditRecorder(repos *repository.Repository) *AuditRecorder {
	return &AuditRecorder{repos: repos}
}

var _ controller.Recorder = (*AuditRecorder)(nil)

func (a *AuditRecorder) RecordCycle(ctx context.Context, s models.CycleSummary) error {
	return a.repos.Cycles.Append(ctx, s)
}

func (a *AuditRecorder) RecordError(ctx context.Context, e models.ErrorEvent) error {
	return a.repos.Events.Append(ctx, e)
}

func (a *AuditRecorder) RecordVacuumTest(ctx context.Context, r models.VacuumTestResult) error {
	return a.repos.Vacuum.Append(ctx, r)
}
