package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	"focuspulse/internal/modules/history/domain"
	"focuspulse/internal/modules/history/dto"
	historyin "focuspulse/internal/modules/history/port/in"
	historyout "focuspulse/internal/modules/history/port/out"
	"focuspulse/internal/modules/history/service"
	apperrors "focuspulse/internal/platform/errors"
	"focuspulse/internal/platform/slug"
)

type Interactor struct {
	store  historyout.Store
	active historyout.ActiveSessions
	logger hclog.Logger
}

func NewInteractor(store historyout.Store, active historyout.ActiveSessions, logger hclog.Logger) historyin.Usecase {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Interactor{store: store, active: active, logger: logger}
}

func (i *Interactor) List(ctx context.Context, limit int) ([]dto.SessionRow, error) {
	records, err := i.store.List(ctx, service.NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionRow, 0, len(records))
	for _, r := range records {
		out = append(out, service.ToRow(r))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.SessionDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return dto.SessionDetail{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	record, err := i.store.Get(ctx, id)
	if err != nil {
		return dto.SessionDetail{}, err
	}
	return service.ToDetail(record), nil
}

func (i *Interactor) Dashboard(ctx context.Context) (dto.DashboardOutput, error) {
	totals, err := i.store.Totals(ctx)
	if err != nil {
		return dto.DashboardOutput{}, err
	}
	return service.ToDashboard(totals), nil
}

func (i *Interactor) Tasks(ctx context.Context) ([]dto.TaskOutput, error) {
	tasks, err := i.store.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TaskOutput, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, service.ToTask(t))
	}
	return out, nil
}

// Reset drops the active session first so a concurrent tick cannot archive
// it after history was cleared.
func (i *Interactor) Reset(ctx context.Context) (dto.ResetOutput, error) {
	out := dto.ResetOutput{}
	_, err := i.active.GetActive(ctx)
	switch {
	case err == nil:
		if err := i.active.Discard(ctx); err != nil {
			return dto.ResetOutput{}, err
		}
		out.ClearedActive = true
	case !errors.Is(err, apperrors.ErrNoActiveSession):
		return dto.ResetOutput{}, err
	}
	deleted, err := i.store.DeleteAll(ctx)
	if err != nil {
		return dto.ResetOutput{}, err
	}
	out.DeletedSessions = deleted
	i.logger.Info("history reset", "deleted", deleted, "cleared_active", out.ClearedActive)
	return out, nil
}

func (i *Interactor) Export(ctx context.Context) ([]byte, error) {
	records, err := i.store.All(ctx)
	if err != nil {
		return nil, err
	}
	doc := domain.LegacyDocument{Sessions: make([]domain.LegacySession, 0, len(records))}
	for _, r := range records {
		doc.Sessions = append(doc.Sessions, domain.LegacyFromRecord(r))
	}
	active, err := i.active.GetActive(ctx)
	switch {
	case err == nil:
		legacy := service.LegacyFromActive(active)
		doc.ActiveSession = &legacy
	case !errors.Is(err, apperrors.ErrNoActiveSession):
		return nil, err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", domain.LegacyKey, err)
	}
	return raw, nil
}

// Import merges an exported document. Known ids are skipped and the active
// session is only restored into an empty slot.
func (i *Interactor) Import(ctx context.Context, raw []byte) (dto.ImportOutput, error) {
	doc := domain.LegacyDocument{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return dto.ImportOutput{}, fmt.Errorf("%w: decode %s: %v", apperrors.ErrInvalidInput, domain.LegacyKey, err)
	}
	out := dto.ImportOutput{}
	records := make([]domain.Record, 0, len(doc.Sessions))
	for _, legacy := range doc.Sessions {
		record, err := legacy.Record()
		if err != nil {
			out.Skipped++
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		record.TaskSlug = slug.Make(record.TaskName)
		records = append(records, record)
	}
	inserted, skipped, err := i.store.Insert(ctx, records)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	out.Imported = inserted
	out.Skipped += skipped

	if doc.ActiveSession != nil && doc.ActiveSession.IsActive {
		_, err := i.active.Restore(ctx, service.RestoreInput(*doc.ActiveSession))
		switch {
		case err == nil:
			out.ActiveRestored = true
		case errors.Is(err, apperrors.ErrActiveSessionExists), errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrInvalidInput):
			out.Warnings = append(out.Warnings, fmt.Sprintf("active session not restored: %v", err))
		default:
			return out, err
		}
	}
	i.logger.Info("history imported", "imported", out.Imported, "skipped", out.Skipped, "active_restored", out.ActiveRestored)
	return out, nil
}
