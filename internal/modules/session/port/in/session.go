package in

import (
	"context"

	"focuspulse/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	GetActive(ctx context.Context) (dto.SessionOutput, error)
	Tick(ctx context.Context) (dto.TickOutput, error)
	RecordVisibility(ctx context.Context, hidden bool) (dto.SessionOutput, error)
	RecordActivity(ctx context.Context) (dto.SessionOutput, error)
	Stop(ctx context.Context) (dto.SummaryOutput, error)
	Recover(ctx context.Context) (dto.RecoverOutput, error)
	Restore(ctx context.Context, input dto.RestoreInput) (dto.SessionOutput, error)
	Discard(ctx context.Context) error
}
