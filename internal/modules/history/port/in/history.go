package in

import (
	"context"

	"focuspulse/internal/modules/history/dto"
)

type Usecase interface {
	List(ctx context.Context, limit int) ([]dto.SessionRow, error)
	Get(ctx context.Context, id string) (dto.SessionDetail, error)
	Dashboard(ctx context.Context) (dto.DashboardOutput, error)
	Tasks(ctx context.Context) ([]dto.TaskOutput, error)
	Reset(ctx context.Context) (dto.ResetOutput, error)
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, raw []byte) (dto.ImportOutput, error)
}
