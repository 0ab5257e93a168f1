package in

import (
	"context"

	"focuspulse/internal/modules/history/dto"
	historyin "focuspulse/internal/modules/history/port/in"
)

type CLIHandler struct {
	usecase historyin.Usecase
}

func NewCLIHandler(usecase historyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, limit int) ([]dto.SessionRow, error) {
	return h.usecase.List(ctx, limit)
}

func (h CLIHandler) Show(ctx context.Context, id string) (dto.SessionDetail, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) Stats(ctx context.Context) (dto.DashboardOutput, error) {
	return h.usecase.Dashboard(ctx)
}

func (h CLIHandler) Tasks(ctx context.Context) ([]dto.TaskOutput, error) {
	return h.usecase.Tasks(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) (dto.ResetOutput, error) {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Export(ctx context.Context) ([]byte, error) {
	return h.usecase.Export(ctx)
}

func (h CLIHandler) Import(ctx context.Context, raw []byte) (dto.ImportOutput, error) {
	return h.usecase.Import(ctx, raw)
}
