package in

import (
	"context"

	sessiondto "focuspulse/internal/modules/session/dto"
	sessionin "focuspulse/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, task string, durationMinutes, idleThresholdSeconds int) (sessiondto.SessionOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{TaskName: task, DurationMinutes: durationMinutes, IdleThresholdSeconds: idleThresholdSeconds})
}

// Status settles an expired session before reporting, so a timer that ran
// out while nothing was ticking shows up as archived.
func (h CLIHandler) Status(ctx context.Context) (sessiondto.TickOutput, error) {
	return h.usecase.Tick(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (sessiondto.SummaryOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Recover(ctx context.Context) (sessiondto.RecoverOutput, error) {
	return h.usecase.Recover(ctx)
}
