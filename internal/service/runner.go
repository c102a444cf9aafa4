package service

import (
	"context"
	"time"

	"sterilizer_control/internal/controller"
	"sterilizer_control/internal/logger"
	"sterilizer_control/internal/port"
)

// RunnerService is the only component that owns a timer: every tick it
// advances the simulated physics (when the backend exposes that) and then
// steps the controller with the wall-clock dt. The controller itself stays
// schedule-free so tests can drive it at arbitrary rates.
type RunnerService struct {
	ctrl    *controller.Controller
	backend port.Port
	log     *logger.Logger
}

func NewRunnerService(ctrl *controller.Controller, backend port.Port, log *logger.Logger) *RunnerService {
	return &RunnerService{ctrl: ctrl, backend: backend, log: log}
}

var _ Runner = (*RunnerService)(nil)

// Run ticks at the given interval until ctx is canceled.
func (s *RunnerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt <= 0 {
				continue
			}
			if adv, ok := s.backend.(port.Advancer); ok {
				adv.Advance(dt)
			}
			if err := s.ctrl.Step(ctx, dt); err != nil && s.log != nil {
				s.log.Errorw("controller_step_failed", "err", err)
			}
		}
	}
}
