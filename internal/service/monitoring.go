package service

import (
	"sort"

	"sterilizer_control/internal/controller"
	"sterilizer_control/internal/models"
)

type MonitoringService struct {
	ctrl *controller.Controller
}

func NewMonitoringService(ctrl *controller.Controller) *MonitoringService {
	return &MonitoringService{ctrl: ctrl}
}

var _ Monitoring = (*MonitoringService)(nil)

// Snapshot returns the controller's latest immutable state copy.
func (s *MonitoringService) Snapshot() models.SterilizerState {
	return s.ctrl.Snapshot()
}

// Programs lists the configured cycle templates in stable id order.
func (s *MonitoringService) Programs() []models.ProgramConfig {
	progs := s.ctrl.Programs()
	sort.Slice(progs, func(i, j int) bool { return progs[i].ID < progs[j].ID })
	return progs
}
