package handlers

import (
	"net/http"

	"github.com/sundayleague/match-system/services"
)

type MaintenanceHandler struct {
	maintenanceService services.MaintenanceService
}

func NewMaintenanceHandler(ms services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: ms}
}

// SweepHandler обрабатывает POST /maintenance/sweep — внешний триггер для
// идемпотентных фоновых проходов.
func (h *MaintenanceHandler) SweepHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.maintenanceService.Sweep(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
