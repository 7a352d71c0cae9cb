package handlers

import (
	"net/http"
	"time"

	"github.com/DreamoreWM/365d/internal/httpx"
	"github.com/DreamoreWM/365d/internal/services"
)

// SweepHandler triggers a full status sweep on demand, the same pass the
// scheduler runs nightly.
type SweepHandler struct {
	Manager *services.PrestationManager
}

func NewSweepHandler(m *services.PrestationManager) *SweepHandler {
	return &SweepHandler{Manager: m}
}

// Run: POST /sweep
func (h *SweepHandler) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.Manager.SweepAll(time.Now())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "sweep_incomplete", res)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
