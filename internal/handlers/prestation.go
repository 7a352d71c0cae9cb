package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/DreamoreWM/365d/internal/httpx"
	"github.com/DreamoreWM/365d/internal/models"
	"github.com/DreamoreWM/365d/internal/services"
)

// PrestationHandler exposes the prestation write paths. Every mutation runs
// the resolver on the touched prestation and re-aggregates the owning bon,
// so the stored statuses never lag a write.
type PrestationHandler struct {
	DB      *gorm.DB
	Manager *services.PrestationManager
}

func NewPrestationHandler(db *gorm.DB, m *services.PrestationManager) *PrestationHandler {
	return &PrestationHandler{DB: db, Manager: m}
}

// List: GET /prestations – filters: bon_id, statut, employe_id
func (h *PrestationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	dbq := h.DB.Model(&models.Prestation{})
	if v := r.URL.Query().Get("bon_id"); v != "" {
		dbq = dbq.Where("bon_de_commande_id = ?", v)
	}
	if v := r.URL.Query().Get("statut"); v != "" {
		if !models.StatutPrestation(v).Valid() {
			httpx.JSONError(w, http.StatusBadRequest, "unknown_statut", nil)
			return
		}
		dbq = dbq.Where("statut = ?", v)
	}
	if v := r.URL.Query().Get("employe_id"); v != "" {
		dbq = dbq.Where("employe_id = ?", v)
	}
	var total int64
	dbq.Count(&total)
	var prestations []models.Prestation
	if err := dbq.Preload("Employe").Preload("TypePrestation").Order("date_prestation asc, id asc").Limit(limit).Offset(offset).Find(&prestations).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_prestations", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": prestations, "total": total, "limit": limit, "offset": offset})
}

type prestationReq struct {
	DatePrestation  string `json:"date_prestation"`
	Description     string `json:"description"`
	BonDeCommandeID uint   `json:"bon_de_commande_id"`
	EmployeID       uint   `json:"employe_id"`
	TypeID          uint   `json:"type_prestation_id"`
}

// Create: POST /prestations – statut is resolved before the save, then the
// owning bon is recomputed.
func (h *PrestationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req prestationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	date, err := parseDate(req.DatePrestation)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
		return
	}
	if req.BonDeCommandeID != 0 {
		var count int64
		h.DB.Model(&models.BonDeCommande{}).Where("id = ?", req.BonDeCommandeID).Count(&count)
		if count == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "bon_not_found", nil)
			return
		}
	}
	today := time.Now()
	p := models.Prestation{
		DatePrestation:   date,
		Description:      req.Description,
		BonDeCommandeID:  req.BonDeCommandeID,
		EmployeID:        req.EmployeID,
		TypePrestationID: req.TypeID,
		Statut:           services.ResolveStatut(date, "", today),
	}
	if err := h.DB.Create(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "prestation_create_failed", nil)
		return
	}
	if err := h.Manager.RecomputeBonByID(p.BonDeCommandeID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_recompute_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update: POST /prestations/update?id= – edits date/description/assignment.
// Statut is not freely settable; it is re-resolved from the (possibly new)
// date, which is also how a non effectuée prestation gets rescheduled.
func (h *PrestationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var p models.Prestation
	if err := h.DB.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "prestation_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "prestation_load_failed", nil)
		return
	}
	var req struct {
		prestationReq
		ClearDate bool `json:"clear_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	oldBonID := p.BonDeCommandeID
	if req.ClearDate {
		p.DatePrestation = nil
	} else if req.DatePrestation != "" {
		date, derr := parseDate(req.DatePrestation)
		if derr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		p.DatePrestation = date
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.EmployeID != 0 {
		p.EmployeID = req.EmployeID
	}
	if req.TypeID != 0 {
		p.TypePrestationID = req.TypeID
	}
	if req.BonDeCommandeID != 0 && req.BonDeCommandeID != oldBonID {
		var count int64
		h.DB.Model(&models.BonDeCommande{}).Where("id = ?", req.BonDeCommandeID).Count(&count)
		if count == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "bon_not_found", nil)
			return
		}
		p.BonDeCommandeID = req.BonDeCommandeID
	}
	// A date edit re-enters the state machine: a terminé prestation stays
	// terminé only while its date is in the past.
	if p.DatePrestation == nil || req.ClearDate || req.DatePrestation != "" {
		p.Statut = services.ResolveStatut(p.DatePrestation, p.Statut, time.Now())
	}
	if err := h.DB.Save(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "prestation_update_failed", nil)
		return
	}
	if err := h.Manager.RecomputeBonByID(p.BonDeCommandeID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_recompute_failed", nil)
		return
	}
	if oldBonID != 0 && oldBonID != p.BonDeCommandeID {
		if err := h.Manager.RecomputeBonByID(oldBonID); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "bon_recompute_failed", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Terminate: POST /prestations/terminate?id= – the explicit completion
// action. It bypasses the resolver entirely: terminé is only ever set here,
// and the resolver will keep it afterwards.
func (h *PrestationHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var p models.Prestation
	if err := h.DB.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "prestation_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "prestation_load_failed", nil)
		return
	}
	var req struct {
		CompteRendu string `json:"compte_rendu"`
		Signature   string `json:"signature"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // payload optionnel
	}
	p.Statut = models.PrestationTerminee
	if req.CompteRendu != "" {
		p.CompteRendu = req.CompteRendu
	}
	if req.Signature != "" {
		p.Signature = req.Signature
	}
	if err := h.DB.Save(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "prestation_terminate_failed", nil)
		return
	}
	if err := h.Manager.RecomputeBonByID(p.BonDeCommandeID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_recompute_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete: POST /prestations/delete?id= – removes the prestation then
// recomputes its former bon.
func (h *PrestationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var p models.Prestation
	if err := h.DB.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "prestation_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "prestation_load_failed", nil)
		return
	}
	bonID := p.BonDeCommandeID
	if err := h.DB.Delete(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "prestation_delete_failed", nil)
		return
	}
	if err := h.Manager.RecomputeBonByID(bonID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_recompute_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
