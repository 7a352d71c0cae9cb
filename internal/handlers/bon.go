package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DreamoreWM/365d/internal/httpx"
	"github.com/DreamoreWM/365d/internal/models"
	"github.com/DreamoreWM/365d/internal/services"
)

// BonHandler exposes the bon de commande endpoints.
type BonHandler struct {
	DB      *gorm.DB
	Manager *services.PrestationManager
}

func NewBonHandler(db *gorm.DB, m *services.PrestationManager) *BonHandler {
	return &BonHandler{DB: db, Manager: m}
}

var searchSanitizer = regexp.MustCompile(`[^a-zA-Z0-9 \-_@.]`)

// List: GET /bons – refresh-on-view: a full sweep runs first so the listing
// never shows yesterday's statuses. Filters: statut, q (client name).
func (h *BonHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Manager.SweepAll(time.Now()); err != nil {
		// A partial sweep is still a better view than none; serve the list.
		log.Printf("bons list: refresh sweep: %v", err)
	}
	limit, offset := pagination(r)
	dbq := h.DB.Model(&models.BonDeCommande{})
	if v := r.URL.Query().Get("statut"); v != "" {
		dbq = dbq.Where("statut = ?", v)
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		safe := searchSanitizer.ReplaceAllString(q, "")
		dbq = dbq.Where("lower(client_nom) LIKE ?", "%"+strings.ToLower(safe)+"%")
	}
	var total int64
	dbq.Count(&total)
	var bons []models.BonDeCommande
	if err := dbq.Preload("Prestations").Preload("TypePrestation").Order("id desc").Limit(limit).Offset(offset).Find(&bons).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_bons", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": bons, "total": total, "limit": limit, "offset": offset})
}

type bonReq struct {
	NumeroCommande          string `json:"numero_commande"`
	ClientNom               string `json:"client_nom"`
	ClientAdresse           string `json:"client_adresse"`
	ClientComplementAdresse string `json:"client_complement_adresse"`
	ClientTelephone         string `json:"client_telephone"`
	ClientEmail             string `json:"client_email"`
	DateCommande            string `json:"date_commande"`
	DateLimiteExecution     string `json:"date_limite_execution"`
	TypeID                  uint   `json:"type_prestation_id"`
	// Quota override, only meaningful without a type attached.
	NombrePrestationsNecessaires int `json:"nombre_prestations_necessaires"`
}

// Create: POST /bons – intake. Accepts optional embedded prestations whose
// statuts are resolved before the save; the bon's own statut and counters
// come out of the aggregator, never from the payload.
func (h *BonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		bonReq
		Prestations []prestationReq `json:"prestations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if strings.TrimSpace(req.ClientNom) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "client_nom_required", nil)
		return
	}
	today := time.Now()
	bon := models.BonDeCommande{
		NumeroCommande:               strings.TrimSpace(req.NumeroCommande),
		ClientNom:                    strings.TrimSpace(req.ClientNom),
		ClientAdresse:                req.ClientAdresse,
		ClientComplementAdresse:      req.ClientComplementAdresse,
		ClientTelephone:              req.ClientTelephone,
		ClientEmail:                  req.ClientEmail,
		DateCommande:                 today,
		NombrePrestationsNecessaires: req.NombrePrestationsNecessaires,
	}
	if bon.NumeroCommande == "" {
		bon.NumeroCommande = "BC-" + strings.ToUpper(uuid.NewString()[:8])
	}
	if req.DateCommande != "" {
		d, derr := parseDate(req.DateCommande)
		if derr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		bon.DateCommande = *d
	}
	if req.DateLimiteExecution != "" {
		d, derr := parseDate(req.DateLimiteExecution)
		if derr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		bon.DateLimiteExecution = d
	}
	if req.TypeID != 0 {
		var tp models.TypePrestation
		if err := h.DB.First(&tp, req.TypeID).Error; err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "type_not_found", nil)
			return
		}
		bon.TypePrestationID = tp.ID
		bon.TypePrestation = &tp
	}
	for _, pr := range req.Prestations {
		date, derr := parseDate(pr.DatePrestation)
		if derr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		bon.Prestations = append(bon.Prestations, models.Prestation{
			DatePrestation:   date,
			Description:      pr.Description,
			EmployeID:        pr.EmployeID,
			TypePrestationID: pr.TypeID,
			Statut:           services.ResolveStatut(date, "", today),
		})
	}
	services.AggregateBon(&bon)
	if err := h.DB.Create(&bon).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, bon)
}

// Update: POST /bons/update?id= – edits intake fields; statut and counters
// are re-derived afterwards.
func (h *BonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var bon models.BonDeCommande
	if err := h.DB.First(&bon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "bon_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "bon_load_failed", nil)
		return
	}
	var req bonReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.NumeroCommande != "" {
		bon.NumeroCommande = strings.TrimSpace(req.NumeroCommande)
	}
	if req.ClientNom != "" {
		bon.ClientNom = strings.TrimSpace(req.ClientNom)
	}
	if req.ClientAdresse != "" {
		bon.ClientAdresse = req.ClientAdresse
	}
	if req.ClientComplementAdresse != "" {
		bon.ClientComplementAdresse = req.ClientComplementAdresse
	}
	if req.ClientTelephone != "" {
		bon.ClientTelephone = req.ClientTelephone
	}
	if req.ClientEmail != "" {
		bon.ClientEmail = req.ClientEmail
	}
	if req.DateCommande != "" {
		d, derr := parseDate(req.DateCommande)
		if derr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		bon.DateCommande = *d
	}
	if req.DateLimiteExecution != "" {
		d, derr := parseDate(req.DateLimiteExecution)
		if derr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_date", nil)
			return
		}
		bon.DateLimiteExecution = d
	}
	if req.TypeID != 0 {
		var tp models.TypePrestation
		if err := h.DB.First(&tp, req.TypeID).Error; err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "type_not_found", nil)
			return
		}
		bon.TypePrestationID = tp.ID
	}
	if req.NombrePrestationsNecessaires > 0 {
		bon.NombrePrestationsNecessaires = req.NombrePrestationsNecessaires
	}
	if err := h.DB.Save(&bon).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_update_failed", nil)
		return
	}
	if err := h.Manager.RecomputeBonByID(bon.ID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_recompute_failed", nil)
		return
	}
	if err := h.DB.Preload("Prestations").Preload("TypePrestation").First(&bon, bon.ID).Error; err == nil {
		httpx.JSON(w, http.StatusOK, bon)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": bon.ID})
}

// Recompute: POST /bons/recompute?id= – the explicit API write-path hook.
func (h *BonHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	if err := h.Manager.RecomputeBonByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "bon_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "bon_recompute_failed", nil)
		return
	}
	var bon models.BonDeCommande
	if err := h.DB.Preload("Prestations").Preload("TypePrestation").First(&bon, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_load_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, bon)
}

// Delete: POST /bons/delete?id= – the bon owns its prestations, so they go
// with it.
func (h *BonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var bon models.BonDeCommande
	if err := h.DB.First(&bon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "bon_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "bon_load_failed", nil)
		return
	}
	// Explicit cascade: sqlite in tests does not enforce the FK constraint.
	if err := h.DB.Where("bon_de_commande_id = ?", id).Delete(&models.Prestation{}).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_delete_failed", nil)
		return
	}
	if err := h.DB.Delete(&bon).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "bon_delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
