package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/DreamoreWM/365d/internal/httpx"
	"github.com/DreamoreWM/365d/internal/models"
)

// TypePrestationHandler manages the reference data behind the quota rule.
type TypePrestationHandler struct {
	DB *gorm.DB
}

func NewTypePrestationHandler(db *gorm.DB) *TypePrestationHandler {
	return &TypePrestationHandler{DB: db}
}

// List: GET /types
func (h *TypePrestationHandler) List(w http.ResponseWriter, r *http.Request) {
	var types []models.TypePrestation
	if err := h.DB.Order("nom asc").Find(&types).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_types", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": types, "total": len(types)})
}

// Create: POST /types
func (h *TypePrestationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nom                          string `json:"nom"`
		NombrePrestationsNecessaires int    `json:"nombre_prestations_necessaires"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Nom = strings.TrimSpace(req.Nom)
	if req.Nom == "" {
		httpx.JSONError(w, http.StatusBadRequest, "nom_required", nil)
		return
	}
	if req.NombrePrestationsNecessaires <= 0 {
		req.NombrePrestationsNecessaires = 1
	}
	tp := models.TypePrestation{Nom: req.Nom, NombrePrestationsNecessaires: req.NombrePrestationsNecessaires}
	if err := h.DB.Create(&tp).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			httpx.JSONError(w, http.StatusConflict, "nom_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "type_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, tp)
}
