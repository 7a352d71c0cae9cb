package server

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/DreamoreWM/365d/internal/handlers"
	"github.com/DreamoreWM/365d/internal/httpx"
	"github.com/DreamoreWM/365d/internal/services"
)

// New constructs the root http.Handler with all routes applied.
func New(db *gorm.DB, manager *services.PrestationManager) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1) – detailed errors stay out of the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Bons de commande
	bh := handlers.NewBonHandler(db, manager)
	mux.HandleFunc("/bons", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			bh.List(w, r)
		case http.MethodPost:
			bh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/bons/update", requirePost(bh.Update))
	mux.HandleFunc("/bons/delete", requirePost(bh.Delete))
	mux.HandleFunc("/bons/recompute", requirePost(bh.Recompute))

	// Prestations
	ph := handlers.NewPrestationHandler(db, manager)
	mux.HandleFunc("/prestations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/prestations/update", requirePost(ph.Update))
	mux.HandleFunc("/prestations/delete", requirePost(ph.Delete))
	mux.HandleFunc("/prestations/terminate", requirePost(ph.Terminate))

	// Types de prestation
	th := handlers.NewTypePrestationHandler(db)
	mux.HandleFunc("/types", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			th.List(w, r)
		case http.MethodPost:
			th.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})

	// Batch sweep, same pass the scheduler runs
	sh := handlers.NewSweepHandler(manager)
	mux.HandleFunc("/sweep", requirePost(sh.Run))

	return mux
}

func requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		next(w, r)
	}
}
