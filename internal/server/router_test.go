package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/DreamoreWM/365d/internal/models"
	"github.com/DreamoreWM/365d/internal/services"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.TypePrestation{}, &models.BonDeCommande{}, &models.Prestation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, services.NewPrestationManager(db))
}

func TestHealthEndpoints(t *testing.T) {
	h := setupRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
		var out map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if out["status"] != "ok" {
			t.Fatalf("%s: expected ok got %q", path, out["status"])
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := setupRouter(t)
	cases := []struct {
		method, path string
	}{
		{http.MethodDelete, "/bons"},
		{http.MethodGet, "/sweep"},
		{http.MethodGet, "/prestations/terminate"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405 got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestSweepEndpoint(t *testing.T) {
	h := setupRouter(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sweep", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var res services.SweepResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Failed != 0 {
		t.Fatalf("expected no failures got %d", res.Failed)
	}
}
