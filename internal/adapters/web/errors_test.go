package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON_SetsContentTypeBeforeStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]string{"name": "Fita de Cetim"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestWriteServiceError_StatusMapping(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/materials/99", nil)

	rec := httptest.NewRecorder()
	writeServiceError(rec, req, errors.New("material 99 not found"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("not-found error status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = httptest.NewRecorder()
	writeServiceError(rec, req, errors.New("quantity must be positive"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("validation error status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}
