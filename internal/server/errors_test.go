package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// helper to parse standardized error
type stdError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) stdError {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d; body=%s", status, rr.Code, rr.Body.String())
	}
	var e stdError
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if e.Error.Code != code {
		t.Fatalf("unexpected error code: %s", e.Error.Code)
	}
	return e
}

func TestCalculate_InvalidJSON_ErrorJSON(t *testing.T) {
	h := New(nil)
	req := httptest.NewRequest(http.MethodPost, "/rates/calculate", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	expectError(t, rr, http.StatusBadRequest, "invalid_json")
}

func TestProjectBOQ_NoStore_ErrorJSON(t *testing.T) {
	h := New(nil)
	rr := get(t, h, "/projects/p1/boq")
	expectError(t, rr, http.StatusServiceUnavailable, "store_unavailable")
}

func TestProjectBOQ_NotFound_ErrorJSON(t *testing.T) {
	h, _ := seededHandler(t, nil)
	rr := get(t, h, "/projects/does-not-exist/boq")
	expectError(t, rr, http.StatusNotFound, "resource_not_found")
}

func TestCompare_MissingParams_ErrorJSON(t *testing.T) {
	h, _ := seededHandler(t, nil)
	rr := get(t, h, "/ratebooks/compare?base=x")
	expectError(t, rr, http.StatusBadRequest, "validation_error")
}
