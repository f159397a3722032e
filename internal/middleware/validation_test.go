package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/digitalkookiehub/hireez/internal/models"
)

type echoRequest struct {
	Name string `json:"name"`
}

func (r *echoRequest) Validate() error {
	if r.Name == "" {
		return &models.ErrorResponse{Code: "validation_error", Message: "name is required"}
	}
	return nil
}

func wrap(t *testing.T) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := GetValidatedRequest[*echoRequest](r)
		w.Write([]byte(req.Name))
	})
	return ValidateRequest[*echoRequest]()(next)
}

func TestValidateRequestPassesValidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice"}`))
	rec := httptest.NewRecorder()

	wrap(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestValidateRequestRejectsInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	wrap(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

func TestValidateRequestRejectsFailedValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	wrap(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")
}
