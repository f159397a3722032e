package utils

import (
	"encoding/json"
	"net/http"

	"github.com/digitalkookiehub/hireez/internal/models"
)

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Error writes a structured error body with the taxonomy code.
func Error(w http.ResponseWriter, statusCode int, code, message string) {
	JSON(w, statusCode, models.ErrorResponse{Code: code, Message: message})
}
