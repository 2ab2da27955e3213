package utils

import (
	"encoding/json"
	"net/http"

	"github.com/centum-academy/portal-api/internal/models"
)

func WriteJSONResponse(w http.ResponseWriter, status int, success bool, message string, data interface{}, err interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Success: success,
		Message: message,
		Data:    data,
		Error:   err,
	})
}
