package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/centum-academy/portal-api/internal/models"
)

// Pinger is implemented by storage backends that talk to a server.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := true
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			ok = p.Ping(ctx) == nil
		}
		resp := models.APIResponse{
			Success: ok,
			Message: "ok",
			Data: map[string]interface{}{
				"storage": ok,
				"time":    time.Now(),
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			resp.Message = "storage unreachable"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
