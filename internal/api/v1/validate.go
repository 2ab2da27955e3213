package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/centum-academy/portal-api/internal/utils"
)

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "Invalid request body", nil, err.Error())
		return false
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			utils.WriteJSONResponse(w, http.StatusBadRequest, false, "validation failed", nil, fields)
			return false
		}
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "validation failed", nil, err.Error())
		return false
	}
	return true
}
