package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/property-system/tenancy-api/models"
	apierrors "github.com/property-system/tenancy-api/pkg/errors"
)

// RespondWithJSON sends a JSON response with the given status code and payload
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// RespondWithError sends a JSON error envelope
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, models.ErrorResponse{Success: false, Message: message})
}

// RespondWithServiceError maps a service error onto the HTTP surface. Typed
// API errors keep their status and code; anything else is logged server-side
// and returned as a generic internal error without leaking details.
func RespondWithServiceError(w http.ResponseWriter, err error) {
	if apiErr := apierrors.GetAPIError(err); apiErr != nil {
		if apiErr.Type == apierrors.ErrorTypeInternal || apiErr.Type == apierrors.ErrorTypeDatabase {
			slog.Error("Internal error", "error", err)
			RespondWithError(w, apiErr.HTTPStatus, "An unexpected error occurred")
			return
		}
		RespondWithJSON(w, apiErr.HTTPStatus, models.ErrorResponse{
			Success: false,
			Message: apiErr.Message,
			Code:    apiErr.Code,
		})
		return
	}

	slog.Error("Unhandled error", "error", err)
	RespondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
}
