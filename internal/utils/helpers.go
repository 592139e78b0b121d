package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/batiflow/tender-service/internal/models"
)

// SendErrorResponse writes an error body as JSON.
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.NewErrorResponse(statusCode, message)
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		zap.L().Error("write error response", zap.Error(err))
	}
}

// SendDomainError maps a domain error to its HTTP status and writes the body.
// Infrastructure errors are logged and hidden behind a generic 500.
func SendDomainError(w http.ResponseWriter, err error) {
	kind := models.KindOf(err)
	if kind == models.KindInternal {
		zap.L().Error("internal error", zap.Error(err))
		SendErrorResponse(w, http.StatusInternalServerError, "internal server error")
		return
	}
	SendErrorResponse(w, kind.HTTPStatus(), err.Error())
}

// SendJSON writes a payload as JSON with the given status.
func SendJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

// ParseLimitOffset parses the limit and offset query parameters.
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 5
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}
