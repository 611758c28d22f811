// Package render writes JSON bodies and the API error shape
package render

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

// JSON writes v with the given status
func JSON(w http.ResponseWriter, logger *zap.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// Bytes writes a binary body such as a PDF or PNG
func Bytes(w http.ResponseWriter, logger *zap.Logger, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Warn("Failed to write response body", zap.Error(err))
	}
}

// Error maps err onto its status code and writes the error body. Errors
// that are not AppErrors are reported as internal errors without their
// message.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Wrap(err, "")
	}
	status := appErr.StatusCode()
	requestID := chimiddleware.GetReqID(r.Context())

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("code", string(appErr.Code)),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		monitoring.RecordError(r.Context(), err)
		logger.Error("Request failed", fields...)
	} else {
		logger.Debug("Request rejected", fields...)
	}

	JSON(w, logger, status, errors.ToErrorResponse(appErr, requestID))
}
