package apperrors

import (
	"encoding/json"
	"net/http"

	"researchhub/researchhub/utils/logging"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Response is the JSON body of every failed request. The web client reads
// detail.
type Response struct {
	Detail    string            `json:"detail"`
	Type      ErrorType         `json:"type"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Write renders err as a JSON error response and logs it by status class.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	appErr := From(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	reqID := middleware.GetReqID(r.Context())

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("type", string(appErr.Type)),
		zap.String("request_id", reqID),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}
	if status >= http.StatusInternalServerError {
		logging.ErrorLogger.Error(appErr.Message, fields...)
	} else {
		logging.AppLogger.Debug(appErr.Message, fields...)
	}

	for key, values := range appErr.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Detail:    appErr.Message,
		Type:      appErr.Type,
		Fields:    appErr.Fields,
		RequestID: reqID,
	})
}
