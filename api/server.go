// Package api is the thin HTTP surface over the render engine: a single
// render endpoint behind chi, httprate, and request-id middleware.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"docweave/common"
	"docweave/engine"
)

// RenderRequest is the JSON body accepted by POST /render.
type RenderRequest struct {
	Template   string         `json:"template" validate:"required"`
	Data       map[string]any `json:"data"`
	Complement map[string]any `json:"complement"`
	Option     map[string]any `json:"option"`
	Locale     string         `json:"locale"`
	Strict     bool           `json:"strict"`
}

// RenderResponse is the JSON body returned by POST /render.
type RenderResponse struct {
	Output   string   `json:"output"`
	Bytes    int      `json:"bytes"`
	Lines    int      `json:"lines"`
	Warnings []string `json:"warnings,omitempty"`
}

var validate = validator.New()

// NewRouter builds the chi router for the render API: request id and
// rate-limiting middleware wrap a single POST /render handler.
func NewRouter(requestsPerMinute int) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestIDLogger)
	r.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))
	r.Post("/render", handleRender)
	return r
}

// requestIDLogger logs each request's chi request id and a uuid trace id.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.New().String()
		common.Debug("render request received", "request_id", middleware.GetReqID(r.Context()), "trace_id", traceID)
		next.ServeHTTP(w, r)
	})
}

func handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	out, report, err := engine.RenderString(req.Template, engine.Options{
		Data:       req.Data,
		Complement: req.Complement,
		Option:     req.Option,
		Locale:     req.Locale,
		Strict:     req.Strict,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := RenderResponse{Output: out, Bytes: report.Bytes, Lines: report.Lines, Warnings: report.Warnings}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func formatValidationError(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		e := verrs[0]
		switch e.Tag() {
		case "required":
			return e.Field() + " is required"
		default:
			return "invalid value for " + e.Field()
		}
	}
	return "invalid request"
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
