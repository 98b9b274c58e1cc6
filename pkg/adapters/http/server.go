// Package http implements the debug dashboard (SPEC_FULL §3.4): a local,
// read-only view over one Host process's in-flight transactions, distinct
// from the coordinator's own dashboardUrl. Following
// pkg/adapters/http/server.go's chi + kin-openapi wiring, requests to
// /healthz and /transactions are validated against an embedded OpenAPI
// document via openapi3filter before they reach a handler; /openapi.yaml
// and /metrics are served without validation.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/actionhost/pkg/host"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Server serves the debug dashboard's HTTP routes.
type Server struct {
	controller *host.Controller
}

// NewHandler builds the dashboard's chi router. metricsHandler, if
// non-nil, is mounted at GET /metrics unvalidated (Prometheus exposition
// format, not JSON, so it sits outside the OpenAPI document).
func NewHandler(controller *host.Controller, metricsHandler http.Handler) (http.Handler, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("http: loading embedded openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("http: validating embedded openapi document: %w", err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("http: building openapi router: %w", err)
	}

	s := &Server{controller: controller}

	r := chi.NewRouter()
	r.Use(enableCORS)
	validated := validateAgainst(router)

	r.With(validated).Get("/healthz", s.getHealth)
	r.With(validated).Get("/transactions", s.listTransactions)
	r.With(validated).Get("/transactions/{id}", s.getTransaction)
	r.Get("/openapi.yaml", s.getSpec)
	if metricsHandler != nil {
		r.Get("/metrics", metricsHandler.ServeHTTP)
	}

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validateAgainst rejects any request that does not match a declared
// route/parameter shape in the embedded OpenAPI document, before it ever
// reaches a handler.
func validateAgainst(router routers.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Transactions())
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tx, ok := s.controller.Transaction(id)
	if !ok {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(openapiSpec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
