// Package institution assembles the institution registry, ledger and
// access control behind one service and its HTTP handler.
package institution

import (
	"log/slog"

	"bursar/internal/institution/handler"
	"bursar/internal/institution/service"
	"bursar/pkg/platform/middleware/auth"
)

// Service exposes registry, ledger and item operations.
type Service = service.Service

// Handler wires HTTP endpoints to the institution service.
type Handler = handler.Handler

// NewService constructs the institution service over stores.
func NewService(stores service.Stores, opts ...service.Option) *Service {
	return service.New(stores, opts...)
}

// NewHandler constructs the HTTP handler; mutations require a bearer token
// accepted by validator.
func NewHandler(s *Service, logger *slog.Logger, validator auth.JWTValidator) *Handler {
	return handler.New(s, logger, validator)
}
