// Package service implements the identity store, board registry, task
// registry and comment log on top of the SQLite store.
//
// Every operation receives the acting user explicitly and checks, in order,
// that the referenced entity exists, that the actor is permitted, and that
// the input is valid before anything is written.
package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"

	"taskboard/internal/access"
	"taskboard/internal/auth"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/telemetry"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

// Service groups the registries behind the HTTP API.
type Service struct {
	store         *sqlite.Store
	tokens        *auth.Tokens
	revoker       auth.Revoker
	commentPolicy access.CommentDeletePolicy
	logger        *slog.Logger
	tracer        trace.Tracer
	validate      *validator.Validate
}

// Options configures a Service.
type Options struct {
	Store  *sqlite.Store
	Tokens *auth.Tokens
	// Revoker defaults to the SQLite store.
	Revoker       auth.Revoker
	CommentPolicy access.CommentDeletePolicy
	Logger        *slog.Logger
}

// New builds the service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	revoker := opts.Revoker
	if revoker == nil {
		revoker = opts.Store
	}
	return &Service{
		store:         opts.Store,
		tokens:        opts.Tokens,
		revoker:       revoker,
		commentPolicy: opts.CommentPolicy,
		logger:        logger,
		tracer:        telemetry.Tracer(),
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
