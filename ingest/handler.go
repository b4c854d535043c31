package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/triage"
	"github.com/xraph/triage/exception"
)

// Adder accepts decoded exceptions. *queue.Writer satisfies it.
type Adder interface {
	AddException(ctx context.Context, e *exception.Exception) error
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithCodec sets the payload codec. The default is JSON.
func WithCodec(c Codec) HandlerOption {
	return func(h *Handler) { h.codec = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// Handler decodes payloads and adds the resulting exceptions.
type Handler struct {
	adder  Adder
	codec  Codec
	logger *slog.Logger
}

// NewHandler creates a Handler that writes through a.
func NewHandler(a Adder, opts ...HandlerOption) *Handler {
	h := &Handler{
		adder:  a,
		codec:  &JSONCodec{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Decode turns a payload into a validated exception without writing it.
func (h *Handler) Decode(payload []byte) (*exception.Exception, error) {
	m, err := h.codec.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s payload: %w", triage.ErrInvalidArgument, h.codec.Name(), err)
	}
	return m.Exception()
}

// Handle decodes payload and adds the exception. Decode failures wrap
// triage.ErrInvalidArgument so a consumer can drop poison messages
// instead of redelivering them.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	e, err := h.Decode(payload)
	if err != nil {
		h.logger.Warn("rejected exception message",
			slog.String("codec", h.codec.Name()),
			slog.String("error", err.Error()),
		)
		return err
	}
	if err := h.adder.AddException(ctx, e); err != nil {
		return fmt.Errorf("ingest: add exception %d: %w", e.ID(), err)
	}
	return nil
}
