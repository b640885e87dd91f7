// Package xlinvoice renders order line items into invoice and packing-list
// xlsx templates and repairs the resulting package.
package xlinvoice

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithValidator replaces the request validator.
func WithValidator(v *validator.Validate) Option {
	return func(r *Renderer) {
		if v != nil {
			r.validate = v
		}
	}
}

// WithoutRepair skips the shared-string repair. Intended for diagnosing
// templates only; the output counters may be stale.
func WithoutRepair() Option {
	return func(r *Renderer) {
		r.skipRepair = true
	}
}
