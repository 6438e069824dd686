// Package ops implements the operations shared by the changanya CLI and MCP
// server. Each operation validates its request, runs it against the hash
// packages, and returns a result that renders as JSON, YAML, or a table.
package ops

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MaxInputBytes bounds the total size of documents or items in one request.
const MaxInputBytes = 1 << 20

// Request validation errors.
var (
	ErrNoInput       = errors.New("at least one input is required")
	ErrInputTooLarge = errors.New("input exceeds maximum size")
	ErrUnknownMode   = errors.New("unknown simhash input mode")
	ErrEmptyHash     = errors.New("hash is required")
	ErrUnknownUnit   = errors.New("unknown distance unit")
)

func checkSize(inputs ...[]string) error {
	total := 0

	for _, list := range inputs {
		for _, s := range list {
			total += len(s)
		}
	}

	if total > MaxInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, total, MaxInputBytes)
	}

	return nil
}

func annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
