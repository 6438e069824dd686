package observability

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanAttributePolicy decides which span attributes reach the exporter.
// Denials win over allowances; keys matching neither list are dropped.
type spanAttributePolicy struct {
	allowPrefixes []string
	allowKeys     []string
	denyPrefixes  []string
	denyKeys      []string
}

// exportPolicy keeps operation metadata and drops anything that can carry a
// filter member, a document body, or a user identity.
var exportPolicy = spanAttributePolicy{
	allowPrefixes: []string{"changanya.", "bloom.", "simhash.", "geohash.", "mcp.", "error.", "exception."},
	allowKeys:     []string{"error"},
	denyPrefixes:  []string{"user."},
	denyKeys:      []string{"email", "bloom.item", "simhash.text"},
}

func (p spanAttributePolicy) allows(key string) bool {
	hasPrefix := func(prefix string) bool { return strings.HasPrefix(key, prefix) }

	if slices.Contains(p.denyKeys, key) || slices.ContainsFunc(p.denyPrefixes, hasPrefix) {
		return false
	}

	return slices.Contains(p.allowKeys, key) || slices.ContainsFunc(p.allowPrefixes, hasPrefix)
}

// attributeFilter wraps a SpanProcessor and hands it spans whose attributes
// passed exportPolicy.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	policy   spanAttributePolicy
	logger   *slog.Logger
}

// NewAttributeFilter returns a SpanProcessor that strips span attributes
// outside the export allow-list before delegate sees them. A non-nil logger
// gets a warning per dropped key.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, policy: exportPolicy, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

// OnEnd forwards a view of s; ended spans are read-only.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) keep(span string, attrs []attribute.KeyValue) []attribute.KeyValue {
	kept := make([]attribute.KeyValue, 0, len(attrs))

	for _, kv := range attrs {
		key := string(kv.Key)
		if f.policy.allows(key) {
			kept = append(kept, kv)

			continue
		}

		if f.logger != nil {
			f.logger.Warn("span attribute blocked", slog.String("key", key), slog.String("span", span))
		}
	}

	return kept
}

// filteredSpan computes the allowed attributes once, however often the
// exporter asks.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
	once   sync.Once
	attrs  []attribute.KeyValue
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	s.once.Do(func() { s.attrs = s.filter.keep(s.Name(), s.ReadOnlySpan.Attributes()) })

	return s.attrs
}
