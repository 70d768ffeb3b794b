package modules

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"finitefield.org/imast-web/internal/cms"
	"finitefield.org/imast-web/internal/platform/requestctx"
)

// Reasons attached to diagnostic blocks.
const (
	ReasonMissingType    = "missing_type"
	ReasonUnknownType    = "unknown_type"
	ReasonInvalidContent = "invalid_content"
	ReasonRenderError    = "render_error"
	ReasonPanic          = "panic"
)

// Block is the rendered output of one layout entry.
type Block struct {
	Key        string
	Type       string
	HTML       template.HTML
	Diagnostic bool
	Reason     string
}

// Renderer dispatches layout entries through a Registry.
type Renderer struct {
	registry    *Registry
	logger      *zap.Logger
	diagnostics metric.Int64Counter
}

// RendererOption customises a Renderer.
type RendererOption func(*Renderer)

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger *zap.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMeter overrides the meter used for the diagnostics counter.
func WithMeter(meter metric.Meter) RendererOption {
	return func(r *Renderer) {
		if counter, err := meter.Int64Counter("modules.diagnostics",
			metric.WithDescription("Blocks replaced by a diagnostic")); err == nil {
			r.diagnostics = counter
		}
	}
}

// NewRenderer creates a Renderer over registry, which should already be frozen.
func NewRenderer(registry *Registry, opts ...RendererOption) *Renderer {
	r := &Renderer{registry: registry, logger: zap.NewNop()}
	WithMeter(otel.Meter("finitefield.org/imast-web/internal/modules"))(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders a single entry. It never fails: unknown types, component errors
// and panics all become a diagnostic block.
func (r *Renderer) Render(ctx context.Context, entry cms.LayoutEntry, index int) (block Block) {
	block = Block{
		Key:  blockKey(entry.Module.ID, index),
		Type: normalize(entry.Module.Type),
	}
	content := Content(entry.Module.Content)
	if content == nil {
		content = Content{}
	}

	if entry.Module.Invalid != "" {
		return r.diagnose(ctx, block, content, ReasonInvalidContent, errors.New(entry.Module.Invalid))
	}
	if block.Type == "" {
		return r.diagnose(ctx, block, content, ReasonMissingType, nil)
	}
	component, ok := r.registry.Lookup(block.Type)
	if !ok {
		return r.diagnose(ctx, block, content, ReasonUnknownType, nil)
	}

	defer func() {
		if rec := recover(); rec != nil {
			block = r.diagnose(ctx, block, content, ReasonPanic, fmt.Errorf("panic: %v", rec))
		}
	}()

	var buf bytes.Buffer
	if err := component(&buf, content); err != nil {
		return r.diagnose(ctx, block, content, ReasonRenderError, err)
	}
	block.HTML = template.HTML(buf.String())
	return block
}

// RenderLayout sorts entries by order and renders each one.
func (r *Renderer) RenderLayout(ctx context.Context, entries []cms.LayoutEntry) []Block {
	sorted := SortLayout(entries)
	blocks := make([]Block, 0, len(sorted))
	for i, entry := range sorted {
		blocks = append(blocks, r.Render(ctx, entry, i))
	}
	return blocks
}

// SortLayout returns a copy of entries ordered by ascending Order. Entries with equal
// order keep their original relative position.
func SortLayout(entries []cms.LayoutEntry) []cms.LayoutEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b cms.LayoutEntry) int {
		switch {
		case a.Order < b.Order:
			return -1
		case a.Order > b.Order:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

func (r *Renderer) diagnose(ctx context.Context, block Block, content Content, reason string, err error) Block {
	block.Diagnostic = true
	block.Reason = reason
	block.HTML = diagnosticHTML(block.Type, reason, content)

	logger := requestctx.Logger(ctx)
	if logger == requestctx.NoopLogger() {
		logger = r.logger
	}
	fields := []zap.Field{
		zap.String("module_type", block.Type),
		zap.String("module_key", block.Key),
		zap.String("reason", reason),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Warn("modules: rendering diagnostic block", fields...)

	if r.diagnostics != nil {
		r.diagnostics.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", reason),
			attribute.String("module_type", block.Type),
		))
	}
	return block
}

func diagnosticHTML(moduleType, reason string, content Content) template.HTML {
	label := moduleType
	if label == "" {
		label = "(none)"
	}
	var message string
	switch reason {
	case ReasonMissingType:
		message = "Module type is missing"
	case ReasonUnknownType:
		message = "Unknown module type"
	case ReasonInvalidContent:
		message = "Module payload is malformed"
	default:
		message = "Module failed to render"
	}
	var b strings.Builder
	b.WriteString(`<div class="module-diagnostic" role="alert" data-module-type="`)
	b.WriteString(template.HTMLEscapeString(moduleType))
	b.WriteString(`" data-reason="`)
	b.WriteString(reason)
	b.WriteString(`"><p>`)
	b.WriteString(message)
	b.WriteString(`: <code>`)
	b.WriteString(template.HTMLEscapeString(label))
	b.WriteString(`</code></p><pre>`)
	b.WriteString(template.HTMLEscapeString(content.JSON()))
	b.WriteString(`</pre></div>`)
	return template.HTML(b.String())
}

func blockKey(id string, index int) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return "module-" + strconv.Itoa(index)
}
