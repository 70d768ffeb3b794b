package modules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"finitefield.org/imast-web/internal/cms"
)

func newTestRenderer(t *testing.T, extra map[string]Component) *Renderer {
	t.Helper()
	reg := NewRegistry()
	if err := RegisterBuiltins(reg, Deps{}); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}
	for name, component := range extra {
		if err := reg.RegisterComponent(name, component); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if err := reg.Freeze(); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	return NewRenderer(reg)
}

func entry(order float64, id, typ string, content map[string]any) cms.LayoutEntry {
	return cms.LayoutEntry{Order: order, Module: cms.Module{ID: id, Type: typ, Content: content}}
}

func TestSortLayoutIsStableAndAscending(t *testing.T) {
	entries := []cms.LayoutEntry{
		entry(2, "c", "cta", nil),
		entry(0, "a", "hero", nil),
		entry(1, "b1", "faq", nil),
		entry(0, "a2", "stats", nil),
		entry(1, "b2", "faq", nil),
	}
	original := append([]cms.LayoutEntry(nil), entries...)

	sorted := SortLayout(entries)
	var ids []string
	for _, e := range sorted {
		ids = append(ids, e.Module.ID)
	}
	if diff := cmp.Diff([]string{"a", "a2", "b1", "b2", "c"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(original, entries); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestSortLayoutPropertyRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		n := rng.Intn(12)
		entries := make([]cms.LayoutEntry, n)
		for i := range entries {
			entries[i] = entry(float64(rng.Intn(4)), fmt.Sprint(i), "hero", nil)
		}
		sorted := SortLayout(entries)
		if len(sorted) != n {
			t.Fatalf("run %d: length changed", run)
		}
		for i := 1; i < len(sorted); i++ {
			prev, cur := sorted[i-1], sorted[i]
			if prev.Order > cur.Order {
				t.Fatalf("run %d: not ascending at %d", run, i)
			}
			if prev.Order == cur.Order && atoi(prev.Module.ID) > atoi(cur.Module.ID) {
				t.Fatalf("run %d: unstable at %d", run, i)
			}
		}
	}
}

func atoi(s string) int {
	var n int
	fmt.Sscan(s, &n)
	return n
}

func TestRenderUnknownTypeProducesDiagnostic(t *testing.T) {
	r := newTestRenderer(t, nil)
	block := r.Render(context.Background(), entry(0, "", "Carousel", map[string]any{"slides": 3.0}), 4)

	if !block.Diagnostic || block.Reason != ReasonUnknownType {
		t.Fatalf("expected unknown-type diagnostic, got %+v", block)
	}
	if block.Key != "module-4" {
		t.Errorf("expected index key, got %s", block.Key)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(block.HTML)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Find(".module-diagnostic code").Text(); got != "carousel" {
		t.Errorf("expected type name in diagnostic, got %q", got)
	}
	if got := doc.Find(".module-diagnostic pre").Text(); got != `{"slides":3}` {
		t.Errorf("expected raw content JSON, got %q", got)
	}
}

func TestRenderMissingTypeProducesDiagnostic(t *testing.T) {
	r := newTestRenderer(t, nil)
	block := r.Render(context.Background(), entry(0, "m1", "  ", nil), 0)
	if !block.Diagnostic || block.Reason != ReasonMissingType {
		t.Fatalf("expected missing-type diagnostic, got %+v", block)
	}
	if block.Key != "m1" {
		t.Errorf("expected module id key, got %s", block.Key)
	}
	if !strings.Contains(string(block.HTML), "<pre>{}</pre>") {
		t.Errorf("expected empty content JSON, got %s", block.HTML)
	}
}

func TestRenderMalformedPayloadProducesDiagnostic(t *testing.T) {
	r := newTestRenderer(t, nil)
	blocks := r.RenderLayout(context.Background(), []cms.LayoutEntry{
		entry(0, "a", "hero", map[string]any{"title": "Hi"}),
		{Order: 1, Module: cms.Module{ID: "b", Type: "cta", Invalid: "module content is not an object"}},
	})
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Diagnostic {
		t.Fatalf("well-formed block degraded: %+v", blocks[0])
	}
	bad := blocks[1]
	if !bad.Diagnostic || bad.Reason != ReasonInvalidContent {
		t.Fatalf("expected invalid-content diagnostic, got %+v", bad)
	}
	if bad.Key != "b" || bad.Type != "cta" {
		t.Errorf("unexpected key/type %s/%s", bad.Key, bad.Type)
	}
	if !strings.Contains(string(bad.HTML), "Module payload is malformed") {
		t.Errorf("expected malformed message, got %s", bad.HTML)
	}
}

func TestRenderDegradesOnErrorAndPanic(t *testing.T) {
	r := newTestRenderer(t, map[string]Component{
		"broken": func(io.Writer, Content) error { return errors.New("bad content") },
		"panicky": func(w io.Writer, c Content) error {
			_, _ = io.WriteString(w, "<div>partial")
			var m map[string]int
			m["x"] = 1
			return nil
		},
	})
	ctx := context.Background()

	block := r.Render(ctx, entry(0, "", "broken", nil), 0)
	if !block.Diagnostic || block.Reason != ReasonRenderError {
		t.Fatalf("expected render-error diagnostic, got %+v", block)
	}
	block = r.Render(ctx, entry(0, "", "PANICKY", nil), 1)
	if !block.Diagnostic || block.Reason != ReasonPanic {
		t.Fatalf("expected panic diagnostic, got %+v", block)
	}
	if strings.Contains(string(block.HTML), "partial") {
		t.Fatalf("partial output leaked: %s", block.HTML)
	}
}

func TestRenderPassesContentAsSoleData(t *testing.T) {
	var seen Content
	r := newTestRenderer(t, map[string]Component{
		"probe": func(w io.Writer, c Content) error {
			seen = c
			return nil
		},
	})
	r.Render(context.Background(), entry(0, "", "probe", nil), 0)
	if seen == nil || len(seen) != 0 {
		t.Fatalf("expected empty non-nil content, got %#v", seen)
	}
	r.Render(context.Background(), entry(0, "", "probe", map[string]any{"title": "Hi"}), 0)
	if seen.String("title") != "Hi" {
		t.Fatalf("expected content to pass through, got %#v", seen)
	}
}

func TestRenderLayoutSortsAndRenders(t *testing.T) {
	r := newTestRenderer(t, nil)
	blocks := r.RenderLayout(context.Background(), []cms.LayoutEntry{
		entry(3, "cta-1", "cta", map[string]any{"title": "Ready?", "buttonHref": "/contact"}),
		entry(1, "hero-1", "HERO", map[string]any{"title": "Grow faster"}),
		entry(2, "", "mystery", nil),
	})
	var keys []string
	for _, b := range blocks {
		keys = append(keys, b.Key)
	}
	if diff := cmp.Diff([]string{"hero-1", "module-1", "cta-1"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(blocks[0].HTML), "Grow faster") {
		t.Errorf("expected hero output, got %s", blocks[0].HTML)
	}
	if !blocks[1].Diagnostic {
		t.Error("expected unknown block to be diagnostic")
	}
	if !strings.Contains(string(blocks[2].HTML), `href="/contact"`) {
		t.Errorf("expected cta link, got %s", blocks[2].HTML)
	}
}
