package helpers

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Markup writes HTML fragments and keeps the first write error, so components can
// emit markup linearly and check once at the end.
type Markup struct {
	w   io.Writer
	err error
}

// NewMarkup wraps w.
func NewMarkup(w io.Writer) *Markup {
	return &Markup{w: w}
}

// Raw writes trusted markup verbatim.
func (m *Markup) Raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// Text writes s HTML-escaped; safe for element bodies and quoted attributes.
func (m *Markup) Text(s string) {
	m.Raw(templ.EscapeString(s))
}

// Rawf formats trusted markup. Every string argument is escaped first.
func (m *Markup) Rawf(format string, args ...any) {
	escaped := make([]any, len(args))
	for i, arg := range args {
		if s, ok := arg.(string); ok {
			escaped[i] = templ.EscapeString(s)
			continue
		}
		escaped[i] = arg
	}
	m.Raw(fmt.Sprintf(format, escaped...))
}

// Render writes a nested component.
func (m *Markup) Render(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

// Err reports the first failed write.
func (m *Markup) Err() error {
	return m.err
}

// TextComponent returns a templ component that renders escaped text.
func TextComponent(value string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(value))
		return err
	})
}
