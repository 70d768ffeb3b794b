package modules

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Deps carries shared collaborators for the built-in blocks.
type Deps struct {
	Markdown  goldmark.Markdown
	Sanitizer *bluemonday.Policy
}

func (d Deps) withDefaults() Deps {
	if d.Markdown == nil {
		d.Markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		)
	}
	if d.Sanitizer == nil {
		d.Sanitizer = NewHTMLPolicy()
	}
	return d
}

// NewHTMLPolicy returns the sanitization policy applied to rich text.
func NewHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "div")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// NewDefaultRegistry returns a frozen registry with every built-in block installed.
func NewDefaultRegistry(deps Deps) (*Registry, error) {
	reg := NewRegistry()
	if err := RegisterBuiltins(reg, deps); err != nil {
		return nil, err
	}
	if err := reg.Freeze(); err != nil {
		return nil, err
	}
	return reg, nil
}

// RegisterBuiltins installs the built-in block types into reg.
func RegisterBuiltins(reg *Registry, deps Deps) error {
	deps = deps.withDefaults()
	builtins := map[string]Factory{
		"hero":         templateFactory("hero", heroTemplate),
		"cta":          templateFactory("cta", ctaTemplate),
		"modules":      templateFactory("modules", featureGridTemplate),
		"faq":          templateFactory("faq", faqTemplate),
		"stats":        templateFactory("stats", statsTemplate),
		"testimonials": templateFactory("testimonials", testimonialsTemplate),
		"casestudies":  templateFactory("casestudies", caseStudiesTemplate),
		"logos":        templateFactory("logos", logosTemplate),
		"image":        templateFactory("image", imageTemplate),
		"richtext":     richTextFactory(deps),
	}
	for _, name := range []string{"hero", "cta", "modules", "richtext", "faq", "stats", "testimonials", "casestudies", "logos", "image"} {
		if err := reg.Register(name, builtins[name]); err != nil {
			return err
		}
	}
	return nil
}

func templateFactory(name, src string) Factory {
	return func() (Component, error) {
		tmpl, err := template.New(name).Funcs(template.FuncMap{
			"safeURL": safeURL,
		}).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		return func(w io.Writer, content Content) error {
			return tmpl.Execute(w, content)
		}, nil
	}
}

func richTextFactory(deps Deps) Factory {
	return func() (Component, error) {
		return func(w io.Writer, content Content) error {
			body, err := renderRichText(deps, content)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, `<section class="module module-richtext"><div class="content-prose">%s</div></section>`, body)
			return err
		}, nil
	}
}

// renderRichText converts markdown (default) or HTML bodies into sanitized HTML.
func renderRichText(deps Deps, content Content) (string, error) {
	body := content.String("body")
	if body == "" {
		body = content.String("html")
	}
	if body == "" {
		return "", nil
	}
	format := strings.ToLower(content.StringOr("format", "markdown"))
	if content.String("html") != "" && content.String("body") == "" {
		format = "html"
	}
	raw := body
	if format != "html" {
		var buf bytes.Buffer
		if err := deps.Markdown.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("richtext: convert markdown: %w", err)
		}
		raw = buf.String()
	}
	return deps.Sanitizer.Sanitize(raw), nil
}

func safeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "/"), strings.HasPrefix(raw, "#"),
		strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "mailto:"), strings.HasPrefix(lower, "tel:"):
		return raw
	default:
		return ""
	}
}

const heroTemplate = `<section class="module module-hero">
{{- with .String "eyebrow"}}<p class="hero-eyebrow">{{.}}</p>{{end}}
<h1 class="hero-title">{{.StringOr "title" "Untitled"}}</h1>
{{- with .String "subtitle"}}<p class="hero-subtitle">{{.}}</p>{{end}}
{{- with safeURL (.String "ctaHref")}}<a class="button button-primary" href="{{.}}">{{$.StringOr "ctaLabel" "Learn more"}}</a>{{end}}
{{- with safeURL (.String "image")}}<img class="hero-image" src="{{.}}" alt="{{$.String "imageAlt"}}">{{end}}
</section>`

const ctaTemplate = `<section class="module module-cta">
{{- with .String "title"}}<h2>{{.}}</h2>{{end}}
{{- with .String "body"}}<p>{{.}}</p>{{end}}
{{- with safeURL (.String "buttonHref")}}<a class="button" href="{{.}}">{{$.StringOr "buttonLabel" "Contact us"}}</a>{{end}}
</section>`

const featureGridTemplate = `<section class="module module-features">
{{- with .String "title"}}<h2>{{.}}</h2>{{end}}
<ul class="feature-grid">
{{- range .Items "items"}}
<li class="feature">
{{- with .String "icon"}}<span class="feature-icon" aria-hidden="true">{{.}}</span>{{end}}
<h3>{{.String "title"}}</h3>
{{- with .String "description"}}<p>{{.}}</p>{{end}}
{{- with safeURL (.String "href")}}<a href="{{.}}">Read more</a>{{end}}
</li>
{{- end}}
</ul>
</section>`

const faqTemplate = `<section class="module module-faq">
<h2>{{.StringOr "title" "Frequently asked questions"}}</h2>
{{- range .Items "items"}}
<details class="faq-item"><summary>{{.String "question"}}</summary><p>{{.String "answer"}}</p></details>
{{- end}}
</section>`

const statsTemplate = `<section class="module module-stats">
{{- with .String "title"}}<h2>{{.}}</h2>{{end}}
<dl class="stats">
{{- range .Items "items"}}
<div class="stat"><dt>{{.String "label"}}</dt><dd>{{.String "value"}}{{.String "suffix"}}</dd></div>
{{- end}}
</dl>
</section>`

const testimonialsTemplate = `<section class="module module-testimonials">
{{- with .String "title"}}<h2>{{.}}</h2>{{end}}
{{- range .Items "items"}}
<figure class="testimonial"><blockquote>{{.String "quote"}}</blockquote>
<figcaption>{{.String "author"}}{{with .String "role"}}, {{.}}{{end}}{{with .String "company"}} · {{.}}{{end}}</figcaption></figure>
{{- end}}
</section>`

const caseStudiesTemplate = `<section class="module module-casestudies">
{{- with .String "title"}}<h2>{{.}}</h2>{{end}}
<div class="case-study-grid">
{{- range $item := .Items "items"}}
<article class="case-study-card">
{{- with safeURL ($item.String "image")}}<img src="{{.}}" alt="" loading="lazy">{{end}}
{{- with $item.String "client"}}<p class="case-study-client">{{.}}</p>{{end}}
<h3>{{with safeURL ($item.String "href")}}<a href="{{.}}">{{$item.String "title"}}</a>{{else}}{{$item.String "title"}}{{end}}</h3>
{{- with $item.String "summary"}}<p>{{.}}</p>{{end}}
</article>
{{- end}}
</div>
</section>`

const logosTemplate = `<section class="module module-logos">
{{- with .String "title"}}<h2>{{.}}</h2>{{end}}
<ul class="logo-wall">
{{- range $item := .Items "items"}}
<li>{{with safeURL ($item.String "image")}}<img src="{{.}}" alt="{{$item.String "name"}}" loading="lazy">{{else}}{{$item.String "name"}}{{end}}</li>
{{- end}}
</ul>
</section>`

const imageTemplate = `<figure class="module module-image">
{{- with safeURL (.String "src")}}<img src="{{.}}" alt="{{$.String "alt"}}" loading="lazy">{{end}}
{{- with .String "caption"}}<figcaption>{{.}}</figcaption>{{end}}
</figure>`
