// Package render turns a résumé snapshot into a self-contained HTML preview
// using one of the built-in templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"slices"
	"strings"

	"resume-builder/internal/model"
)

const (
	Modern  = "modern"
	Classic = "classic"
	Minimal = "minimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var tpl = template.Must(template.New("").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templateFS, "templates/*.html"))

// Section order per template. Only sections with content are rendered.
var templateOrders = map[string][]string{
	Modern:  {"summary", "skills", "experience", "projects", "education", "certifications", "references", "personal_details"},
	Classic: {"summary", "experience", "education", "skills", "projects", "certifications", "references", "personal_details"},
	Minimal: {"summary", "experience", "projects", "education", "skills", "certifications", "references", "personal_details"},
}

var defaultLabels = map[string]string{
	"summary":          "Professional Summary",
	"skills":           "Technical Skills",
	"experience":       "Professional Experience",
	"projects":         "Key Projects",
	"education":        "Education",
	"certifications":   "Certifications",
	"references":       "References",
	"personal_details": "Personal Details",
	"nationality":      "Nationality",
	"visa_status":      "Visa Status",
	"languages":        "Languages",
	"hobbies":          "Hobbies",
	"volunteer_work":   "Volunteer Work",
	"awards":           "Awards",
}

// Rendered is a laid out preview. Sections lists the rendered section keys
// in display order.
type Rendered struct {
	Template string   `json:"template"`
	HTML     string   `json:"html"`
	Sections []string `json:"sections"`
}

type options struct {
	labels map[string]string
}

type Option func(*options)

// WithLabels overrides section headings and personal details labels, e.g.
// with a locale's labels.
func WithLabels(labels map[string]string) Option {
	return func(o *options) {
		for k, v := range labels {
			if strings.TrimSpace(v) != "" {
				o.labels[k] = v
			}
		}
	}
}

// Templates lists the available template ids.
func Templates() []string {
	return []string{Modern, Classic, Minimal}
}

// Resolve maps unknown ids to the modern template.
func Resolve(templateID string) string {
	id := strings.ToLower(strings.TrimSpace(templateID))
	if _, ok := templateOrders[id]; ok {
		return id
	}
	return Modern
}

// Render lays out doc with the given template. It does not depend on any
// field being present.
func Render(doc model.Document, templateID string, opts ...Option) (Rendered, error) {
	o := options{labels: make(map[string]string, len(defaultLabels))}
	for k, v := range defaultLabels {
		o.labels[k] = v
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := Resolve(templateID)
	v := buildView(doc, templateOrders[id], o.labels)

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, id+".html", v); err != nil {
		return Rendered{}, fmt.Errorf("render %s: %w", id, err)
	}

	keys := make([]string, 0, len(v.Sections))
	for _, s := range v.Sections {
		keys = append(keys, s.Key)
	}
	return Rendered{Template: id, HTML: buf.String(), Sections: keys}, nil
}

// HasSection reports whether r rendered the given section.
func (r Rendered) HasSection(key string) bool {
	return slices.Contains(r.Sections, key)
}
