// Package locale holds per-country presets and composes the ordered list of
// résumé sections a preset asks for.
package locale

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var embeddedPresets []byte

// Photo policies understood by Checks.Photo.
const (
	PhotoRequired    = "required"
	PhotoDiscouraged = "discouraged"
)

// Checks are declarative advisories evaluated by Validate.
type Checks struct {
	Photo               string `yaml:"photo" json:"photo,omitempty"`
	NationalityRequired bool   `yaml:"nationality_required" json:"nationality_required,omitempty"`
	PhoneCountryCode    bool   `yaml:"phone_country_code" json:"phone_country_code,omitempty"`
}

type Preset struct {
	Code              string            `yaml:"code" json:"code"`
	Label             string            `yaml:"label" json:"label"`
	DateFormat        string            `yaml:"date_format" json:"date_format"`
	SectionOrder      []string          `yaml:"section_order" json:"section_order"`
	Labels            map[string]string `yaml:"labels" json:"labels"`
	OptionalFields    map[string]bool   `yaml:"optional_fields" json:"optional_fields"`
	DefaultVisibility map[string]bool   `yaml:"default_visibility" json:"default_visibility"`
	Rules             []string          `yaml:"rules" json:"rules"`
	Checks            Checks            `yaml:"checks" json:"checks"`
}

// Valid reports whether the preset can drive section composition: it needs
// a code and a section order made of known, distinct keys.
func (p *Preset) Valid() bool {
	if p == nil || strings.TrimSpace(p.Code) == "" || len(p.SectionOrder) == 0 {
		return false
	}
	seen := make(map[string]bool, len(p.SectionOrder))
	for _, key := range p.SectionOrder {
		if !IsSection(key) || seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}

// SectionLabels returns the English defaults overlaid with the preset's own
// labels.
func (p *Preset) SectionLabels() map[string]string {
	out := DefaultLabels()
	if p == nil {
		return out
	}
	for k, v := range p.Labels {
		out[k] = v
	}
	return out
}

// UnknownLocaleError is a soft error: the caller still receives the
// fallback preset and should only surface a notice.
type UnknownLocaleError struct {
	Code     string
	Fallback string
}

func (e *UnknownLocaleError) Error() string {
	return fmt.Sprintf("unknown locale %q, using %q", e.Code, e.Fallback)
}

// LocaleInfo is one entry of the locale picker.
type LocaleInfo struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// OptionalFieldsResponse is what the optional-fields endpoint returns.
type OptionalFieldsResponse struct {
	Locale         string            `json:"locale"`
	OptionalFields map[string]bool   `json:"optional_fields"`
	Labels         map[string]string `json:"labels"`
	SectionOrder   []string          `json:"section_order,omitempty"`
}

// Catalog is an immutable set of presets.
type Catalog struct {
	presets map[string]*Preset
	order   []string
	def     string
}

type catalogFile struct {
	Default string   `yaml:"default"`
	Presets []Preset `yaml:"presets"`
}

// Parse decodes a YAML catalog. Presets with a malformed section order are
// kept; composition falls back to the default order for them.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(f.Presets) == 0 {
		return nil, errors.New("parse presets: no presets defined")
	}

	c := &Catalog{presets: make(map[string]*Preset, len(f.Presets))}
	for i := range f.Presets {
		p := f.Presets[i]
		p.Code = strings.TrimSpace(p.Code)
		if p.Code == "" {
			return nil, fmt.Errorf("parse presets: preset %d has no code", i)
		}
		if _, dup := c.presets[p.Code]; dup {
			return nil, fmt.Errorf("parse presets: duplicate code %q", p.Code)
		}
		c.presets[p.Code] = &p
		c.order = append(c.order, p.Code)
	}

	c.def = f.Default
	if _, ok := c.presets[c.def]; !ok {
		c.def = c.order[0]
	}
	return c, nil
}

// Embedded returns the catalog compiled into the binary.
func Embedded() *Catalog {
	c, err := Parse(embeddedPresets)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) DefaultCode() string {
	return c.def
}

// Lookup returns the preset for code, or nil.
func (c *Catalog) Lookup(code string) *Preset {
	if c == nil {
		return nil
	}
	return c.presets[code]
}

// Resolve always returns a usable preset. For unknown codes it returns the
// default preset together with an *UnknownLocaleError.
func (c *Catalog) Resolve(code string) (*Preset, error) {
	if p := c.Lookup(code); p != nil {
		return p, nil
	}
	if c == nil {
		return nil, &UnknownLocaleError{Code: code}
	}
	return c.presets[c.def], &UnknownLocaleError{Code: code, Fallback: c.def}
}

func (c *Catalog) Locales() []LocaleInfo {
	if c == nil {
		return []LocaleInfo{}
	}
	out := make([]LocaleInfo, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, LocaleInfo{Code: code, Label: c.presets[code].Label})
	}
	return out
}

// Presets returns the catalog keyed by code.
func (c *Catalog) Presets() map[string]*Preset {
	out := make(map[string]*Preset, len(c.presets))
	for k, v := range c.presets {
		out[k] = v
	}
	return out
}

// OptionalFields reports which optional sections code allows, with its
// labels and section order.
func (c *Catalog) OptionalFields(code string) (OptionalFieldsResponse, error) {
	p := c.Lookup(code)
	if p == nil {
		return OptionalFieldsResponse{}, &UnknownLocaleError{Code: code, Fallback: c.def}
	}
	fields := make(map[string]bool, len(OptionalSections))
	for _, key := range OptionalSections {
		fields[key] = p.OptionalFields[key]
	}
	return OptionalFieldsResponse{
		Locale:         p.Code,
		OptionalFields: fields,
		Labels:         p.SectionLabels(),
		SectionOrder:   slices.Clone(p.SectionOrder),
	}, nil
}
