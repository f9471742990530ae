package locale

import "slices"

const (
	SectionProfile         = "profile"
	SectionJD              = "jd"
	SectionSummary         = "summary"
	SectionSkills          = "skills"
	SectionExperience      = "experience"
	SectionProjects        = "projects"
	SectionEducation       = "education"
	SectionCertifications  = "certifications"
	SectionReferences      = "references"
	SectionPersonalDetails = "personal_details"
	SectionPhoto           = "photo"
	SectionDateOfBirth     = "date_of_birth"
)

// DefaultSectionOrder is used whenever a preset cannot be trusted. It holds
// exactly the core sections.
var DefaultSectionOrder = []string{
	SectionProfile,
	SectionJD,
	SectionSummary,
	SectionSkills,
	SectionExperience,
	SectionProjects,
	SectionEducation,
}

// OptionalSections in canonical order.
var OptionalSections = []string{
	SectionCertifications,
	SectionReferences,
	SectionPersonalDetails,
	SectionPhoto,
	SectionDateOfBirth,
}

func IsCore(key string) bool {
	return slices.Contains(DefaultSectionOrder, key)
}

func IsOptional(key string) bool {
	return slices.Contains(OptionalSections, key)
}

func IsSection(key string) bool {
	return IsCore(key) || IsOptional(key)
}

// ComputeSectionOrder returns the sections to render for preset.
//
// Core sections are always present. An optional section is present only
// when it is allowed and visible. Allowance comes from optional (the
// optional-fields config for the locale) and falls back to the preset's
// own optional_fields; visibility comes from overrides and falls back to
// the preset's default_visibility. A nil or malformed preset yields a copy
// of DefaultSectionOrder.
func ComputeSectionOrder(preset *Preset, optional, overrides map[string]bool) []string {
	if !preset.Valid() {
		return slices.Clone(DefaultSectionOrder)
	}

	include := func(key string) bool {
		if IsCore(key) {
			return true
		}
		return allowed(preset, optional, key) && visible(preset, overrides, key)
	}

	out := make([]string, 0, len(DefaultSectionOrder)+len(OptionalSections))
	for _, key := range preset.SectionOrder {
		if include(key) {
			out = append(out, key)
		}
	}
	for _, key := range DefaultSectionOrder {
		if !slices.Contains(out, key) {
			out = append(out, key)
		}
	}
	for _, key := range OptionalSections {
		if !slices.Contains(preset.SectionOrder, key) && include(key) {
			out = append(out, key)
		}
	}
	return out
}

// Visibility reports, for every optional section, whether it would be
// shown for the given inputs.
func Visibility(preset *Preset, optional, overrides map[string]bool) map[string]bool {
	out := make(map[string]bool, len(OptionalSections))
	for _, key := range OptionalSections {
		out[key] = preset != nil && allowed(preset, optional, key) && visible(preset, overrides, key)
	}
	return out
}

func allowed(p *Preset, optional map[string]bool, key string) bool {
	if v, ok := optional[key]; ok {
		return v
	}
	return p.OptionalFields[key]
}

func visible(p *Preset, overrides map[string]bool, key string) bool {
	if v, ok := overrides[key]; ok {
		return v
	}
	return p.DefaultVisibility[key]
}
