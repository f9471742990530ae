package usecase

import (
	"fmt"
	"strings"

	"resume-builder/internal/model"
)

// StageValidationResult holds validation state for a stage
type StageValidationResult struct {
	Stage   string   `json:"stage"`
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

func newStage(name string) *StageValidationResult {
	return &StageValidationResult{Stage: name, Valid: true, Missing: []string{}}
}

func (r *StageValidationResult) miss(field string) {
	r.Valid = false
	r.Missing = append(r.Missing, field)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ContactStage validates the Foundation stage: name, email and phone.
func ContactStage(doc model.Document) *StageValidationResult {
	result := newStage("contact")
	if blank(doc.Contact.FullName) {
		result.miss("contact.full_name")
	}
	if blank(doc.Contact.Email) {
		result.miss("contact.email")
	}
	if blank(doc.Contact.Phone) {
		result.miss("contact.phone")
	}
	return result
}

// ExperienceStage validates Professional History: at least one entry, each
// with a title, a company and bullets.
func ExperienceStage(doc model.Document) *StageValidationResult {
	result := newStage("experience")
	if len(doc.Experience) == 0 {
		result.miss("experience")
		return result
	}
	for i, e := range doc.Experience {
		if e == nil {
			result.miss(fmt.Sprintf("experience.%d", i))
			continue
		}
		if blank(e.Title) {
			result.miss(fmt.Sprintf("experience.%d.title", i))
		}
		if blank(e.Company) {
			result.miss(fmt.Sprintf("experience.%d.company", i))
		}
		if len(e.Bullets) == 0 {
			result.miss(fmt.Sprintf("experience.%d.bullets", i))
		}
	}
	return result
}

// ShowcaseStage validates the content a reader scans first: summary and
// skills, plus something to show for them in projects or certifications.
func ShowcaseStage(doc model.Document) *StageValidationResult {
	result := newStage("showcase")
	if blank(doc.Summary) {
		result.miss("summary")
	}
	if len(doc.Skills) == 0 {
		result.miss("skills")
	}
	if len(doc.Projects) == 0 && len(doc.Certifications) == 0 {
		result.miss("projects")
	}
	return result
}

// CheckCompleteness runs every stage and flattens what is missing.
func CheckCompleteness(doc model.Document) ([]*StageValidationResult, []string) {
	stages := []*StageValidationResult{ContactStage(doc), ExperienceStage(doc), ShowcaseStage(doc)}
	missing := []string{}
	for _, s := range stages {
		missing = append(missing, s.Missing...)
	}
	return stages, missing
}
