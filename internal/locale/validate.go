package locale

import (
	"fmt"
	"strings"

	"resume-builder/internal/model"
)

// Validate returns locale advisories for doc. It never fails; an empty
// result means the document fits the preset's conventions.
func Validate(doc model.Document, p *Preset) []string {
	issues := []string{}
	if p == nil {
		return issues
	}
	c := doc.Contact

	switch p.Checks.Photo {
	case PhotoDiscouraged:
		if strings.TrimSpace(c.PhotoURL) != "" {
			issues = append(issues, fmt.Sprintf("Remove the photo: %s résumés are usually screened without one.", p.Label))
		}
	case PhotoRequired:
		if strings.TrimSpace(c.PhotoURL) == "" {
			issues = append(issues, fmt.Sprintf("Add a photo: the %s format expects one.", p.Label))
		}
	}

	if strings.TrimSpace(c.DateOfBirth) != "" && !p.OptionalFields[SectionDateOfBirth] {
		issues = append(issues, fmt.Sprintf("Remove the date of birth: it is not expected for %s.", p.Label))
	}

	if p.Checks.NationalityRequired && (doc.PersonalDetails == nil || strings.TrimSpace(doc.PersonalDetails.Nationality) == "") {
		issues = append(issues, "Add your nationality under Personal Details.")
	}

	if p.Checks.PhoneCountryCode && c.Phone != "" && !strings.HasPrefix(strings.TrimSpace(c.Phone), "+") {
		issues = append(issues, "Include the country code in your phone number.")
	}

	if !doc.PersonalDetails.Empty() && !p.OptionalFields[SectionPersonalDetails] {
		issues = append(issues, fmt.Sprintf("Personal details are not customary for %s; consider removing them.", p.Label))
	}
	return issues
}
