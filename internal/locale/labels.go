package locale

// DefaultLabels returns the English section headings and the labels of the
// personal details fields.
func DefaultLabels() map[string]string {
	return map[string]string{
		SectionProfile:         "Contact",
		SectionJD:              "Job Description Match",
		SectionSummary:         "Professional Summary",
		SectionSkills:          "Technical Skills",
		SectionExperience:      "Professional Experience",
		SectionProjects:        "Key Projects",
		SectionEducation:       "Education",
		SectionCertifications:  "Certifications",
		SectionReferences:      "References",
		SectionPersonalDetails: "Personal Details",
		SectionPhoto:           "Photo",
		SectionDateOfBirth:     "Date of Birth",

		"nationality":    "Nationality",
		"visa_status":    "Visa Status",
		"languages":      "Languages",
		"hobbies":        "Hobbies",
		"volunteer_work": "Volunteer Work",
		"awards":         "Awards",
	}
}
