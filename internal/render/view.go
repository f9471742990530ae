package render

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"resume-builder/internal/model"
)

type view struct {
	Name        string
	Contact     []string
	PhotoURL    string
	DateOfBirth string
	Sections    []sectionView
}

// HasHeader reports whether anything belongs in the header.
func (v view) HasHeader() bool {
	return v.Name != "" || len(v.Contact) > 0 || v.PhotoURL != ""
}

type sectionView struct {
	Key            string
	Title          string
	Summary        string
	Skills         []string
	Experience     []experienceView
	Projects       []projectView
	Education      []educationView
	Certifications []certificationView
	References     []referenceView
	Details        []detailView
}

type experienceView struct {
	Title, Company, City, Dates string
	Bullets                     []string
}

type projectView struct {
	Name, Description, Tech, Link, LinkLabel string
}

type educationView struct {
	Institution, Degree, Dates, Details string
}

type certificationView struct {
	Name, Issuer, Dates, CredentialID, URL, URLLabel string
}

type referenceView struct {
	Name, Title, Company, Email, Phone, Relationship string
}

type detailView struct {
	Label, Value string
}

func buildView(doc model.Document, order []string, labels map[string]string) view {
	c := doc.Contact
	v := view{
		Name:        strings.TrimSpace(c.FullName),
		PhotoURL:    strings.TrimSpace(c.PhotoURL),
		DateOfBirth: strings.TrimSpace(c.DateOfBirth),
	}
	location := nonEmpty(c.City, c.State, c.Country)
	v.Contact = nonEmpty(c.Email, c.Phone, strings.Join(location, ", "), c.LinkedIn, c.Website)

	for _, key := range order {
		s := sectionView{Key: key, Title: labels[key]}
		switch key {
		case "summary":
			s.Summary = strings.TrimSpace(doc.Summary)
			if s.Summary == "" {
				continue
			}
		case "skills":
			s.Skills = nonEmpty(doc.Skills...)
			if len(s.Skills) == 0 {
				continue
			}
		case "experience":
			s.Experience = experienceViews(doc.Experience)
			if len(s.Experience) == 0 {
				continue
			}
		case "projects":
			s.Projects = projectViews(doc.Projects)
			if len(s.Projects) == 0 {
				continue
			}
		case "education":
			s.Education = educationViews(doc.Education)
			if len(s.Education) == 0 {
				continue
			}
		case "certifications":
			s.Certifications = certificationViews(doc.Certifications)
			if len(s.Certifications) == 0 {
				continue
			}
		case "references":
			s.References = referenceViews(doc.References)
			if len(s.References) == 0 {
				continue
			}
		case "personal_details":
			s.Details = detailViews(doc.PersonalDetails, labels)
			if len(s.Details) == 0 {
				continue
			}
		default:
			continue
		}
		v.Sections = append(v.Sections, s)
	}
	return v
}

func experienceViews(items []*model.Experience) []experienceView {
	var out []experienceView
	for _, e := range items {
		if e == nil {
			continue
		}
		ev := experienceView{
			Title:   strings.TrimSpace(e.Title),
			Company: strings.TrimSpace(e.Company),
			City:    strings.TrimSpace(e.City),
			Bullets: nonEmpty(e.Bullets...),
		}
		if ev.Title == "" && ev.Company == "" && len(ev.Bullets) == 0 {
			continue
		}
		end := model.Present
		if e.EndDate != nil && strings.TrimSpace(*e.EndDate) != "" {
			end = *e.EndDate
		}
		if strings.TrimSpace(e.StartDate) != "" {
			ev.Dates = dateRange(e.StartDate, end)
		}
		out = append(out, ev)
	}
	return out
}

func projectViews(items []*model.Project) []projectView {
	var out []projectView
	for _, p := range items {
		if p == nil {
			continue
		}
		pv := projectView{
			Name:        strings.TrimSpace(p.Name),
			Description: strings.TrimSpace(p.Description),
			Tech:        strings.Join(nonEmpty(p.Tech...), ", "),
			Link:        strings.TrimSpace(p.Link),
		}
		if pv.Name == "" && pv.Description == "" {
			continue
		}
		pv.LinkLabel = linkLabel(pv.Link)
		out = append(out, pv)
	}
	return out
}

func educationViews(items []*model.Education) []educationView {
	var out []educationView
	for _, e := range items {
		if e == nil {
			continue
		}
		ev := educationView{
			Institution: strings.TrimSpace(e.Institution),
			Degree:      strings.TrimSpace(e.Degree),
			Details:     strings.TrimSpace(e.Details),
		}
		if ev.Institution == "" && ev.Degree == "" {
			continue
		}
		end := ""
		if e.EndDate != nil {
			end = *e.EndDate
		}
		ev.Dates = dateRange(e.StartDate, end)
		out = append(out, ev)
	}
	return out
}

func certificationViews(items []*model.Certification) []certificationView {
	var out []certificationView
	for _, c := range items {
		if c == nil || strings.TrimSpace(c.Name) == "" {
			continue
		}
		out = append(out, certificationView{
			Name:         strings.TrimSpace(c.Name),
			Issuer:       strings.TrimSpace(c.Issuer),
			Dates:        dateRange(c.IssueDate, c.ExpiryDate),
			CredentialID: strings.TrimSpace(c.CredentialID),
			URL:          strings.TrimSpace(c.CredentialURL),
			URLLabel:     linkLabel(c.CredentialURL),
		})
	}
	return out
}

func referenceViews(items []*model.Reference) []referenceView {
	var out []referenceView
	for _, r := range items {
		if r == nil || strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, referenceView{
			Name:         strings.TrimSpace(r.Name),
			Title:        strings.TrimSpace(r.Title),
			Company:      strings.TrimSpace(r.Company),
			Email:        strings.TrimSpace(r.Email),
			Phone:        strings.TrimSpace(r.Phone),
			Relationship: strings.TrimSpace(r.Relationship),
		})
	}
	return out
}

func detailViews(pd *model.PersonalDetails, labels map[string]string) []detailView {
	if pd.Empty() {
		return nil
	}
	var out []detailView
	add := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, detailView{Label: labels[key], Value: value})
		}
	}
	add("nationality", pd.Nationality)
	add("visa_status", pd.VisaStatus)
	add("languages", strings.Join(nonEmpty(pd.Languages...), ", "))
	add("hobbies", strings.Join(nonEmpty(pd.Hobbies...), ", "))
	add("volunteer_work", pd.VolunteerWork)
	add("awards", strings.Join(nonEmpty(pd.Awards...), ", "))
	return out
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " – " + end
	case start != "":
		return start
	default:
		return end
	}
}

// linkLabel shortens a URL to its registrable domain, e.g.
// "https://gist.github.com/x" becomes "github.com".
func linkLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	target := raw
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld1
	}
	return host
}

func nonEmpty(values ...string) []string {
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
