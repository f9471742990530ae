package model

import "github.com/google/uuid"

// Go models that match resume.schema.json. Array sections hold pointers so
// snapshots produced by the mutation engine can share untouched entries.

// Present marks an entry that is still ongoing.
const Present = "Present"

type Contact struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	LinkedIn    string `json:"linkedin"`
	Website     string `json:"website"`
	PhotoURL    string `json:"photo_url,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

type Experience struct {
	ID        string   `json:"id"`
	Company   string   `json:"company"`
	Title     string   `json:"title"`
	City      string   `json:"city"`
	StartDate string   `json:"start_date"`
	EndDate   *string  `json:"end_date"`
	Bullets   []string `json:"bullets"`
}

// Current reports whether the role has no end date or ends "Present".
func (e *Experience) Current() bool {
	return e.EndDate == nil || *e.EndDate == Present
}

type Education struct {
	ID          string  `json:"id"`
	Institution string  `json:"institution"`
	Degree      string  `json:"degree"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Details     string  `json:"details"`
}

type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
	Link        string   `json:"link"`
}

type Certification struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Issuer        string `json:"issuer"`
	IssueDate     string `json:"issue_date"`
	ExpiryDate    string `json:"expiry_date"`
	CredentialID  string `json:"credential_id"`
	CredentialURL string `json:"credential_url"`
}

type Reference struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type PersonalDetails struct {
	Nationality   string   `json:"nationality"`
	VisaStatus    string   `json:"visa_status"`
	Languages     []string `json:"languages"`
	Hobbies       []string `json:"hobbies"`
	VolunteerWork string   `json:"volunteer_work"`
	Awards        []string `json:"awards"`
}

// Empty reports whether no personal detail carries a value.
func (p *PersonalDetails) Empty() bool {
	if p == nil {
		return true
	}
	return p.Nationality == "" && p.VisaStatus == "" && p.VolunteerWork == "" &&
		len(p.Languages) == 0 && len(p.Hobbies) == 0 && len(p.Awards) == 0
}

// Document is one immutable résumé snapshot.
type Document struct {
	ID              string           `json:"id,omitempty"`
	Locale          string           `json:"locale"`
	Contact         Contact          `json:"contact"`
	Summary         string           `json:"summary"`
	Skills          []string         `json:"skills"`
	Experience      []*Experience    `json:"experience"`
	Education       []*Education     `json:"education"`
	Projects        []*Project       `json:"projects"`
	Certifications  []*Certification `json:"certifications"`
	References      []*Reference     `json:"references"`
	PersonalDetails *PersonalDetails `json:"personal_details,omitempty"`
}

// NewDocument returns the empty draft used when no prior snapshot exists.
func NewDocument(locale string) Document {
	return Document{
		Locale:         locale,
		Skills:         []string{},
		Experience:     []*Experience{},
		Education:      []*Education{},
		Projects:       []*Project{},
		Certifications: []*Certification{},
		References:     []*Reference{},
	}
}

func NewID() string {
	return uuid.NewString()
}

// EnsureIDs returns a snapshot in which every array entry has an id.
// Entries that already carry one are shared with doc unchanged.
func EnsureIDs(doc Document) Document {
	out := doc
	out.Experience = ensure(doc.Experience, func(e *Experience) *string { return &e.ID })
	out.Education = ensure(doc.Education, func(e *Education) *string { return &e.ID })
	out.Projects = ensure(doc.Projects, func(p *Project) *string { return &p.ID })
	out.Certifications = ensure(doc.Certifications, func(c *Certification) *string { return &c.ID })
	out.References = ensure(doc.References, func(r *Reference) *string { return &r.ID })
	return out
}

func ensure[T any](items []*T, id func(*T) *string) []*T {
	var out []*T
	for i, it := range items {
		if it == nil || *id(it) != "" {
			continue
		}
		if out == nil {
			out = make([]*T, len(items))
			copy(out, items)
		}
		cp := *it
		*id(&cp) = NewID()
		out[i] = &cp
	}
	if out == nil {
		return items
	}
	return out
}
