package mutation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/model"
)

func sampleDoc() model.Document {
	doc := model.NewDocument("US")
	doc.Contact.FullName = "Jane Doe"
	doc.Skills = []string{"Go", "SQL"}
	doc.Experience = []*model.Experience{
		{ID: "e1", Company: "Acme", Title: "Engineer", Bullets: []string{"Built APIs"}},
		{ID: "e2", Company: "Globex", Title: "Intern", Bullets: []string{"Wrote tests"}},
	}
	doc.Projects = []*model.Project{{ID: "p1", Name: "atlas", Tech: []string{"Go"}}}
	return doc
}

func TestApplyPathUpdate_Leaf(t *testing.T) {
	doc := sampleDoc()

	out, err := ApplyPathUpdate(doc, "contact.email", "jane@x.com")
	require.NoError(t, err)

	assert.Equal(t, "jane@x.com", out.Contact.Email)
	assert.Empty(t, doc.Contact.Email, "previous snapshot must be untouched")
}

func TestApplyPathUpdate_Idempotent(t *testing.T) {
	tests := []struct {
		path  string
		value any
	}{
		{"contact.full_name", "John Roe"},
		{"summary", "Backend engineer"},
		{"experience.0.title", "Staff Engineer"},
		{"experience.1.bullets.0", "Wrote many tests"},
		{"skills", []any{"Go", "Rust"}},
		{"personal_details.nationality", "Canadian"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			once, err := ApplyPathUpdate(sampleDoc(), tt.path, tt.value)
			require.NoError(t, err)
			twice, err := ApplyPathUpdate(once, tt.path, tt.value)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestApplyPathUpdate_SiblingIdentity(t *testing.T) {
	doc := sampleDoc()
	before := *doc.Experience[1]

	out, err := ApplyPathUpdate(doc, "experience.0.company", "Initech")
	require.NoError(t, err)

	assert.Equal(t, "Initech", out.Experience[0].Company)
	assert.Equal(t, "e1", out.Experience[0].ID)
	assert.NotSame(t, doc.Experience[0], out.Experience[0])
	assert.Equal(t, "Acme", doc.Experience[0].Company)

	assert.Same(t, doc.Experience[1], out.Experience[1])
	assert.Equal(t, before, *out.Experience[1])

	assert.Same(t, doc.Projects[0], out.Projects[0])
}

func TestApplyPathUpdate_EndDate(t *testing.T) {
	out, err := ApplyPathUpdate(sampleDoc(), "experience.0.end_date", model.Present)
	require.NoError(t, err)
	require.NotNil(t, out.Experience[0].EndDate)
	assert.Equal(t, model.Present, *out.Experience[0].EndDate)

	cleared, err := ApplyPathUpdate(out, "experience.0.end_date", nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.Experience[0].EndDate)
	assert.NotNil(t, out.Experience[0].EndDate)
}

func TestApplyPathUpdate_MaterialisesOptionalRecord(t *testing.T) {
	doc := sampleDoc()
	require.Nil(t, doc.PersonalDetails)

	out, err := ApplyPathUpdate(doc, "personal_details.languages", []string{"English", "Hindi"})
	require.NoError(t, err)
	require.NotNil(t, out.PersonalDetails)
	assert.Equal(t, []string{"English", "Hindi"}, out.PersonalDetails.Languages)
	assert.Nil(t, doc.PersonalDetails)
}

func TestApplyPathUpdate_InvalidPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		value   any
		segment string
	}{
		{"empty", "", "x", ""},
		{"unknown field", "contact.nickname", "x", "nickname"},
		{"through scalar", "contact.full_name.first", "x", "first"},
		{"index out of range", "experience.5.title", "x", "5"},
		{"non numeric index", "experience.first.title", "x", "first"},
		{"type mismatch", "skills", 42, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDoc()
			out, err := ApplyPathUpdate(doc, tt.path, tt.value)
			require.Error(t, err)

			var perr *InvalidPathError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.path, perr.Path)
			assert.Equal(t, tt.segment, perr.Segment)
			assert.Equal(t, doc, out)
		})
	}
}

func TestAppendArrayItem(t *testing.T) {
	doc := sampleDoc()
	item := &model.Experience{Company: "Hooli"}

	out, err := AppendArrayItem(doc, "experience", item)
	require.NoError(t, err)

	require.Len(t, out.Experience, 3)
	require.Len(t, doc.Experience, 2)
	added := out.Experience[2]
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Hooli", added.Company)
	assert.NotSame(t, item, added)
	assert.Empty(t, item.ID)
	assert.Same(t, doc.Experience[0], out.Experience[0])
}

func TestAppendArrayItem_KeepsID(t *testing.T) {
	out, err := AppendArrayItem(sampleDoc(), "certifications", model.Certification{ID: "c1", Name: "CKA"})
	require.NoError(t, err)
	require.Len(t, out.Certifications, 1)
	assert.Equal(t, "c1", out.Certifications[0].ID)
}

func TestAppendArrayItem_FromMap(t *testing.T) {
	out, err := AppendArrayItem(sampleDoc(), "projects", map[string]any{"name": "ledger", "tech": []any{"Go"}})
	require.NoError(t, err)
	require.Len(t, out.Projects, 2)
	assert.Equal(t, "ledger", out.Projects[1].Name)
	assert.Equal(t, []string{"Go"}, out.Projects[1].Tech)
	assert.NotEmpty(t, out.Projects[1].ID)
}

func TestAppendArrayItem_Skills(t *testing.T) {
	out, err := AppendArrayItem(sampleDoc(), "skills", "Docker")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL", "Docker"}, out.Skills)
}

func TestAppendArrayItem_UnknownSection(t *testing.T) {
	_, err := AppendArrayItem(sampleDoc(), "contact", "x")
	var perr *InvalidPathError
	assert.True(t, errors.As(err, &perr))
}

func TestRemoveArrayItem(t *testing.T) {
	doc := sampleDoc()

	out, err := RemoveArrayItem(doc, "experience", 0)
	require.NoError(t, err)
	require.Len(t, out.Experience, 1)
	assert.Same(t, doc.Experience[1], out.Experience[0])
	assert.Len(t, doc.Experience, 2)
}

func TestRemoveArrayItem_OutOfRangeIsNoop(t *testing.T) {
	doc := sampleDoc()
	for _, idx := range []int{-1, 2, 100} {
		out, err := RemoveArrayItem(doc, "experience", idx)
		require.NoError(t, err)
		assert.Equal(t, doc, out)
	}
}

func TestRemoveArrayItem_UnknownSection(t *testing.T) {
	_, err := RemoveArrayItem(sampleDoc(), "summary", 0)
	assert.Error(t, err)
}
