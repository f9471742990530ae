package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/usecase"
)

type stubPDF struct {
	out []byte
	err error
}

func (s stubPDF) RenderHTMLToPDF(context.Context, string) ([]byte, error) {
	return s.out, s.err
}

type downStore struct{ *repository.MemoryRepo }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func newTestApp(t *testing.T, deps usecase.Deps) *fiber.App {
	t.Helper()
	if deps.Store == nil {
		deps.Store = repository.NewMemoryRepo()
	}
	h := NewHandler(usecase.NewService(deps), ServiceInfo{Name: "resume-builder", Version: "test", DB: "memory"}, nil)
	h.now = func() time.Time { return time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC) }
	return NewApp(h, "*")
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, b
}

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m), string(b))
	return m
}

const janeDoc = `{
	"locale": "US",
	"contact": {"full_name": "Jane Doe", "email": "jane@example.com", "phone": "+1 555 0100"},
	"summary": "Backend engineer.",
	"skills": ["Go", "PostgreSQL", "Kubernetes", "gRPC", "AWS"],
	"experience": [{"company": "Acme", "title": "Engineer", "start_date": "2021-02", "end_date": "Present",
		"bullets": ["Cut p99 latency of the ledger API by 40% by batching writes to PostgreSQL and caching reads."]}]
}`

func createResume(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, b := do(t, app, http.MethodPost, "/api/resumes", janeDoc)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
	id, _ := decode(t, b)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestRootAndHealth(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})

	resp, b := do(t, app, http.MethodGet, "/api/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "resume-builder backend up", decode(t, b)["message"])

	resp, b = do(t, app, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	m := decode(t, b)
	assert.Equal(t, true, m["ok"])
	assert.Equal(t, "resume-builder", m["service"])
	assert.Equal(t, "test", m["version"])
	assert.Equal(t, "2026-05-04T09:30:00Z", m["time"])
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestDBCheck(t *testing.T) {
	resp, b := do(t, newTestApp(t, usecase.Deps{}), http.MethodGet, "/api/dbcheck", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "memory", decode(t, b)["db"])

	app := newTestApp(t, usecase.Deps{Store: downStore{repository.NewMemoryRepo()}})
	resp, b = do(t, app, http.MethodGet, "/api/dbcheck", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	m := decode(t, b)
	assert.Equal(t, false, m["ok"])
	assert.Contains(t, m["error"], "connection refused")
}

func TestLocalesAndPresets(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})

	resp, b := do(t, app, http.MethodGet, "/api/locales", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	locales, _ := decode(t, b)["locales"].([]any)
	require.NotEmpty(t, locales)
	assert.Equal(t, "US", locales[0].(map[string]any)["code"])

	resp, b = do(t, app, http.MethodGet, "/api/presets", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	presets, _ := decode(t, b)["presets"].(map[string]any)
	assert.Contains(t, presets, "JP-R")

	resp, b = do(t, app, http.MethodGet, "/api/presets/EU/optional-fields", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EU", decode(t, b)["locale"])

	resp, _ = do(t, app, http.MethodGet, "/api/presets/XX/optional-fields", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSectionOrder(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})
	resp, b := do(t, app, http.MethodPost, "/api/sections/order",
		`{"locale": "US", "overrides": {"certifications": false}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		SectionOrder []string `json:"section_order"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, []string{"profile", "jd", "summary", "skills", "experience", "projects", "education"}, out.SectionOrder)
}

func TestResumeLifecycle(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})
	id := createResume(t, app)

	resp, b := do(t, app, http.MethodGet, "/api/resumes/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := decode(t, b)
	assert.Equal(t, id, m["id"])
	assert.Equal(t, "US", m["locale"])
	assert.NotEmpty(t, m["created_at"])
	ats, _ := m["ats"].(map[string]any)
	assert.Equal(t, float64(100), ats["score"])

	updated := strings.Replace(janeDoc, `"email": "jane@example.com"`, `"email": ""`, 1)
	resp, b = do(t, app, http.MethodPut, "/api/resumes/"+id, updated)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))

	resp, b = do(t, app, http.MethodPost, "/api/resumes/"+id+"/score", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m = decode(t, b)
	assert.Equal(t, float64(80), m["score"])
	assert.Equal(t, []any{"Add an email address."}, m["hints"])

	resp, _ = do(t, app, http.MethodDelete, "/api/resumes/"+id, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, app, http.MethodGet, "/api/resumes/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResumeNotFound(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/resumes/nope", ""},
		{http.MethodPut, "/api/resumes/nope", janeDoc},
		{http.MethodPost, "/api/resumes/nope/score", ""},
		{http.MethodGet, "/api/export/json/nope", ""},
		{http.MethodGet, "/api/privacy/info/nope", ""},
	} {
		resp, b := do(t, app, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.path)
		assert.Equal(t, "Resume not found", decode(t, b)["error"], tc.path)
	}
}

func TestCreateResume_InvalidDocument(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})

	resp, b := do(t, app, http.MethodPost, "/api/resumes", `{"skills": "go"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	m := decode(t, b)
	assert.Equal(t, "invalid resume document", m["error"])
	assert.NotEmpty(t, m["details"])

	resp, _ = do(t, app, http.MethodPost, "/api/resumes", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseJD(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})

	resp, b := do(t, app, http.MethodPost, "/api/jd/parse", `{"text": "Kubernetes, Kubernetes and Terraform on AWS"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := decode(t, b)
	assert.Contains(t, m["keywords"], "kubernetes")
	assert.NotEmpty(t, m["top_keywords"])
	assert.Equal(t, usecase.SourceHeuristic, m["source"])

	resp, _ = do(t, app, http.MethodPost, "/api/jd/parse", `{"text": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/api/jd/parse", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCoverage(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})

	resp, b := do(t, app, http.MethodPost, "/api/jd/coverage",
		`{"resume": `+janeDoc+`, "keywords": ["Go", "Terraform"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(b))
	m := decode(t, b)
	assert.Equal(t, float64(50), m["coverage_percent"])
	assert.Equal(t, []any{"Go"}, m["matched"])
	assert.Equal(t, []any{"Terraform"}, m["missing"])
	assert.Contains(t, m, "frequency")
	assert.Contains(t, m, "per_section")

	id := createResume(t, app)
	resp, b = do(t, app, http.MethodPost, "/api/jd/coverage", `{"resume_id": "`+id+`", "keywords": ["kubernetes"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(100), decode(t, b)["coverage_percent"])

	resp, _ = do(t, app, http.MethodPost, "/api/jd/coverage", `{"resume": `+janeDoc+`, "keywords": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidate(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})

	resp, b := do(t, app, http.MethodPost, "/api/validate", `{"locale": "IN", "contact": {"full_name": "Asha", "phone": "98765 43210"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := decode(t, b)
	assert.Equal(t, false, m["valid"])
	assert.Contains(t, m["missing"], "contact.email")
	assert.Contains(t, m["issues"], "Include the country code in your phone number.")
}

func TestPreview(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})

	resp, b := do(t, app, http.MethodPost, "/api/preview", `{"resume": `+janeDoc+`, "template": "classic"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := decode(t, b)
	assert.Equal(t, "classic", m["template"])
	assert.Contains(t, m["html"], "<h1>Jane Doe</h1>")

	resp, b = do(t, app, http.MethodPost, "/api/preview?format=html", `{"resume": `+janeDoc+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	assert.Contains(t, string(b), "<h1>Jane Doe</h1>")
}

func TestExportPDF(t *testing.T) {
	app := newTestApp(t, usecase.Deps{PDF: stubPDF{out: []byte("%PDF-1.7 test")}})

	resp, b := do(t, app, http.MethodPost, "/api/export/pdf", `{"resume": `+janeDoc+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
	assert.Equal(t, "%PDF-1.7 test", string(b))

	id := createResume(t, app)
	resp, _ = do(t, app, http.MethodGet, "/api/export/pdf/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "resume-"+id+".pdf")
}

func TestExportPDF_Unavailable(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})
	resp, _ := do(t, app, http.MethodPost, "/api/export/pdf", `{"resume": `+janeDoc+`}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestExportJSON(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})
	id := createResume(t, app)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		resp, b := do(t, app, method, "/api/export/json/"+id, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, method)
		m := decode(t, b)
		assert.Equal(t, id, m["id"])
		assert.Equal(t, "US", m["locale"])
		assert.Contains(t, m, "contact")
		assert.Contains(t, m, "created_at")
	}
}

func TestPrivacyInfo(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})
	id := createResume(t, app)

	resp, b := do(t, app, http.MethodGet, "/api/privacy/info/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := decode(t, b)
	info, _ := m["privacy_info"].(map[string]any)
	assert.Contains(t, info, "has_encrypted_data")
	rights, _ := m["gdpr_rights"].(map[string]any)
	for _, right := range []string{"data_export", "data_deletion", "data_portability"} {
		assert.Contains(t, rights, right)
	}
}

func TestLocalModeSettings(t *testing.T) {
	app := newTestApp(t, usecase.Deps{})

	resp, b := do(t, app, http.MethodGet, "/api/local-mode/settings", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lm, _ := decode(t, b)["local_mode"].(map[string]any)
	assert.Equal(t, float64(24), lm["auto_clear_after_hours"])

	resp, b = do(t, app, http.MethodPost, "/api/local-mode/settings",
		`{"enabled": true, "encrypt_local_data": true, "auto_clear_after_hours": 12}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lm, _ = decode(t, b)["local_mode"].(map[string]any)
	assert.Equal(t, true, lm["enabled"])
	assert.Equal(t, float64(12), lm["auto_clear_after_hours"])

	resp, _ = do(t, app, http.MethodPost, "/api/local-mode/settings", `{"auto_clear_after_hours": -5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	resp, b := do(t, newTestApp(t, usecase.Deps{}), http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, decode(t, b)["error"])
}
