package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "resume-builder/internal/adapter/http"
	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/editor"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
)

func noWait(int) time.Duration { return 0 }

func newBackend(t *testing.T) (*Client, *repository.MemoryRepo) {
	t.Helper()
	mem := repository.NewMemoryRepo()
	svc := usecase.NewService(usecase.Deps{Store: mem})
	app := httpadapter.NewApp(httpadapter.NewHandler(svc, httpadapter.ServiceInfo{Name: "resume-builder"}, nil), "*")
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithRetry(3, noWait)), mem
}

func draft() model.Document {
	doc := model.NewDocument("US")
	doc.Contact = model.Contact{FullName: "Jane Doe", Email: "jane@example.com"}
	doc.Summary = "Platform engineer running Kubernetes."
	doc.Skills = []string{"Go", "Kubernetes", "Terraform"}
	return doc
}

func TestClient_SaveAndOverwrite(t *testing.T) {
	c, mem := newBackend(t)
	ctx := context.Background()

	id, err := c.Save(ctx, draft(), "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc := draft()
	doc.Summary = "changed"
	again, err := c.Save(ctx, doc, id)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, mem.Len())

	rec, err := mem.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "changed", rec.Document.Summary)
}

func TestClient_SaveRecreatesMissingRecord(t *testing.T) {
	c, mem := newBackend(t)

	id, err := c.Save(context.Background(), draft(), "gone")
	require.NoError(t, err)
	assert.Equal(t, "gone", id)
	assert.Equal(t, 1, mem.Len())
}

func TestClient_ScoreParseCoverage(t *testing.T) {
	c, _ := newBackend(t)
	ctx := context.Background()

	id, err := c.Save(ctx, draft(), "")
	require.NoError(t, err)

	res, err := c.Score(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 65, res.Score)
	assert.Equal(t, []string{"Add at least one experience entry.", "Add more relevant skills (aim for 8–12)."}, res.Hints)

	kws, err := c.ParseJobDescription(ctx, "Terraform and Kubernetes experience")
	require.NoError(t, err)
	assert.Contains(t, kws, "terraform")

	cov, err := c.Coverage(ctx, draft(), []string{"Kubernetes", "Rust"})
	require.NoError(t, err)
	assert.Equal(t, 50, cov.CoveragePercent)
	assert.Equal(t, []string{"Rust"}, cov.Missing)

	_, err = c.Score(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestClient_SessionRemoteSave(t *testing.T) {
	c, mem := newBackend(t)
	ctx := context.Background()

	s := editor.NewSession(draft(), editor.Config{Mode: editor.ModeRemote, Remote: c})
	defer s.Close()

	res, err := s.Save(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "remote", res.Mode)
	assert.Equal(t, res.ID, s.ID())

	_, err = s.Apply(ctx, "summary", "Second draft")
	require.NoError(t, err)
	again, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.ID, again.ID)
	assert.Equal(t, 1, mem.Len())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"score": 90, "hints": []string{}})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, WithRetry(3, noWait)).Score(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 90, res.Score)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid payload"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithRetry(3, noWait)).ParseJobDescription(context.Background(), "jd")
	require.Error(t, err)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
	assert.Equal(t, "invalid payload", serr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, WithRetry(2, noWait)).Save(context.Background(), draft(), "")
	assert.Error(t, err)
}
