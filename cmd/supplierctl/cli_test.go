package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-portal/internal/admin"
	"supplier-portal/internal/common/session"
	"supplier-portal/internal/submission"
)

type fakeDirectory struct {
	mu      sync.Mutex
	patches []map[string]interface{}
	auth    []string
}

func (f *fakeDirectory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		_, _ = w.Write([]byte(`{"success":true,"token":"tok-1","token_type":"Bearer","user_type":"supplier"}`))
	case r.Method == http.MethodPatch && r.URL.Path == "/api/supplier/profile":
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.patches = append(f.patches, body)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/public/businesses":
		_, _ = w.Write([]byte(`{"data":[{"id":"7","business_name":"Acme Supplies","category":"Industrial","rating":4.5}],"meta":{"current_page":1,"last_page":1,"total":1}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
}

type harness struct {
	t      *testing.T
	config string
	redis  *miniredis.Miniredis
	dir    *fakeDirectory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := &fakeDirectory{}
	srv := httptest.NewServer(dir)
	t.Cleanup(srv.Close)
	mr := miniredis.RunT(t)

	cfg := fmt.Sprintf(`
api:
  base_url: %s
session:
  driver: redis
  key_prefix: "cli:"
database:
  redis:
    address: %s
analytics:
  enabled: false
logging:
  level: error
`, srv.URL, mr.Addr())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	return &harness{t: t, config: path, redis: mr, dir: dir}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", h.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) draft(body string) string {
	path := filepath.Join(h.t.TempDir(), "draft.json")
	require.NoError(h.t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const completeDraft = `{
  "businessName": "Acme Supplies",
  "businessType": "Manufacturer",
  "category": "Industrial",
  "categories": ["Industrial"],
  "productKeywords": ["bolts"],
  "mainPhone": "+1 555 0100",
  "address": "1 Main St",
  "services": ["Delivery"],
  "targetCustomers": ["Retail"]
}`

func TestCLI_LoginThenSubmitProfile(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("login", "--email", "owner@acme.test", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as supplier")

	out, err = h.run("profile", "submit", "--draft", h.draft(completeDraft))
	require.NoError(t, err)
	assert.Contains(t, out, "Step 6/6")
	assert.Contains(t, out, submission.MsgSubmitted)

	require.Len(t, h.dir.patches, 1)
	assert.Equal(t, "manufacturer", h.dir.patches[0]["businessType"])
	assert.Equal(t, "Bearer tok-1", h.dir.auth[len(h.dir.auth)-1])
	assert.False(t, h.redis.Exists("cli:"+session.KeyProfileDraft))
}

func TestCLI_IncompleteStepSavesDraft(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("profile", "submit", "--draft", h.draft(`{"businessName":"Acme Supplies"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")
	assert.Empty(t, h.dir.patches)
	assert.True(t, h.redis.Exists("cli:"+session.KeyProfileDraft))

	out, err := h.run("draft", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"businessName": "Acme Supplies"`)
}

func TestCLI_SubmitWithoutLoginNeverPatches(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("profile", "submit", "--draft", h.draft(completeDraft))
	require.Error(t, err)
	assert.Equal(t, "No auth token found", err.Error())
	assert.Empty(t, h.dir.patches)
}

func TestCLI_BusinessesList(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("businesses", "list", "--keyword", "bolts")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Supplies")
	assert.True(t, strings.Contains(out, "1 results"))
}

func TestCLI_InquiryValidatesBeforeSending(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("inquiry", "7", "--name", "Dana", "--email", "nope", "--subject", "Hi", "--message", "Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please enter a valid email address")
	assert.Empty(t, h.dir.auth)
}

func TestCLI_DashboardNeedsAdmin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("login", "--email", "owner@acme.test", "--password", "secret123")
	require.NoError(t, err)

	_, err = h.run("dashboard")
	assert.ErrorIs(t, err, admin.ErrNotAdmin)
}
