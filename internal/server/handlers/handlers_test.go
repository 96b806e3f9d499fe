package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/internal/publish"
	"github.com/waajacu/minerals/internal/render"
	"github.com/waajacu/minerals/internal/report"
	"github.com/waajacu/minerals/internal/server/events"
	"github.com/waajacu/minerals/internal/server/response"
	"github.com/waajacu/minerals/internal/server/sse"
	ws "github.com/waajacu/minerals/internal/server/websocket"
	"github.com/waajacu/minerals/internal/service"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/logging"
	"github.com/waajacu/minerals/pkg/minerals"
)

// fakeService records calls and returns canned results.
type fakeService struct {
	catalog    *minerals.Catalog
	catalogErr error
	suggestErr error
	suggested  service.SuggestInput
	published  publish.Fields
	draftID    string
}

func (f *fakeService) Store() *store.Store { return nil }
func (f *fakeService) AIProvider() string { return "fake" }
func (f *fakeService) Invalidate() {}
func (f *fakeService) Stats() service.Stats { return service.Stats{} }

func (f *fakeService) Catalog(context.Context, i18n.Code) (*minerals.Catalog, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.catalog, nil
}

func (f *fakeService) Mineral(_ context.Context, _ i18n.Code, id string) (minerals.Mineral, error) {
	m, ok := f.catalog.Get(id)
	if !ok {
		return minerals.Mineral{}, errors.NewNotFoundError("mineral", id)
	}
	return m, nil
}

func (f *fakeService) Login(string) (string, error) { return "tok", nil }
func (f *fakeService) Authorized(tok string) bool { return tok == "tok" }
func (f *fakeService) SessionTTL() time.Duration { return time.Hour }
func (f *fakeService) Logout(context.Context, string) {}
func (f *fakeService) Sweep(context.Context, time.Duration, bool) (service.SweepResult, error) {
	return service.SweepResult{}, nil
}

func (f *fakeService) Suggest(_ context.Context, in service.SuggestInput) (service.SuggestResult, error) {
	f.suggested = in
	if f.suggestErr != nil {
		return service.SuggestResult{}, f.suggestErr
	}
	return service.SuggestResult{DraftID: "d1", Provider: "fake"}, nil
}

func (f *fakeService) Publish(_ context.Context, draftID string, fields publish.Fields) (publish.Result, error) {
	f.draftID = draftID
	f.published = fields
	return publish.Result{Identifier: "record.silicates.0xabc"}, nil
}

func (f *fakeService) Report(context.Context, i18n.Code, string, report.Request) (report.Report, error) {
	return report.Report{}, nil
}

func (f *fakeService) RenderReport(context.Context, i18n.Code, string, report.Request) (render.Artifacts, error) {
	return render.Artifacts{}, nil
}

func newHandlers(svc Service) *Handlers {
	logger := logging.NewNopLogger()
	return New(svc, events.NewBroker(logger), ws.NewHub(logger), sse.NewBroadcaster(logger), logger, Config{})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestResolveLanguage(t *testing.T) {
	h := newHandlers(&fakeService{})

	tests := []struct {
		name   string
		query  string
		cookie string
		accept string
		want   i18n.Code
	}{
		{name: "default", want: "en"},
		{name: "query", query: "fr", cookie: "de", accept: "ja", want: "fr"},
		{name: "cookie", cookie: "de", accept: "ja", want: "de"},
		{name: "header", accept: "ja-JP,ja;q=0.9", want: "ja"},
		{name: "unsupported query falls through", query: "xx", cookie: "pt", want: "pt"},
		{name: "unsupported everywhere", query: "xx", cookie: "yy", accept: "zz", want: "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/api/v1/minerals"
			if tt.query != "" {
				target += "?lang=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: constants.LanguageCookie, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			assert.Equal(t, tt.want, h.resolveLanguage(req))
		})
	}
}

func TestHandleReadyUnavailable(t *testing.T) {
	h := newHandlers(&fakeService{catalogErr: errors.WrapIO("read", "/data", context.DeadlineExceeded)})
	rec := httptest.NewRecorder()
	h.HandleReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleSuggest(t *testing.T) {
	multipartBody := func(t *testing.T, withImage bool) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if withImage {
			fw, err := mw.CreateFormFile("image", "sample.webp")
			require.NoError(t, err)
			_, _ = fw.Write([]byte("RIFF....WEBP"))
		}
		require.NoError(t, mw.WriteField("suggestion_context", "  banded  "))
		require.NoError(t, mw.Close())
		return &buf, mw.FormDataContentType()
	}

	t.Run("upload reaches service", func(t *testing.T) {
		svc := &fakeService{}
		h := newHandlers(svc)
		body, ct := multipartBody(t, true)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/minerals/suggest", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		h.HandleSuggest(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "sample.webp", svc.suggested.FileName)
		assert.Equal(t, "banded", svc.suggested.Context)
		assert.NotEmpty(t, svc.suggested.Image)
	})

	t.Run("not multipart", func(t *testing.T) {
		h := newHandlers(&fakeService{})
		req := httptest.NewRequest(http.MethodPost, "/api/admin/minerals/suggest", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.HandleSuggest(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "image upload is required", resp.Error.Message)
	})

	t.Run("provider failure is a bad gateway", func(t *testing.T) {
		h := newHandlers(&fakeService{suggestErr: errors.NewAPIError("gemini", 503, "overloaded")})
		body, ct := multipartBody(t, true)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/minerals/suggest", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		h.HandleSuggest(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("oversized upload", func(t *testing.T) {
		logger := logging.NewNopLogger()
		h := New(&fakeService{}, events.NewBroker(logger), ws.NewHub(logger), sse.NewBroadcaster(logger), logger,
			Config{MaxUploadBytes: 64})
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("image", "big.png")
		require.NoError(t, err)
		_, _ = fw.Write(bytes.Repeat([]byte("x"), 4096))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/admin/minerals/suggest", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()

		h.HandleSuggest(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestHandlePublishJSON(t *testing.T) {
	svc := &fakeService{}
	h := newHandlers(svc)
	body := `{"draft_id":" d1 ","common_name":"Quartz","hardness_mohs":7,"density_g_cm3":2.65,` +
		`"major_elements":{"Si":46.7,"O":53.3}}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/minerals/publish", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandlePublish(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "d1", svc.draftID)
	assert.Equal(t, "7", svc.published.HardnessMohs)
	assert.Equal(t, "2.65", svc.published.DensityGCm3)
	assert.Equal(t, "O=53.3\nSi=46.7", svc.published.MajorElements)
}

func TestHandlePublishInvalidJSON(t *testing.T) {
	h := newHandlers(&fakeService{})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/minerals/publish", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandlePublish(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServableName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"image.png", true},
		{"record.json", true},
		{"", false},
		{".hidden", false},
		{"a/b", false},
		{`a\b`, false},
		{"..", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, servableName(tt.name))
		})
	}
}

func TestLookupPage(t *testing.T) {
	assert.Equal(t, "frequently-asked-questions", lookupPage("faq").Slug)
	assert.Equal(t, "Contact Us", lookupPage("contact-us").Title)

	p := lookupPage("careers-2031")
	assert.Equal(t, "careers-2031", p.Slug)
	assert.Equal(t, "Information", p.Title)
	assert.NotEmpty(t, pages)
}

func TestHandleWebSocketRejectsPlainRequest(t *testing.T) {
	h := newHandlers(&fakeService{})
	rec := httptest.NewRecorder()
	h.HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/api/v1/updates/ws", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
