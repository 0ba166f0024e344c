package report

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLPostsMultipart(t *testing.T) {
	var gotHTML, gotWidth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotWidth = r.FormValue("paperWidth")
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		raw, _ := io.ReadAll(file)
		gotHTML = string(raw)
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL, time.Second).RenderHTML(context.Background(), "<h1>PO-1</h1>", A4)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(pdf))
	assert.Equal(t, "<h1>PO-1</h1>", gotHTML)
	assert.Equal(t, "8.27", gotWidth)
}

func TestRenderHTMLFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).RenderHTML(context.Background(), "<p/>", Options{})
	assert.ErrorContains(t, err, "503")
}

func TestHealthRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := chi.NewRouter()
	NewHandler(NewClient(srv.URL, time.Second), slog.New(slog.NewTextHandler(io.Discard, nil))).MountRoutes(r)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())

	srv.Close()
	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}

func TestWritePDFHeaders(t *testing.T) {
	res := httptest.NewRecorder()
	WritePDF(res, "PO-7.pdf", []byte("%PDF"))
	assert.Equal(t, "application/pdf", res.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="PO-7.pdf"`, res.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", res.Header().Get("Content-Length"))
}
