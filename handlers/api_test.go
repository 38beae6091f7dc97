package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mindforge/mindmap-api/cache"
	"github.com/mindforge/mindmap-api/config"
	"github.com/mindforge/mindmap-api/documents"
	"github.com/mindforge/mindmap-api/gemini"
	"github.com/mindforge/mindmap-api/logger"
	"github.com/mindforge/mindmap-api/middleware"
	"github.com/mindforge/mindmap-api/models"
	"github.com/mindforge/mindmap-api/outline"
	"github.com/mindforge/mindmap-api/pdftext"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	api     *API
	handler http.Handler
	appDB   *gorm.DB
}

func newTestEnv(t *testing.T, geminiBaseURL string) *testEnv {
	t.Helper()
	dir := t.TempDir()

	appDB, err := gorm.Open(sqlite.Open(filepath.Join(dir, "app.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, appDB.AutoMigrate(&models.User{}, &models.Document{}))

	cacheDB, err := gorm.Open(sqlite.Open(filepath.Join(dir, "cache.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, cacheDB.AutoMigrate(&models.CacheEntry{}))

	cfg := &config.Config{
		GeminiAPIKey:   "test-key",
		GeminiBaseURL:  geminiBaseURL,
		UploadDir:      filepath.Join(dir, "uploads"),
		MaxUploadBytes: 1024,
		JWTSecret:      "test-secret",
		CookieDomain:   "localhost",
		RequestTimeout: 5 * time.Second,
		CacheTTL:       3600 * time.Second,
	}

	log := logger.NewNop()
	cacheStore := cache.NewStore(cacheDB, cfg.CacheTTL, log)
	documentStore, err := documents.NewStore(appDB, cfg.UploadDir, log)
	require.NoError(t, err)

	api := &API{
		Cfg:       cfg,
		Log:       log,
		AppDB:     appDB,
		Gemini:    gemini.NewClient(cfg, cacheStore, log),
		Documents: documentStore,
		Extractor: pdftext.NewExtractor(log),
		Outliner:  outline.NewOutliner(log),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/mindmap", api.GenerateMindMap)
	mux.HandleFunc("POST /api/upload-pdf", api.UploadPDF)
	mux.HandleFunc("GET /api/user-documents", api.ListDocuments)
	mux.HandleFunc("DELETE /api/delete-document/{docID}", api.DeleteDocument)
	mux.HandleFunc("GET /api/pdf-mindmap/{docID}", api.PDFMindMap)
	mux.HandleFunc("POST /api/register", api.Register)
	mux.HandleFunc("POST /api/login", api.Login)
	mux.HandleFunc("GET /api/session", api.Session)
	mux.HandleFunc("POST /api/logout", api.Logout)
	mux.HandleFunc("/api/", api.NotFound)

	return &testEnv{
		api:     api,
		handler: middleware.WithSession(appDB, []byte(cfg.JWTSecret))(mux),
		appDB:   appDB,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartUpload(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := writer.CreateFormFile("pdf", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
