package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/mindforge/mindmap-api/cache"
	"github.com/mindforge/mindmap-api/config"
	"github.com/mindforge/mindmap-api/documents"
	"github.com/mindforge/mindmap-api/gemini"
	"github.com/mindforge/mindmap-api/handlers"
	"github.com/mindforge/mindmap-api/logger"
	"github.com/mindforge/mindmap-api/middleware"
	"github.com/mindforge/mindmap-api/outline"
	"github.com/mindforge/mindmap-api/pdftext"
	"github.com/rs/cors"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	cfg := config.Load()

	logg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer logg.Sync()

	if cfg.GeminiAPIKey == "" {
		logg.Warn("GEMINI_API_KEY is not set; topic generation will report a configuration error")
	}
	if cfg.JWTSecret == "" {
		logg.Fatal("JWT_SECRET_KEY must be set")
	}

	cacheDB, err := config.ConnectCacheDB(cfg)
	if err != nil {
		logg.Fatal("could not open cache database", "error", err)
	}
	appDB, err := config.ConnectAppDB(cfg)
	if err != nil {
		logg.Fatal("could not open application database", "error", err)
	}

	cacheStore := cache.NewStore(cacheDB, cfg.CacheTTL, logg)
	geminiClient := gemini.NewClient(cfg, cacheStore, logg)
	documentStore, err := documents.NewStore(appDB, cfg.UploadDir, logg)
	if err != nil {
		logg.Fatal("could not prepare upload directory", "error", err)
	}

	api := &handlers.API{
		Cfg:       cfg,
		Log:       logg,
		AppDB:     appDB,
		Gemini:    geminiClient,
		Documents: documentStore,
		Extractor: pdftext.NewExtractor(logg),
		Outliner:  outline.NewOutliner(logg),
	}

	mux := http.NewServeMux()

	// Mind map generation
	mux.HandleFunc("GET /api/mindmap", api.GenerateMindMap)

	// Documents
	mux.HandleFunc("POST /api/upload-pdf", api.UploadPDF)
	mux.HandleFunc("GET /api/user-documents", api.ListDocuments)
	mux.HandleFunc("DELETE /api/delete-document/{docID}", api.DeleteDocument)
	mux.HandleFunc("GET /api/pdf-mindmap/{docID}", api.PDFMindMap)

	// Accounts and sessions
	mux.HandleFunc("POST /api/register", api.Register)
	mux.HandleFunc("POST /api/login", api.Login)
	mux.HandleFunc("GET /api/session", api.Session)
	mux.HandleFunc("POST /api/logout", api.Logout)

	// JSON 404 for everything else under /api/
	mux.HandleFunc("/api/", api.NotFound)

	sessionMiddleware := middleware.WithSession(appDB, []byte(cfg.JWTSecret))

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(sessionMiddleware(mux))

	addr := "0.0.0.0:" + cfg.Port
	logg.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		logg.Fatal("server stopped", "error", err)
	}
}
