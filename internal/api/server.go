package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"inddraft/internal/config"
	"inddraft/internal/llm"
	"inddraft/internal/pipeline"
	"inddraft/internal/qc"
	"inddraft/internal/store"
)

// Server is the HTTP API for the report drafting service.
type Server struct {
	router       chi.Router
	db           *store.Store
	provider     llm.Provider
	engine       *qc.Engine
	orchestrator *pipeline.Orchestrator
	llmClient    *llm.AnthropicClient
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. llmClient may be nil
// when no stats endpoint is wanted (tests inject a fake provider instead).
func NewServer(db *store.Store, provider llm.Provider, engine *qc.Engine, orch *pipeline.Orchestrator, llmClient *llm.AnthropicClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		db:           db,
		provider:     provider,
		engine:       engine,
		orchestrator: orch,
		llmClient:    llmClient,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/reports", s.handleCreateReport)
		r.Get("/api/reports/{reportID}", s.handleGetReport)
		r.Put("/api/reports/{reportID}/sections", s.handleUpdateSections)
		r.Get("/api/reports/{reportID}/memories", s.handleListMemories)
		r.Post("/api/reports/{reportID}/memories", s.handleAddMemory)
		r.Post("/api/reports/{reportID}/files", s.handleUploadFile)
		r.Get("/api/files/{jobID}/status", s.handleFileStatus)
		r.Post("/api/reports/{reportID}/chat", s.handleChat)
		r.Get("/api/reports/{reportID}/export", s.handleExport)

		r.Post("/api/qc", s.handleQC)
		r.Post("/api/generate/section", s.handleGenerateSection)
		r.Post("/api/generate/table", s.handleGenerateTable)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// writeSuccess writes a {success: true, ...} envelope.
func writeSuccess(w http.ResponseWriter, status int, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["success"] = true
	writeJSON(w, status, payload)
}

// writeFailure writes a {success: false, error: msg} envelope.
func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
