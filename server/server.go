package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"haml_conversation_publisher/generator"
	"haml_conversation_publisher/publisher"
	"haml_conversation_publisher/summarizer"
)

const (
	generateTimeout  = 120 * time.Second
	summarizeTimeout = 60 * time.Second
)

// addressPattern checks the shape of the externally-supplied wallet address.
// No signature verification happens server-side.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Server exposes the generation and publishing pipeline over HTTP and serves
// published pages from the public directory.
type Server struct {
	agent  *generator.Agent
	sum    *summarizer.Summarizer
	pub    *publisher.Publisher
	logger *zap.Logger
	static http.Handler
}

func New(agent *generator.Agent, sum *summarizer.Summarizer, pub *publisher.Publisher, logger *zap.Logger) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	if sum == nil {
		return nil, errors.New("summarizer required")
	}
	if pub == nil {
		return nil, errors.New("publisher required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		agent:  agent,
		sum:    sum,
		pub:    pub,
		logger: logger,
		static: http.FileServer(http.Dir(pub.Root())),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/generate-enriched", s.handleGenerateEnriched)
	mux.HandleFunc("/api/summarize", s.handleSummarize)
	mux.HandleFunc("/api/publish", s.handlePublish)
	mux.Handle("/", s.static)
	return s.logMiddleware(mux)
}

// --- Request/response shapes ---

type generateReq struct {
	Haml string `json:"haml"`
}

type generateResp struct {
	Result string `json:"result"`
}

type summarizeReq struct {
	URLs []string `json:"urls"`
}

type summarizeResp struct {
	Summary string `json:"summary"`
}

type publishReq struct {
	Address      string `json:"address"`
	Keyword      string `json:"keyword"`
	Conversation string `json:"conversation"`
}

type publishResp struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

type errorResp struct {
	Error string `json:"error"`
}

type messageResp struct {
	Message string `json:"message"`
}

// --- Handlers ---

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, s.agent.Generate)
}

func (s *Server) handleGenerateEnriched(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, s.agent.GenerateEnriched)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, run func(context.Context, string) (string, error)) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, messageResp{Message: "Method not allowed"})
		return
	}
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	result, err := run(ctx, req.Haml)
	if err != nil {
		// Internal detail stays in the log; callers get a fixed message.
		s.logger.Error("generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "Failed to generate conversation"})
		return
	}
	writeJSON(w, http.StatusOK, generateResp{Result: result})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, messageResp{Message: "Method not allowed"})
		return
	}
	var req summarizeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), summarizeTimeout)
	defer cancel()

	summary, err := s.sum.Summarize(ctx, req.URLs)
	if err != nil {
		s.logger.Error("summarization failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "Failed to fetch and summarize data"})
		return
	}
	writeJSON(w, http.StatusOK, summarizeResp{Summary: summary})
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, messageResp{Message: "Method not allowed"})
		return
	}
	var req publishReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "Invalid request body"})
		return
	}
	if !addressPattern.MatchString(req.Address) {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "Invalid wallet address"})
		return
	}

	url, err := s.pub.Publish(req.Keyword, req.Conversation)
	if err != nil {
		if errors.Is(err, publisher.ErrInvalidKeyword) {
			writeJSON(w, http.StatusBadRequest, errorResp{Error: "Keyword must contain only letters, numbers, hyphens, and underscores"})
			return
		}
		s.logger.Error("publish failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "Failed to publish conversation"})
		return
	}
	writeJSON(w, http.StatusOK, publishResp{Message: "Conversation published successfully", URL: url})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("request_id", uuid.NewString()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
