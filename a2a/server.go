package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/insurance-analyst/agent/contract"
	logx "github.com/tanpawarit/insurance-analyst/pkg/logger"
)

// CardPath is the discovery path peers fetch before sending messages.
const CardPath = "/.well-known/agent.json"

// Responder answers one question and returns the final text.
type Responder interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Server exposes a Responder over the agent-to-agent HTTP surface:
// card discovery, a messages endpoint, health and metrics.
type Server struct {
	card      AgentCard
	responder Responder
	log       zerolog.Logger
}

func NewServer(card AgentCard, responder Responder) (*Server, error) {
	if responder == nil {
		return nil, fmt.Errorf("%w: responder is required", contractx.ErrValidation)
	}
	return &Server{
		card:      card,
		responder: responder,
		log:       logx.Component("a2a"),
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+CardPath, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.card)
	})

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": s.card.Name})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/messages", s.handleMessage)

	return mux
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		messagesTotal.WithLabelValues(outcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, "invalid message payload")
		return
	}

	question := strings.TrimSpace(msg.Content.Text)
	if question == "" {
		messagesTotal.WithLabelValues(outcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, "message text is required")
		return
	}

	answer, err := s.responder.Ask(r.Context(), question)
	messageDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		messagesTotal.WithLabelValues(outcomeFailed).Inc()
		s.log.Error().Err(err).Str("question", question).Msg("message handling failed")
		writeError(w, http.StatusInternalServerError, "failed to answer the question")
		return
	}

	messagesTotal.WithLabelValues(outcomeOK).Inc()
	s.log.Info().Str("question", question).Dur("elapsed", time.Since(started)).Msg("message answered")
	writeJSON(w, http.StatusOK, NewTextMessage(RoleAgent, answer))
}

// Serve blocks until ctx is canceled, then drains in-flight requests.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Str("addr", addr).Msg("agent endpoint listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
