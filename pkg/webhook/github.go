package webhook

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"gitcord/internal"
	"gitcord/pkg/relay"

	"github.com/ThreeDotsLabs/watermill"
)

const (
	headerEvent     = "X-GitHub-Event"
	headerDelivery  = "X-GitHub-Delivery"
	headerSignature = "X-Hub-Signature-256"
	headerRequestID = "X-Request-Id"
)

// Relay is the part of relay.Relay the handler needs.
type Relay interface {
	HandleWithLogger(ctx context.Context, event internal.Event, logger *log.Logger) (relay.Outcome, error)
}

// GitHubHandler handles incoming webhooks from GitHub.
type GitHubHandler struct {
	secret      string
	relay       Relay
	logger      *log.Logger
	maxBody     int64
	debugEvents bool
}

// NewGitHubHandler creates a new GitHubHandler.
func NewGitHubHandler(secret string, r Relay, logger *log.Logger, maxBody int64, debugEvents bool) (*GitHubHandler, error) {
	if secret == "" {
		return nil, internal.ErrMissingSecret
	}
	if r == nil {
		return nil, errors.New("github handler: relay is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &GitHubHandler{
		secret:      secret,
		relay:       r,
		logger:      logger,
		maxBody:     maxBody,
		debugEvents: debugEvents,
	}, nil
}

// ServeHTTP handles an incoming HTTP request.
func (h *GitHubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	w.Header().Set(headerRequestID, reqID)
	logger := internal.WithRequestID(h.logger, reqID)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Printf("github read body failed: %v", err)
		respond(w, http.StatusBadRequest, "Bad Request")
		return
	}

	eventName := r.Header.Get(headerEvent)
	if h.debugEvents {
		logger.Printf("github event name=%s bytes=%d", eventName, len(rawBody))
	}

	if !VerifySignature(r.Header.Get(headerSignature), rawBody, h.secret) {
		internal.IncAuthFailure()
		logger.Printf("github signature rejected name=%s", eventName)
		respond(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	internal.IncRequest(eventName)

	event, err := internal.NewEvent("github", eventName, reqID, rawBody)
	if err != nil {
		// Kinds that need the payload fail later in translation.
		logger.Printf("github payload not decoded: %v", err)
	}

	outcome, err := h.relay.HandleWithLogger(r.Context(), event, logger)
	if err != nil {
		logger.Printf("github relay failed: %v", err)
		respond(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	switch outcome {
	case relay.OutcomeDelivered:
		respond(w, http.StatusOK, "OK")
	default:
		respond(w, http.StatusOK, "Ignored")
	}
}

func requestID(r *http.Request) string {
	if id := r.Header.Get(headerDelivery); id != "" {
		return id
	}
	if id := r.Header.Get(headerRequestID); id != "" {
		return id
	}
	return watermill.NewShortUUID()
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
