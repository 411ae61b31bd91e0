package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/wellnessbuddy/wellness-platform/internal/crisis"
	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

const (
	wsWriteTimeout   = 10 * time.Second
	wsMaxMessageSize = 8 << 10
	maxChatBody      = 16 << 10
)

// TranscriptArchiver exports a user's chat history.
type TranscriptArchiver interface {
	ArchiveChat(ctx context.Context, userID string, msgs []Message) (string, error)
}

// Handler exposes chat over HTTP and websocket.
type Handler struct {
	service     *Service
	archiver    TranscriptArchiver
	logger      *logging.Logger
	revealDelay time.Duration
	upgrader    websocket.Upgrader
}

// NewHandler creates a chat handler. checkOrigin may be nil to accept any origin.
func NewHandler(service *Service, revealDelay time.Duration, checkOrigin func(*http.Request) bool, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		service:     service,
		logger:      logger,
		revealDelay: revealDelay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// WithArchiver enables POST /export.
func (h *Handler) WithArchiver(a TranscriptArchiver) *Handler {
	h.archiver = a
	return h
}

// Routes mounts the chat endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Send)
	r.Get("/history", h.History)
	r.Get("/ws", h.Stream)
	r.Post("/export", h.Export)
	return r
}

type sendRequest struct {
	Message string `json:"message"`
}

// Send handles POST /chat.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		h.logger.Error("failed to decode chat request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID := tenancy.UserIDOrDemo(r.Context())
	reply, err := h.service.Send(r.Context(), userID, req.Message)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to process chat message", "error", err, "user_id", userID)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// History handles GET /chat/history?limit=50.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	userID := tenancy.UserIDOrDemo(r.Context())
	messages, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to load chat history", "error", err, "user_id", userID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// Export handles POST /chat/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		http.Error(w, "archive not configured", http.StatusServiceUnavailable)
		return
	}
	userID := tenancy.UserIDOrDemo(r.Context())
	messages, err := h.service.History(r.Context(), userID, 0)
	if err != nil {
		h.logger.Error("failed to load chat history for export", "error", err, "user_id", userID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	key, err := h.archiver.ArchiveChat(r.Context(), userID, messages)
	if err != nil {
		h.logger.Error("failed to archive chat", "error", err, "user_id", userID)
		http.Error(w, "failed to archive chat", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"key": key, "count": len(messages)})
}

type inboundFrame struct {
	Text string `json:"text"`
}

type outboundFrame struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Revealed int            `json:"revealed"`
	Done     bool           `json:"done"`
	Crisis   *crisis.Signal `json:"crisis,omitempty"`
	Notice   string         `json:"notice,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Stream handles GET /chat/ws. Each inbound {"text"} frame is answered with
// a run of reveal frames; a newer message abandons the reveal in progress.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageSize)

	userID := tenancy.UserIDOrDemo(r.Context())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	write := func(frame outboundFrame) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			h.logger.Debug("websocket write failed", "error", err, "user_id", userID)
			cancel()
		}
	}

	session := NewSession(nil, func(s RevealState) {
		write(outboundFrame{Type: "reveal", Text: s.Visible(), Revealed: s.RevealedLength, Done: s.Done})
	})
	defer session.Close()

	for {
		var in inboundFrame
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket closed unexpectedly", "error", err, "user_id", userID)
			}
			return
		}

		reply, err := h.service.Send(ctx, userID, in.Text)
		if err != nil {
			write(outboundFrame{Type: "error", Error: err.Error()})
			continue
		}
		if reply.Crisis.Triggered {
			sig := reply.Crisis
			write(outboundFrame{Type: "crisis", Crisis: &sig, Notice: reply.Notice})
		}

		now := time.Now().UTC()
		session.Add(Message{Role: RoleUser, Content: in.Text, CreatedAt: now})
		session.Deliver(ctx, Message{Role: RoleAssistant, Content: reply.Response, CreatedAt: now}, h.revealDelay)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
