package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

func newTestHandler(llm LLMClient) *Handler {
	svc, _ := newTestService(llm, nil, nil)
	return NewHandler(svc, 0, nil, logging.Discard())
}

func TestHandler_Send(t *testing.T) {
	h := newTestHandler(&stubLLM{text: "Nice!"})
	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"I aced my test"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Nice! Keep up the positivity!", body["response"])
	crisisBody, ok := body["crisis"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, crisisBody["triggered"])
}

func TestHandler_SendBadRequests(t *testing.T) {
	h := newTestHandler(&stubLLM{text: "x"})
	for _, payload := range []string{`nope`, `{"message":"  "}`} {
		rec := httptest.NewRecorder()
		h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
}

func TestHandler_History(t *testing.T) {
	h := newTestHandler(&stubLLM{text: "hey"})
	rec := httptest.NewRecorder()
	h.Send(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/api/chat/history?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var msgs []Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)

	rec = httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/api/chat/history?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_StreamReveal(t *testing.T) {
	h := newTestHandler(&stubLLM{text: "Hi"})
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"text": "hello"}))

	want := "Hi Keep up the positivity!"
	var frames []outboundFrame
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var f outboundFrame
		require.NoError(t, conn.ReadJSON(&f))
		frames = append(frames, f)
		if f.Done {
			break
		}
	}

	require.Len(t, frames, len([]rune(want)))
	assert.Equal(t, "reveal", frames[0].Type)
	assert.Equal(t, "H", frames[0].Text)
	assert.Equal(t, want, frames[len(frames)-1].Text)
	for i := 1; i < len(frames); i++ {
		assert.Equal(t, frames[i-1].Revealed+1, frames[i].Revealed)
	}
}

func TestHandler_StreamCrisisFrame(t *testing.T) {
	h := newTestHandler(&stubLLM{text: "I'm here."})
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"text": "I feel hopeless"}))
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first outboundFrame
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "crisis", first.Type)
	require.NotNil(t, first.Crisis)
	assert.Equal(t, "hopeless", first.Crisis.MatchedKeyword)
}

// scriptedLLM answers each call with the next reply in order.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
}

func (s *scriptedLLM) Complete(context.Context, LLMRequest) (LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return LLMResponse{Text: text}, nil
}

func TestHandler_StreamNewMessageCancelsReveal(t *testing.T) {
	slow := "This first answer is deliberately long so its reveal is still running later"
	llm := &scriptedLLM{replies: []string{slow, "Second"}}
	svc, _ := newTestService(llm, nil, nil)
	h := NewHandler(svc, 20*time.Millisecond, nil, logging.Discard())
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	require.NoError(t, conn.WriteJSON(map[string]string{"text": "hello"}))
	var first outboundFrame
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, "reveal", first.Type)
	require.False(t, first.Done)

	require.NoError(t, conn.WriteJSON(map[string]string{"text": "ok"}))

	firstWant := slow + " " + positiveSuggestion
	secondWant := "Second " + positiveSuggestion
	var done []outboundFrame
	for {
		var f outboundFrame
		require.NoError(t, conn.ReadJSON(&f))
		assert.NotEqual(t, firstWant, f.Text, "the abandoned reply must never finish")
		if f.Done {
			done = append(done, f)
			break
		}
	}
	require.Len(t, done, 1)
	assert.Equal(t, secondWant, done[0].Text)
	assert.Equal(t, len([]rune(secondWant)), done[0].Revealed)
}

type stubArchiver struct {
	msgs []Message
}

func (a *stubArchiver) ArchiveChat(_ context.Context, _ string, msgs []Message) (string, error) {
	a.msgs = msgs
	return "chat/v1/key.json", nil
}

func TestHandler_Export(t *testing.T) {
	h := newTestHandler(&stubLLM{text: "hey"})
	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodPost, "/api/chat/export", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	arch := &stubArchiver{}
	h.WithArchiver(arch)
	h.Send(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))

	rec = httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodPost, "/api/chat/export", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, arch.msgs, 2)
}
