package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/speak-coach/backend/internal/logging"
	speechmodel "github.com/zhouzirui/speak-coach/backend/internal/model/speech"
	"github.com/zhouzirui/speak-coach/backend/internal/model/tutor"
	chatservice "github.com/zhouzirui/speak-coach/backend/internal/service/chat"
	"github.com/zhouzirui/speak-coach/backend/internal/service/coach"
	"github.com/zhouzirui/speak-coach/backend/internal/service/llm"
	"github.com/zhouzirui/speak-coach/backend/internal/service/speech"
)

type stubCompleter struct {
	answer string
	err    error
	calls  int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.answer, s.err
}

type noSpeech struct{}

func (noSpeech) Transcribe(context.Context, string, []byte) speechmodel.TranscriptResult {
	return speechmodel.Failed(speechmodel.NewCaptureError(speechmodel.ReasonNotConfigured, nil))
}

var _ speech.Transcriber = noSpeech{}

func setupRouter(completer *stubCompleter) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService(0)
	store := tutor.NewMemoryStore(tutor.Seed())
	coachSvc := coach.NewService(noSpeech{}, completer, chatSvc, store, logging.Discard())
	handler := New(chatSvc, coachSvc, store, "", logging.Discard())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) string {
	t.Helper()
	resp := doJSON(r, http.MethodPost, "/session", map[string]string{})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var session struct {
		ID      string `json:"id"`
		TutorID string `json:"tutorId"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.TutorID != tutor.DefaultID {
		t.Fatalf("expected default tutor, got %q", session.TutorID)
	}
	return session.ID
}

func decodeHistory(t *testing.T, resp *httptest.ResponseRecorder) historyResponse {
	t.Helper()
	var got historyResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	return got
}

func TestCreateSessionInvalidTutor(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{})
	resp := doJSON(r, http.MethodPost, "/session", map[string]string{"tutorId": "non-existent"})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateSessionEmptyBody(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{})
	createSession(t, r)
}

func TestAskReturnsHistory(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{answer: "A **gerund** is..."})
	sessionID := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/chat/"+sessionID, map[string]string{"question": "What is a gerund?"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	got := decodeHistory(t, resp)
	if len(got.History) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got.History))
	}
	if got.History[0].Speaker != "You" || got.History[0].Message != "What is a gerund?" {
		t.Fatalf("unexpected first turn: %+v", got.History[0])
	}
	if got.History[1].Speaker != "Assistant" || !bytes.Contains([]byte(got.History[1].HTML), []byte("<strong>gerund</strong>")) {
		t.Fatalf("unexpected second turn: %+v", got.History[1])
	}

	resp = doJSON(r, http.MethodGet, "/chat/"+sessionID, nil)
	if resp.Code != http.StatusOK || len(decodeHistory(t, resp).History) != 2 {
		t.Fatalf("history endpoint mismatch: %d %s", resp.Code, resp.Body.String())
	}
}

func TestAskEmptyQuestionIsNoop(t *testing.T) {
	completer := &stubCompleter{answer: "unused"}
	r, _ := setupRouter(completer)
	sessionID := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/chat/"+sessionID, map[string]string{"question": ""})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(decodeHistory(t, resp).History) != 0 {
		t.Fatal("expected empty history")
	}
	if completer.calls != 0 {
		t.Fatalf("expected no llm call, got %d", completer.calls)
	}
}

func TestAskLLMFailureKeepsSessionUsable(t *testing.T) {
	completer := &stubCompleter{err: llm.ErrQuotaExceeded}
	r, _ := setupRouter(completer)
	sessionID := createSession(t, r)

	resp := doJSON(r, http.MethodPost, "/chat/"+sessionID, map[string]string{"question": "What is a gerund?"})
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}

	completer.err = errors.New("connection reset")
	resp = doJSON(r, http.MethodPost, "/chat/"+sessionID, map[string]string{"question": "What is a gerund?"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	completer.err = nil
	completer.answer = "A gerund is..."
	resp = doJSON(r, http.MethodPost, "/chat/"+sessionID, map[string]string{"question": "What is a gerund?"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(decodeHistory(t, resp).History) != 2 {
		t.Fatal("failed questions must not leave turns behind")
	}
}

func TestAskUnknownSession(t *testing.T) {
	r, _ := setupRouter(&stubCompleter{answer: "x"})

	resp := doJSON(r, http.MethodPost, "/chat/missing", map[string]string{"question": "hi"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
