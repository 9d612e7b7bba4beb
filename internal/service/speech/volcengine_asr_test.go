package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/speak-coach/backend/internal/logging"
	"github.com/zhouzirui/speak-coach/backend/internal/model/speech"
)

// fakeASRServer 模拟火山引擎 ASR：读完全部音频后回复一次结果
type fakeASRServer struct {
	t        *testing.T
	reply    func(conn *websocket.Conn)
	request  asrRequest
	headers  http.Header
	received int
}

func (f *fakeASRServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.headers = r.Header.Clone()
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := DecodeMessage(bytes.NewReader(data))
		if err != nil {
			f.t.Errorf("decode failed: %v", err)
			return
		}
		payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
		if err != nil {
			f.t.Errorf("decompress failed: %v", err)
			return
		}

		switch msg.Header.MessageType {
		case FullClientRequest:
			if err := json.Unmarshal(payload, &f.request); err != nil {
				f.t.Errorf("bad request payload: %v", err)
			}
		case AudioOnlyRequest:
			f.received += len(payload)
			if msg.IsLastPacket() {
				f.reply(conn)
				return
			}
		}
	}
}

func writeServerJSON(t *testing.T, conn *websocket.Conn, body any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	compressed, err := CompressPayload(raw, GzipCompression)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	data, err := EncodeMessage(&Message{
		Header:   NewHeader(FullServerResponse, NegativeSequenceNumber, JSONSerialization, GzipCompression),
		Sequence: -1,
		Payload:  compressed,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newTestASRClient(serverURL string) *VolcengineASRClient {
	client := NewVolcengineASRClient(&speech.SpeechConfig{
		AppID:       "app",
		AccessToken: "token",
		BaseURL:     "ws" + strings.TrimPrefix(serverURL, "http"),
		ASRLanguage: "en-US",
	}, logging.Discard())
	client.sendInterval = 0
	return client
}

func TestRecognizeReturnsFinalText(t *testing.T) {
	fake := &fakeASRServer{t: t}
	fake.reply = func(conn *websocket.Conn) {
		writeServerJSON(t, conn, map[string]any{
			"code":       codeSuccess,
			"result":     map[string]any{"text": " She don't like apples. "},
			"audio_info": map[string]any{"duration": 2100},
		})
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	audio := testWAV(16000)
	resp, err := newTestASRClient(srv.URL).Recognize(context.Background(), &speech.ASRRequest{
		SessionID: "s1",
		AudioData: bytes.NewReader(audio),
		Format:    "wav",
	})
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if resp.Text != "She don't like apples." {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Duration != 2100 {
		t.Errorf("duration = %d, want 2100", resp.Duration)
	}
	if raw, _ := json.Marshal(resp); strings.Contains(string(raw), "confidence") {
		t.Errorf("response should not report a confidence score: %s", raw)
	}
	if fake.received != len(audio) {
		t.Errorf("server received %d bytes, want %d", fake.received, len(audio))
	}
	if got := fake.headers.Get("X-Api-App-Key"); got != "app" {
		t.Errorf("X-Api-App-Key = %q", got)
	}
	if got := fake.headers.Get("X-Api-Resource-Id"); got != resourceDuration {
		t.Errorf("X-Api-Resource-Id = %q", got)
	}
	if fake.headers.Get("X-Api-Connect-Id") == "" {
		t.Error("missing connect id")
	}
	if fake.request.Audio.Language != "en-US" || fake.request.Audio.Format != "wav" {
		t.Errorf("unexpected audio params: %+v", fake.request.Audio)
	}
}

func TestRecognizeJoinsUtterances(t *testing.T) {
	fake := &fakeASRServer{t: t}
	fake.reply = func(conn *websocket.Conn) {
		writeServerJSON(t, conn, map[string]any{
			"result": map[string]any{
				"utterances": []map[string]any{{"text": "I goes"}, {"text": "to school."}},
			},
		})
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	resp, err := newTestASRClient(srv.URL).Recognize(context.Background(), &speech.ASRRequest{
		SessionID: "s1",
		AudioData: bytes.NewReader(make([]byte, 100)),
		Format:    "pcm",
	})
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if resp.Text != "I goes to school." {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestRecognizeServiceError(t *testing.T) {
	fake := &fakeASRServer{t: t}
	fake.reply = func(conn *websocket.Conn) {
		data, _ := EncodeMessage(&Message{
			Header:    NewHeader(ErrorMessage, NoSequenceNumber, JSONSerialization, NoCompression),
			ErrorCode: codeSilentAudio,
			Payload:   []byte("silent audio"),
		})
		_ = conn.WriteMessage(websocket.BinaryMessage, data)
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := newTestASRClient(srv.URL).Recognize(context.Background(), &speech.ASRRequest{
		SessionID: "s1",
		AudioData: bytes.NewReader(make([]byte, 100)),
	})

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if !svcErr.Silent() {
		t.Errorf("code %d should be reported as silent", svcErr.Code)
	}
}

func TestRecognizeRequiresCredentials(t *testing.T) {
	client := NewVolcengineASRClient(&speech.SpeechConfig{}, logging.Discard())
	_, err := client.Recognize(context.Background(), &speech.ASRRequest{AudioData: bytes.NewReader([]byte{1})})
	if !errors.Is(err, errMissingCredentials) {
		t.Fatalf("expected errMissingCredentials, got %v", err)
	}
}
