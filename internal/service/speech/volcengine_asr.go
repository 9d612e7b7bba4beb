package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/model/speech"
)

const (
	defaultASREndpoint = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"

	resourceDuration   = "volc.bigasr.sauc.duration"
	resourceConcurrent = "volc.bigasr.sauc.concurrent"

	codeSuccess      = 20000000
	codeSilentAudio  = 20000003
	audioChunkSize   = 6400 // 16kHz, 16bit, mono, 200ms
	firstAudioSeqNum = 2    // FullClientRequest 占用序号1
)

var errNoAudio = errors.New("no audio data to send")

// ServiceError 表示 ASR 服务端返回的业务错误码。
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ASR API error %d: %s", e.Code, e.Message)
}

// Silent 报告服务端是否判定音频中没有可识别的语音。
func (e *ServiceError) Silent() bool {
	return e.Code == codeSilentAudio
}

// VolcengineASRClient 火山引擎大模型 ASR WebSocket 客户端
type VolcengineASRClient struct {
	config       *speech.SpeechConfig
	dialer       *websocket.Dialer
	sendInterval time.Duration
	logger       *logrus.Entry
}

type asrUtterance struct {
	Text      string `json:"text"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Definite  bool   `json:"definite"`
}

type asrServerMessage struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Result   struct {
		Text       string         `json:"text"`
		Utterances []asrUtterance `json:"utterances,omitempty"`
	} `json:"result,omitempty"`
	AudioInfo struct {
		Duration int64 `json:"duration"`
	} `json:"audio_info,omitempty"`
}

// NewVolcengineASRClient 创建火山引擎ASR客户端
func NewVolcengineASRClient(config *speech.SpeechConfig, logger *logrus.Entry) *VolcengineASRClient {
	return &VolcengineASRClient{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
		sendInterval: 100 * time.Millisecond,
		logger:       logger.WithField("component", "asr"),
	}
}

// asrRequest 火山引擎ASR首包参数（按文档格式）
type asrRequest struct {
	User struct {
		UID string `json:"uid,omitempty"`
	} `json:"user,omitempty"`
	Audio struct {
		Language string `json:"language,omitempty"`
		Format   string `json:"format"`
		Codec    string `json:"codec,omitempty"`
		Rate     int    `json:"rate,omitempty"`
		Bits     int    `json:"bits,omitempty"`
		Channel  int    `json:"channel,omitempty"`
	} `json:"audio"`
	Request struct {
		ModelName      string `json:"model_name"`
		EnableITN      bool   `json:"enable_itn,omitempty"`
		EnablePunc     bool   `json:"enable_punc,omitempty"`
		ShowUtterances bool   `json:"show_utterances,omitempty"`
		ResultType     string `json:"result_type,omitempty"`
		EndWindowSize  int    `json:"end_window_size,omitempty"`
	} `json:"request"`
}

func (c *VolcengineASRClient) endpoint() string {
	if c.config != nil && strings.TrimSpace(c.config.BaseURL) != "" {
		return strings.TrimSpace(c.config.BaseURL)
	}
	return defaultASREndpoint
}

// Recognize 通过 WebSocket 协议完成一次识别：发送首包与全部音频，等待最终结果。
func (c *VolcengineASRClient) Recognize(ctx context.Context, req *speech.ASRRequest) (*speech.ASRResponse, error) {
	appID, token, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	audio, err := io.ReadAll(req.AudioData)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errNoAudio
	}

	resourceID := resourceDuration
	if c.config.ConcurrentMode {
		resourceID = resourceConcurrent
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", appID)
	header.Set("X-Api-Access-Key", token)
	header.Set("X-Api-Resource-Id", resourceID)
	header.Set("X-Api-Connect-Id", uuid.NewString())

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint(), header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ASR WebSocket: %w", err)
	}
	defer conn.Close()

	if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
		c.logger.WithField("logid", logid).Debug("connected")
	}

	payload, err := json.Marshal(c.buildASRRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ASR request: %w", err)
	}
	compressed, err := CompressPayload(payload, GzipCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}
	if err := c.writeMessage(conn, CreateFullClientRequest(compressed, GzipCompression)); err != nil {
		return nil, fmt.Errorf("failed to send ASR request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 读取阻塞在 conn 上，取消时关闭连接以唤醒接收协程
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	respCh := make(chan *speech.ASRResponse, 1)
	recvErrCh := make(chan error, 1)
	go func() {
		result, err := c.receiveResults(conn, req.SessionID)
		if err != nil {
			recvErrCh <- err
			return
		}
		respCh <- result
	}()

	// 并发发送音频，服务端提前报错时可以及时停止
	sendErrCh := make(chan error, 1)
	go func() {
		sendErrCh <- c.sendAudio(ctx, conn, audio)
	}()

	for {
		select {
		case err := <-sendErrCh:
			if err != nil {
				return nil, fmt.Errorf("failed to send audio data: %w", err)
			}
			sendErrCh = nil
		case result := <-respCh:
			return result, nil
		case err := <-recvErrCh:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// buildASRRequest 构建符合火山引擎API格式的首包参数
func (c *VolcengineASRClient) buildASRRequest(req *speech.ASRRequest) *asrRequest {
	asrReq := &asrRequest{}
	asrReq.User.UID = req.SessionID

	asrReq.Audio.Format = req.Format
	if asrReq.Audio.Format == "" {
		asrReq.Audio.Format = "wav"
	}

	asrReq.Audio.Language = req.Language
	if asrReq.Audio.Language == "" {
		asrReq.Audio.Language = c.config.ASRLanguage
	}
	if asrReq.Audio.Language == "" {
		asrReq.Audio.Language = "en-US"
	}

	asrReq.Audio.Codec = "raw"
	if asrReq.Audio.Format == "ogg" {
		asrReq.Audio.Codec = "opus"
	}
	asrReq.Audio.Rate = 16000
	asrReq.Audio.Bits = 16
	asrReq.Audio.Channel = 1

	asrReq.Request.ModelName = "bigmodel"
	asrReq.Request.EnableITN = true
	asrReq.Request.EnablePunc = true
	asrReq.Request.ShowUtterances = true
	asrReq.Request.ResultType = "full"
	asrReq.Request.EndWindowSize = 800

	return asrReq
}

// sendAudio 按 200ms 一包发送音频，最后一包带负序号
func (c *VolcengineASRClient) sendAudio(ctx context.Context, conn *websocket.Conn, audio []byte) error {
	sequence := int32(firstAudioSeqNum)

	for i := 0; i < len(audio); i += audioChunkSize {
		end := min(i+audioChunkSize, len(audio))
		isLast := end >= len(audio)

		chunk, err := CompressPayload(audio[i:end], GzipCompression)
		if err != nil {
			return fmt.Errorf("failed to compress audio chunk: %w", err)
		}

		if err := c.writeMessage(conn, CreateAudioOnlyRequest(chunk, sequence, isLast, GzipCompression)); err != nil {
			return fmt.Errorf("failed to send audio chunk: %w", err)
		}
		sequence++

		if isLast || c.sendInterval <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.sendInterval):
		}
	}

	return nil
}

func (c *VolcengineASRClient) writeMessage(conn *websocket.Conn, msg *Message) error {
	data, err := EncodeMessage(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// receiveResults 读取服务端响应直到最后一包
func (c *VolcengineASRClient) receiveResults(conn *websocket.Conn, sessionID string) (*speech.ASRResponse, error) {
	var (
		finalText string
		duration  int64
	)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read ASR response: %w", err)
		}

		msg, err := DecodeMessage(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode ASR message: %w", err)
		}

		switch msg.Header.MessageType {
		case ErrorMessage:
			payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
			if err != nil {
				payload = msg.Payload
			}
			return nil, &ServiceError{Code: int(msg.ErrorCode), Message: string(payload)}

		case FullServerResponse:
			payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
			if err != nil {
				return nil, fmt.Errorf("failed to decompress ASR payload: %w", err)
			}

			var serverResp asrServerMessage
			if err := json.Unmarshal(payload, &serverResp); err != nil {
				c.logger.WithError(err).Warn("failed to unmarshal response")
				continue
			}

			if serverResp.Code != 0 && serverResp.Code != codeSuccess {
				return nil, &ServiceError{Code: serverResp.Code, Message: serverResp.Message}
			}

			text := serverResp.Result.Text
			if text == "" {
				text = joinUtterances(serverResp.Result.Utterances)
			}
			if text != "" {
				finalText = text
			}
			if serverResp.AudioInfo.Duration > 0 {
				duration = serverResp.AudioInfo.Duration
			}

			if msg.IsLastPacket() || serverResp.Sequence < 0 {
				return &speech.ASRResponse{
					SessionID: sessionID,
					Text:      strings.TrimSpace(finalText),
					Duration:  duration,
					RequestID: sessionID,
					CreatedAt: time.Now().UTC(),
				}, nil
			}
		}
	}
}

func joinUtterances(utterances []asrUtterance) string {
	parts := make([]string, 0, len(utterances))
	for _, u := range utterances {
		if t := strings.TrimSpace(u.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
