package speech

import (
	"bytes"
	"testing"
)

// TestProtocolEncoding 测试二进制协议编解码
func TestProtocolEncoding(t *testing.T) {
	payload := []byte(`{"audio":{"format":"wav"}}`)
	original := CreateFullClientRequest(payload, NoCompression)

	encoded, err := EncodeMessage(original)
	if err != nil {
		t.Fatalf("Failed to encode message: %v", err)
	}

	decoded, err := DecodeMessage(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Failed to decode message: %v", err)
	}

	if decoded.Header.MessageType != FullClientRequest {
		t.Errorf("Message type mismatch: got %v, want %v", decoded.Header.MessageType, FullClientRequest)
	}
	if decoded.Header.SerializationMethod != JSONSerialization {
		t.Errorf("Serialization mismatch: got %v", decoded.Header.SerializationMethod)
	}
	if !bytes.Equal(decoded.Payload, payload) {
		t.Errorf("Payload mismatch: got %q, want %q", decoded.Payload, payload)
	}
	if decoded.IsLastPacket() {
		t.Error("full client request should not be the last packet")
	}
}

func TestAudioOnlyRequestSequence(t *testing.T) {
	tests := []struct {
		name     string
		sequence int32
		isLast   bool
		wantSeq  int32
		wantLast bool
	}{
		{name: "middle chunk", sequence: 2, isLast: false, wantSeq: 2, wantLast: false},
		{name: "last chunk", sequence: 5, isLast: true, wantSeq: -5, wantLast: true},
		{name: "last without sequence", sequence: 0, isLast: true, wantSeq: 0, wantLast: true},
	}

	for _, tt := range tests {
		msg := CreateAudioOnlyRequest([]byte{1, 2, 3}, tt.sequence, tt.isLast, NoCompression)
		encoded, err := EncodeMessage(msg)
		if err != nil {
			t.Fatalf("%s: encode failed: %v", tt.name, err)
		}
		decoded, err := DecodeMessage(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("%s: decode failed: %v", tt.name, err)
		}
		if decoded.Sequence != tt.wantSeq {
			t.Errorf("%s: sequence = %d, want %d", tt.name, decoded.Sequence, tt.wantSeq)
		}
		if decoded.IsLastPacket() != tt.wantLast {
			t.Errorf("%s: IsLastPacket = %v, want %v", tt.name, decoded.IsLastPacket(), tt.wantLast)
		}
	}
}

func TestErrorMessageCarriesCode(t *testing.T) {
	msg := &Message{
		Header:    NewHeader(ErrorMessage, NoSequenceNumber, JSONSerialization, NoCompression),
		ErrorCode: 45000001,
		Payload:   []byte("invalid request"),
	}

	encoded, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeMessage(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.ErrorCode != 45000001 {
		t.Errorf("error code = %d, want 45000001", decoded.ErrorCode)
	}
	if string(decoded.Payload) != "invalid request" {
		t.Errorf("payload = %q", decoded.Payload)
	}
}

func TestDecodeHeaderRejectsUnknownVersion(t *testing.T) {
	if _, err := DecodeHeader([]byte{0x21, 0x10, 0x10, 0x00}); err == nil {
		t.Fatal("expected version error")
	}
	if _, err := DecodeHeader([]byte{0x11}); err == nil {
		t.Fatal("expected short header error")
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("she don't like apples "), 50)

	compressed, err := CompressPayload(data, GzipCompression)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if len(compressed) >= len(data) {
		t.Errorf("compressed size %d not smaller than %d", len(compressed), len(data))
	}

	restored, err := DecompressPayload(compressed, GzipCompression)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if !bytes.Equal(restored, data) {
		t.Error("round trip mismatch")
	}

	if _, err := CompressPayload(data, CompressionMethod(7)); err == nil {
		t.Error("expected unsupported compression error")
	}
}
