package speech

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

var errUnsupportedFormat = errors.New("unsupported audio format")

// ASR 服务接受的容器格式，按 mime 类型匹配（含父类型）
var supportedFormats = []struct {
	mime   string
	format string
}{
	{"audio/wav", "wav"},
	{"audio/mpeg", "mp3"},
	{"audio/ogg", "ogg"},
	{"application/ogg", "ogg"},
}

// DetectFormat 根据音频内容识别 ASR 请求中的 format 字段。
// 无法识别容器的原始字节按 16kHz PCM 处理。
func DetectFormat(audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errNoAudio
	}

	detected := mimetype.Detect(audio)
	for m := detected; m != nil; m = m.Parent() {
		for _, f := range supportedFormats {
			if m.Is(f.mime) {
				return f.format, nil
			}
		}
	}

	if detected.Is("application/octet-stream") {
		return "pcm", nil
	}

	return "", fmt.Errorf("%w: %s", errUnsupportedFormat, detected.String())
}
