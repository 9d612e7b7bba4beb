package speech

import (
	"errors"
	"strings"

	speechmodel "github.com/zhouzirui/speak-coach/backend/internal/model/speech"
)

var errMissingCredentials = errors.New("volcengine speech config is missing AppID or AccessToken")

// resolveCredentials 返回规范化后的 AppID 与 AccessToken。
func resolveCredentials(cfg *speechmodel.SpeechConfig) (string, string, error) {
	if cfg == nil {
		return "", "", errMissingCredentials
	}

	appID := strings.TrimSpace(cfg.AppID)
	token := strings.TrimSpace(cfg.AccessToken)

	if appID == "" || token == "" {
		return "", "", errMissingCredentials
	}

	return appID, token, nil
}
