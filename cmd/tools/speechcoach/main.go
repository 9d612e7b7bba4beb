package main

import (
	"errors"
	"fmt"
	"os"

	speechmodel "github.com/zhouzirui/speak-coach/backend/internal/model/speech"
)

// 退出码
const (
	ExitSuccess       = 0
	ExitCaptureFailed = 1
	ExitError         = 2
)

// CaptureFailureError 表示录音没能转成文字，和配置/网络错误区分开
type CaptureFailureError struct {
	Capture *speechmodel.CaptureError
}

func (e *CaptureFailureError) Error() string {
	return e.Capture.Message()
}

func (e *CaptureFailureError) Unwrap() error { return e.Capture }

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var captureErr *CaptureFailureError
		if errors.As(err, &captureErr) {
			os.Exit(ExitCaptureFailed)
		}
		os.Exit(ExitError)
	}
}
