package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New 根据日志级别创建 logrus 实例，无法识别的级别回退到 info。
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

// NewWithOutput 与 New 相同，但允许指定输出位置（命令行输出到 stderr，测试输出到 buffer）。
func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	logLevel := logrus.InfoLevel
	if lv, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil {
		logLevel = lv
	}
	logger.SetLevel(logLevel)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return logger
}

// Discard 返回一个丢弃所有输出的 logger。
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
