package feedback

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLocalLog returns the rotating append-only writer for the on-device
// feedback log. Nothing in this service reads it back.
func NewLocalLog(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     90, // days
	}
}
