package logger

import (
	"bytes"
	"log"
)

// SuiteLogger captures the transcript of a single suite run. The buffer is
// persisted alongside the summary artifact so the full run can be replayed
// when debugging why a suite passed or failed.
type SuiteLogger struct {
	buf    *bytes.Buffer
	logger *log.Logger
	id     string
}

// NewSuiteLogger creates a new logger for a suite run.
func NewSuiteLogger(id string) *SuiteLogger {
	buf := &bytes.Buffer{}

	return &SuiteLogger{
		buf:    buf,
		logger: log.New(buf, "", log.LstdFlags),
		id:     id,
	}
}

// Printf logs a formatted message.
func (l *SuiteLogger) Printf(format string, v ...interface{}) {
	l.logger.Printf(format, v...)
}

// Print logs a message.
func (l *SuiteLogger) Print(v ...interface{}) {
	l.logger.Print(v...)
}

// GetID returns the suite run ID.
func (l *SuiteLogger) GetID() string {
	return l.id
}

// GetBuffer returns the underlying buffer.
func (l *SuiteLogger) GetBuffer() *bytes.Buffer {
	return l.buf
}
