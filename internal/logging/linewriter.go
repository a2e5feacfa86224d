package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
)

// maxLineBytes bounds how much of an unterminated line is buffered before it
// is emitted anyway.
const maxLineBytes = 64 * 1024

// LineWriter turns a byte stream into one log record per line. It is meant to
// be used as exec.Cmd.Stdout or Stderr; call Flush after the command exits to
// emit a trailing line without a newline.
type LineWriter struct {
	mu     sync.Mutex
	logger *slog.Logger
	level  slog.Level
	msg    string
	buf    bytes.Buffer
}

// NewLineWriter logs each line as msg with a "line" attribute at level.
func NewLineWriter(logger *slog.Logger, level slog.Level, msg string) *LineWriter {
	if logger == nil {
		logger = NewNop()
	}
	return &LineWriter{logger: logger, level: level, msg: msg}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := string(w.buf.Next(idx + 1))
		w.emit(line)
	}
	if w.buf.Len() > maxLineBytes {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() == 0 {
		return
	}
	w.emit(w.buf.String())
	w.buf.Reset()
}

func (w *LineWriter) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}
	w.logger.Log(context.Background(), w.level, w.msg, slog.String("line", line))
}
