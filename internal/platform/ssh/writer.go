package ssh

import (
	"bytes"
	"io"
	"sync"
)

// screenMu serializes prefixed lines from concurrent sessions.
var screenMu sync.Mutex

// prefixWriter writes complete lines to out, each prefixed with a host tag.
type prefixWriter struct {
	prefix string
	out    io.Writer
	buf    bytes.Buffer
}

func newPrefixWriter(host string, out io.Writer) *prefixWriter {
	return &prefixWriter{prefix: "[" + host + "] ", out: out}
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Keep the partial line for the next write.
			w.buf.Reset()
			w.buf.Write(line)
			return len(p), nil
		}
		if err := w.emit(line); err != nil {
			return len(p), err
		}
	}
}

// Flush writes any trailing partial line.
func (w *prefixWriter) Flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	line := append(w.buf.Bytes(), '\n')
	w.buf.Reset()
	return w.emit(line)
}

func (w *prefixWriter) emit(line []byte) error {
	screenMu.Lock()
	defer screenMu.Unlock()
	if _, err := io.WriteString(w.out, w.prefix); err != nil {
		return err
	}
	_, err := w.out.Write(line)
	return err
}
