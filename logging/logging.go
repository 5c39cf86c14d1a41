package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const (
	maxLogSize = 5 * 1024 * 1024 // 5MB
	maxBackups = 2
)

// RotatingWriter is a size-capped log file that keeps a small number of
// numbered backups. All process logging goes through the stdlib logger,
// teed to stdout and this writer.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
}

func Setup(logPath string) (*RotatingWriter, error) {
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	size := int64(0)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	rw := &RotatingWriter{
		file:    f,
		path:    logPath,
		size:    size,
		maxSize: maxLogSize,
	}

	log.SetOutput(io.MultiWriter(os.Stdout, rw))
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)

	return rw, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}

	return n, err
}

// rotate shifts auditor.log.1 -> auditor.log.2 and the live file -> .1,
// then reopens a fresh file. Best effort: a failed rename only loses a
// backup, never the live stream.
func (w *RotatingWriter) rotate() {
	w.file.Close()

	for i := maxBackups; i > 1; i-- {
		os.Rename(backupPath(w.path, i-1), backupPath(w.path, i))
	}
	os.Rename(w.path, backupPath(w.path, 1))

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}

	w.file = f
	w.size = 0
}

func backupPath(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
