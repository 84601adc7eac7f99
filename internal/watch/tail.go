// Package watch follows a growing file of URLs with fsnotify.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"buckettool/internal/logger"
)

// Tailer emits every complete line appended to a file. It watches the parent
// directory so the file may be created, rotated or truncated while running.
type Tailer struct {
	path    string
	offset  int64
	partial []byte
	watcher *fsnotify.Watcher
}

// NewTailer starts watching path. Unless fromStart is set, lines already in
// the file are skipped.
func NewTailer(path string, fromStart bool) (*Tailer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	t := &Tailer{path: abs, watcher: w}
	if !fromStart {
		if fi, err := os.Stat(abs); err == nil {
			t.offset = fi.Size()
		}
	}
	return t, nil
}

// Run calls emit for each new non-empty line until ctx is done. The watcher is
// closed on return.
func (t *Tailer) Run(ctx context.Context, emit func(line string)) error {
	defer t.watcher.Close()

	if err := t.drain(emit); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-t.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != t.path {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				t.reset()
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				if err := t.drain(emit); err != nil {
					logger.Log().WithError(err).WithField("file", t.path).Warn("failed to read watched file")
				}
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log().WithError(err).Warn("file watcher error")
		}
	}
}

func (t *Tailer) reset() {
	t.offset = 0
	t.partial = nil
}

// drain reads from the last offset to EOF and emits complete lines.
func (t *Tailer) drain(emit func(string)) error {
	f, err := os.Open(t.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if fi.Size() < t.offset {
		logger.Log().WithField("file", t.path).Debug("watched file truncated")
		t.reset()
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	t.offset += int64(len(data))

	buf := append(t.partial, data...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimSpace(string(buf[:i])); line != "" {
			emit(line)
		}
		buf = buf[i+1:]
	}
	t.partial = append([]byte(nil), buf...)
	return nil
}
