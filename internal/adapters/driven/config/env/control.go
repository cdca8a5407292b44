// Package env reads the operator's run switch from a .env file.
//
// The file holds two keys:
//
//	STILL_ON=ON   # any value but 0/false/off/no keeps the loop running
//	TIMER=5       # seconds between passes
//
// The file is re-read on every Load. When watching is enabled, writes to the
// file are signalled on Changes so a sleeping loop wakes immediately.
package env

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure ControlFile implements the interface.
var _ driven.RunControlSource = (*ControlFile)(nil)

// Control keys.
const (
	KeyStillOn = "STILL_ON"
	KeyTimer   = "TIMER"
)

// ControlFile is a driven.RunControlSource over a .env file.
type ControlFile struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
}

// NewControlFile creates a control source for path. Watching starts with
// Watch.
func NewControlFile(path string, logger *zap.Logger) *ControlFile {
	if path == "" {
		path = ".env"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ControlFile{path: path, logger: logger}
}

// Path returns the control file path.
func (c *ControlFile) Path() string {
	return c.path
}

// Load re-reads the file. A missing STILL_ON means off. A missing or invalid
// TIMER leaves Interval zero so the caller applies its fallback.
func (c *ControlFile) Load() (domain.RunControl, error) {
	values, err := godotenv.Read(c.path)
	if err != nil {
		return domain.RunControl{}, fmt.Errorf("reading %s: %w", c.path, err)
	}

	control := domain.RunControl{StillOn: truthy(values[KeyStillOn])}
	if raw := strings.TrimSpace(values[KeyTimer]); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			c.logger.Warn("invalid TIMER, using fallback", zap.String("value", raw))
		} else {
			control.Interval = time.Duration(secs) * time.Second
		}
	}
	return control, nil
}

// Watch starts notifying Changes on writes to the file. The parent directory
// is watched so editors that replace the file are seen.
func (c *ControlFile) Watch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(c.path)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", c.path, err)
	}

	c.watcher = w
	c.changes = make(chan struct{}, 1)
	c.done = make(chan struct{})
	go c.loop(w, c.changes, c.done)
	return nil
}

func (c *ControlFile) loop(w *fsnotify.Watcher, changes chan<- struct{}, done chan<- struct{}) {
	defer close(done)
	target := filepath.Clean(c.path)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			select {
			case changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			c.logger.Warn("control file watcher error", zap.Error(err))
		}
	}
}

// Changes signals modifications of the file. Nil until Watch succeeds.
func (c *ControlFile) Changes() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.changes == nil {
		return nil
	}
	return c.changes
}

// Close stops the watcher.
func (c *ControlFile) Close() error {
	c.mu.Lock()
	w, done := c.watcher, c.done
	c.watcher = nil
	c.mu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	return err
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off", "no", "n", "nao", "não":
		return false
	default:
		return true
	}
}
