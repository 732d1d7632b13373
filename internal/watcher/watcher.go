package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"doc-eater/internal/logging"
	"doc-eater/internal/metrics"
)

// Monitor watches a directory tree and feeds file events into a
// Debouncer. Subdirectories created while watching are added to the
// watch set when running recursively.
type Monitor struct {
	root      string
	recursive bool
	debouncer *Debouncer

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

// NewMonitor creates a Monitor over root. Start must be called before
// events flow.
func NewMonitor(root string, recursive bool, debouncer *Debouncer) (*Monitor, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root is not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	return &Monitor{
		root:      root,
		recursive: recursive,
		debouncer: debouncer,
		done:      make(chan struct{}),
	}, nil
}

// Start registers the watch set and begins dispatching events.
func (m *Monitor) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	m.fsw = fsw

	if err := m.addWatches(m.root); err != nil {
		fsw.Close()
		return err
	}

	logging.Info("Watching %s (recursive=%v)", m.root, m.recursive)
	m.wg.Add(1)
	go m.loop()
	return nil
}

// Stop tears down the watch set. No events are dispatched after Stop
// returns; the debouncer is stopped separately by the caller.
func (m *Monitor) Stop() error {
	close(m.done)
	err := m.fsw.Close()
	m.wg.Wait()
	return err
}

// ScanExisting walks the watch root and pushes every regular file
// through the debounce path, so files present before startup are
// ingested exactly like newly dropped ones.
func (m *Monitor) ScanExisting() error {
	count := 0
	err := filepath.WalkDir(m.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Error scanning %s: %v", path, err)
			return nil
		}
		if entry.IsDir() {
			if path != m.root && !m.recursive {
				return fs.SkipDir
			}
			return nil
		}
		m.debouncer.OnEvent(path)
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan existing files: %w", err)
	}
	logging.Info("Startup scan queued %d existing files", count)
	return nil
}

// addWatches registers root and, when recursive, every directory below
// it.
func (m *Monitor) addWatches(root string) error {
	if !m.recursive {
		if err := m.fsw.Add(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		return nil
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Error walking %s: %v", path, err)
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if err := m.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case event, ok := <-m.fsw.Events:
			if !ok {
				return
			}
			m.handleEvent(event)
		case err, ok := <-m.fsw.Errors:
			if !ok {
				return
			}
			logging.Error("Filesystem watcher error: %v", err)
		}
	}
}

func (m *Monitor) handleEvent(event fsnotify.Event) {
	metrics.WatcherEventsTotal.WithLabelValues(opLabel(event.Op)).Inc()

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if m.recursive {
				if err := m.addWatches(event.Name); err != nil {
					logging.Error("Failed to watch new directory %s: %v", event.Name, err)
				} else {
					logging.Debug("Watching new directory %s", event.Name)
				}
			}
			return
		}
	}

	if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
		m.debouncer.OnEvent(event.Name)
	}
}

func opLabel(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Chmod):
		return "chmod"
	default:
		return "unknown"
	}
}
