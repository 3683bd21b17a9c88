package dispatch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"wazmeow/pkg/logger"
)

const (
	reloadDebounce = 1 * time.Second
	stateSweepTick = 30 * time.Second
)

// Watcher drives the Dispatcher's hot-reload: a recursive fsnotify watch
// on a directory of plugin manifest JSON files, debounced by 1s, plus a
// 30s sweep of the Dispatcher's temporary state (permission cache).
type Watcher struct {
	dispatcher *Dispatcher
	root       string
	log        logger.Logger

	mu        sync.Mutex
	debounce  *time.Timer
	fsWatcher *fsnotify.Watcher
}

func NewWatcher(dispatcher *Dispatcher, root string, log logger.Logger) *Watcher {
	return &Watcher{dispatcher: dispatcher, root: root, log: log}
}

// Run installs the recursive watch and blocks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	w.fsWatcher = fw

	if err := w.watchTree(w.root); err != nil {
		return err
	}

	sweep := time.NewTicker(stateSweepTick)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sweep.C:
			w.dispatcher.resetPermCache()
		case evt, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.onEvent(evt)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WarnWithFields("dispatch: plugin watcher error", logger.Fields{"error": err.Error()})
		}
	}
}

func (w *Watcher) watchTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fsWatcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) onEvent(evt fsnotify.Event) {
	if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if filepath.Ext(evt.Name) != ".json" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	manifests, err := loadManifests(w.root)
	if err != nil {
		w.log.ErrorWithFields("dispatch: plugin manifest reload failed", logger.Fields{"error": err.Error()})
		return
	}
	w.dispatcher.ApplyManifests(manifests)
	w.log.InfoWithFields("dispatch: plugin manifests reloaded", logger.Fields{"commands": w.dispatcher.CommandCount()})
}

// loadManifests walks dir for *.json files and decodes each into a
// Manifest (or a slice of Manifest, for a file that bundles several).
func loadManifests(dir string) ([]Manifest, error) {
	var out []Manifest

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var single Manifest
		if err := json.Unmarshal(raw, &single); err == nil && single.Name != "" {
			out = append(out, single)
			return nil
		}

		var many []Manifest
		if err := json.Unmarshal(raw, &many); err != nil {
			return err
		}
		out = append(out, many...)
		return nil
	})
	return out, err
}
