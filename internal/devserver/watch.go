package devserver

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change summarizes a batch of changed files
type Change struct {
	Go      []string
	Assets  []string
	Rebuild bool
	Reload  bool
}

// Classify sorts changed paths into sources that need a rebuild and assets
// that only need a page reload. Other files are ignored.
func Classify(paths []string) Change {
	var c Change
	seen := make(map[string]bool)
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		switch strings.ToLower(filepath.Ext(p)) {
		case ".go":
			c.Go = append(c.Go, p)
		case ".svg", ".css", ".html", ".js":
			c.Assets = append(c.Assets, p)
		}
	}
	c.Rebuild = len(c.Go) > 0
	c.Reload = len(c.Assets) > 0
	return c
}

// watcher debounces fsnotify events under a directory tree
type watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
}

func newWatcher(root string, debounce time.Duration) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &watcher{fs: fsw, debounce: debounce}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to setup watcher: %w", err)
	}
	return w, nil
}

// addTree watches root and its subdirectories, skipping hidden directories
// and node_modules
func (w *watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "node_modules") {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

// Run delivers batches of changed paths to fn, each batch once no new event
// arrived for the debounce interval
func (w *watcher) Run(ctx context.Context, fn func(context.Context, []string)) {
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	var pending []string
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// new directories need their own watch
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.Printf("⚠️  Failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			pending = append(pending, event.Name)
			debounce.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Println("Watcher error:", err)

		case <-debounce.C:
			if len(pending) > 0 {
				batch := pending
				pending = nil
				fn(ctx, batch)
			}
		}
	}
}

func (w *watcher) Close() error { return w.fs.Close() }
