package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch <program.pl or dir>",
	Short: "Re-validate a program whenever it changes on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return watchPrograms(ctx, args[0])
	},
}

// programWatcher re-runs validation for .pl files once their change
// events settle past the debounce window. Rapid editor saves collapse
// into a single check. When only is non-empty, events for other files
// are ignored.
type programWatcher struct {
	mu          sync.Mutex
	only        string
	debounceMap map[string]time.Time
	debounceDur time.Duration
}

func watchPrograms(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	// Editors replace files on save, so a single program is watched
	// through its directory.
	dir, only := path, ""
	if !info.IsDir() {
		dir = filepath.Dir(path)
		only = filepath.Clean(path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	pw := &programWatcher{
		only:        only,
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
	}
	logger.Info("watching for program changes", zap.String("path", path))
	fmt.Printf("watching %s (ctrl-c to stop)\n", path)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			pw.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", zap.Error(err))

		case <-debounceTicker.C:
			pw.processDebouncedEvents()
		}
	}
}

func (pw *programWatcher) handleEvent(event fsnotify.Event) {
	if pw.only != "" {
		if filepath.Clean(event.Name) != pw.only {
			return
		}
	} else if !strings.HasSuffix(event.Name, ".pl") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	logger.Debug("program event", zap.String("op", event.Op.String()), zap.String("path", event.Name))

	pw.mu.Lock()
	pw.debounceMap[event.Name] = time.Now()
	pw.mu.Unlock()
}

func (pw *programWatcher) processDebouncedEvents() {
	pw.mu.Lock()
	now := time.Now()
	var toProcess []string
	for path, eventTime := range pw.debounceMap {
		if now.Sub(eventTime) >= pw.debounceDur {
			toProcess = append(toProcess, path)
			delete(pw.debounceMap, path)
		}
	}
	pw.mu.Unlock()

	for _, path := range toProcess {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		fmt.Printf("--- %s\n", filepath.Base(path))
		if err := checkProgram(path); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}
