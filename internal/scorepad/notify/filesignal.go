package notify

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileSignal is the fallback transport for peers in other processes: the
// height hint is written to a signal file next to the database, and peers
// observe the change through a filesystem watcher. Only the height
// travels; the file is a hint, never a source of truth.
type FileSignal struct {
	path    string
	watcher *fsnotify.Watcher

	mu         sync.Mutex
	nextID     int
	subs       map[int]func(uint64)
	lastHeight uint64

	closeOnce sync.Once
	done      chan struct{}
}

// NewFileSignal creates the signal file watcher for path. The parent
// directory must exist.
func NewFileSignal(path string) (*FileSignal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("signal path is required")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory rather than the file: atomic rename replaces
	// the inode, which would silently detach a file-level watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch signal dir: %w", err)
	}
	signal := &FileSignal{
		path:    filepath.Clean(path),
		watcher: watcher,
		subs:    make(map[int]func(uint64)),
		done:    make(chan struct{}),
	}
	go signal.loop()
	return signal, nil
}

// Notify implements ChangeNotifier by atomically replacing the signal
// file with the new height.
func (f *FileSignal) Notify(ctx context.Context, height uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.lastHeight = height
	f.mu.Unlock()

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.FormatUint(height, 10)), 0o644); err != nil {
		return fmt.Errorf("write signal file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("publish signal file: %w", err)
	}
	return nil
}

// OnNotify implements ChangeNotifier.
func (f *FileSignal) OnNotify(fn func(height uint64)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Close stops the watcher.
func (f *FileSignal) Close() error {
	var err error
	f.closeOnce.Do(func() {
		close(f.done)
		err = f.watcher.Close()
	})
	return err
}

func (f *FileSignal) loop() {
	for {
		select {
		case <-f.done:
			return
		case evt, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != f.path {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}
			f.handleSignal()
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("file signal watcher: %v", err)
		}
	}
}

func (f *FileSignal) handleSignal() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return
	}
	height, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		log.Printf("file signal: malformed height %q", strings.TrimSpace(string(data)))
		return
	}

	f.mu.Lock()
	// Our own write echoes back through the watcher; peers only need to
	// hear about heights they did not announce themselves.
	if height == f.lastHeight {
		f.mu.Unlock()
		return
	}
	subs := make([]func(uint64), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(height)
	}
}
