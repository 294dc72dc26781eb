package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Follow streams entries appended to path after the call, invoking fn
// for each complete decoded line, until ctx is done. The trail may not
// exist yet; its creation is picked up from the directory watch.
func Follow(ctx context.Context, path string, fn func(Entry)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close() //nolint:errcheck // best-effort cleanup
	}()

	// Watch the directory, not the file: the file can be created or
	// rotated away while we watch.
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var offset int64
	if info, err := os.Stat(path); err == nil {
		offset = info.Size()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			offset, err = drain(path, offset, fn)
			if err != nil {
				return err
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", werr)
		}
	}
}

// drain reads complete lines from path starting at offset and returns
// the new offset. A partial trailing line is left unconsumed until the
// write that completes it.
func drain(path string, offset int64, fn func(Entry)) (int64, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return offset, nil
	}
	if err != nil {
		return offset, err
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // read-only
	}()

	if info, err := f.Stat(); err == nil && info.Size() < offset {
		offset = 0 // trail was truncated or rotated
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			return offset, nil
		}
		if err != nil {
			return offset, err
		}
		offset += int64(len(line))

		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		fn(e)
	}
}
