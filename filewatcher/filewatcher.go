// Copyright Crosscut Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filewatcher watches a single script file for content changes and
// reports them on a channel, so `crosscutctl watch` can feed a freshly
// edited script back into a running engine. It watches the file's parent
// directory rather than the file itself -- editors commonly replace a file
// on save rather than writing it in place, which an inode-level watch on
// the file itself would miss -- and de-duplicates fsnotify's sometimes
// doubled events by comparing md5 sums, the same technique istio-pkg's
// filewatcher/worker.go uses to drive its per-path event channels.
package filewatcher

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches one file for content changes.
type Watcher struct {
	path string
	dir  *fsnotify.Watcher

	mu      sync.Mutex
	lastSum []byte

	changed chan struct{}
	done    chan struct{}
}

// New starts watching path's parent directory for changes to path's
// content. Call Close to stop.
func New(path string) (*Watcher, error) {
	dir, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filewatcher: %w", err)
	}
	if err := dir.Add(filepath.Dir(path)); err != nil {
		_ = dir.Close()
		return nil, fmt.Errorf("filewatcher: watching %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:    path,
		dir:     dir,
		lastSum: sumOf(path),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changed reports a change to the watched file's content. Sends are
// non-blocking and coalesce: a reader that's behind sees one notification
// for several rapid writes, not one per fsnotify event.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Close stops the watcher and releases its underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.dir.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.dir.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			w.checkSum()

		case _, ok := <-w.dir.Errors:
			if !ok {
				return
			}

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) checkSum() {
	sum := sumOf(w.path)

	w.mu.Lock()
	unchanged := bytes.Equal(sum, w.lastSum)
	w.lastSum = sum
	w.mu.Unlock()

	if unchanged {
		return
	}
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

func sumOf(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	h := md5.New()
	_, _ = io.Copy(h, bufio.NewReader(f))
	return h.Sum(nil)
}
