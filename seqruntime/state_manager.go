package seqruntime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pierrec/lz4"

	"lumina/storage"
	"lumina/typedef"
)

// Show files are JSON compressed with lz4, extension .lumshow. Plain .json
// files are accepted on load for hand-edited shows.

const autosaveFileName = "autosave.lumshow"

// LoadShow reads a show file from disk and installs it as the current state.
func LoadShow(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load show: %w", err)
	}

	var raw []byte
	if strings.HasSuffix(path, ".json") {
		raw = data
	} else {
		raw, err = decompressLZ4(data)
		if err != nil {
			return fmt.Errorf("load show %s: decompress: %w", path, err)
		}
	}

	var show typedef.Show
	if err := json.Unmarshal(raw, &show); err != nil {
		return fmt.Errorf("load show %s: parse: %w", path, err)
	}

	ReplaceShow(show)

	st.mu.Lock()
	st.showPath = path
	st.mu.Unlock()

	// Reattach cached waveform envelopes; a miss just leaves the backdrop
	// empty until the analysis pipeline refills it.
	for i, seq := range show.Sequences {
		if seq.AudioFile == "" {
			continue
		}
		if _, err := LoadWaveformCache(i, seq.AudioFile); err != nil {
			log.Printf("[SEQRUNTIME] Waveform cache for %s: %v", seq.AudioFile, err)
		}
	}

	log.Printf("[SEQRUNTIME] Loaded show from %s", path)
	return nil
}

// SaveShow writes the current show back to its file, or to the autosave
// location when it has never been saved.
func SaveShow() error {
	st.mu.RLock()
	path := st.showPath
	st.mu.RUnlock()
	if path == "" {
		path = storage.DataFile(autosaveFileName)
	}
	return SaveShowAs(path)
}

// SaveShowAs writes the current show to the given path.
func SaveShowAs(path string) error {
	show := GetShow()
	raw, err := json.Marshal(show)
	if err != nil {
		return fmt.Errorf("save show: marshal: %w", err)
	}

	var data []byte
	if strings.HasSuffix(path, ".json") {
		data = raw
	} else {
		data, err = compressLZ4(raw)
		if err != nil {
			return fmt.Errorf("save show: compress: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save show: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save show: %w", err)
	}

	st.mu.Lock()
	st.showPath = path
	st.mu.Unlock()
	return nil
}

// TriggerAutoSave persists the current show on shutdown. Failures log only;
// losing an autosave must not block exit.
func TriggerAutoSave() {
	if err := SaveShow(); err != nil {
		log.Printf("[SEQRUNTIME] Autosave failed: %v", err)
		return
	}
	log.Printf("[SEQRUNTIME] Autosave complete")
}

// Bootstrap loads the given show file, falling back to the autosave, falling
// back to a seeded demo show so the editor always has something to display.
func Bootstrap(path string) {
	if path != "" {
		if err := LoadShow(path); err == nil {
			return
		} else {
			log.Printf("[SEQRUNTIME] Could not load %s: %v", path, err)
		}
	}
	autosave := storage.DataFile(autosaveFileName)
	if _, err := os.Stat(autosave); err == nil {
		if err := LoadShow(autosave); err == nil {
			return
		} else {
			log.Printf("[SEQRUNTIME] Could not load autosave: %v", err)
		}
	}
	ReplaceShow(DemoShow())
	SetWaveform(0, DemoWaveform(30, 2048))
}

// WatchShowFile reloads the current show whenever an external process writes
// it, firing the state-change callback so views refresh. Returns a stop
// function; safe to call when no file is loaded (returns a no-op).
func WatchShowFile() (func(), error) {
	st.mu.RLock()
	path := st.showPath
	st.mu.RUnlock()
	if path == "" {
		return func() {}, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch show: %w", err)
	}
	// Watch the directory: editors replace files by rename, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch show: %w", err)
	}

	done := make(chan struct{})
	go func() {
		var debounce *time.Timer
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != path || !ev.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				// Writers emit bursts of events; reload once they settle.
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, func() {
					if err := LoadShow(path); err != nil {
						log.Printf("[SEQRUNTIME] External reload failed: %v", err)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[SEQRUNTIME] Show watcher error: %v", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
