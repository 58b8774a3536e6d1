package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quantum-chat/internal/history"
)

const (
	filePrefix = "quantum_chat_"
	fileExt    = ".json"
	timeLayout = "20060102_150405"
)

type FileStore struct {
	dir string
	now func() time.Time
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure conversations dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (s *FileStore) Dir() string { return s.dir }

// Save writes msgs to a new file named after the current second. A second
// save within the same second gets a numeric suffix instead of replacing
// the earlier file.
func (s *FileStore) Save(msgs []history.Message) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to ensure conversations dir: %w", err)
	}
	if msgs == nil {
		msgs = []history.Message{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(msgs); err != nil {
		return "", fmt.Errorf("encode conversation: %w", err)
	}

	stamp := s.now().Format(timeLayout)
	for n := 0; ; n++ {
		name := filePrefix + stamp + fileExt
		if n > 0 {
			name = fmt.Sprintf("%s%s_%d%s", filePrefix, stamp, n, fileExt)
		}
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create conversation file: %w", err)
		}
		if _, err := f.Write(buf.Bytes()); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("write conversation file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close conversation file: %w", err)
		}
		return path, nil
	}
}

func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read conversations dir: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// Resolve maps a name returned by List to a path inside the store.
func (s *FileStore) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *FileStore) Load(path string) ([]history.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read conversation file: %w", err)
	}
	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if entries == nil {
		// literal null
		return nil, fmt.Errorf("%w: %s: not an array", ErrMalformed, path)
	}
	msgs := make([]history.Message, 0, len(entries))
	for i, e := range entries {
		if e.Content == nil {
			return nil, fmt.Errorf("%w: %s: entry %d: missing content", ErrMalformed, path, i)
		}
		m := history.Message{Role: e.Role, Content: *e.Content}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: entry %d: %v", ErrMalformed, path, i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// fileEntry is a transcript entry as read from disk. Content is a pointer so
// a missing or null value can be told apart from an empty string.
type fileEntry struct {
	Role    history.Role `json:"role"`
	Content *string      `json:"content"`
}
