package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONFileStore хранит соответствия в одном JSON-объекте на диске:
// {"<original id>": ["<reply id>", ...]}.
//
// Each call reads and rewrites the whole file under a mutex, so concurrent
// tasks never corrupt it. A Get followed by a Set for the same original
// message is still not atomic: last writer wins.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

func (s *JSONFileStore) GetReplies(ctx context.Context, originalID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return data[originalID], nil
}

func (s *JSONFileStore) SetReplies(ctx context.Context, originalID string, replyIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if replyIDs == nil {
		replyIDs = []string{}
	}
	data[originalID] = replyIDs

	return s.save(data)
}

// load возвращает пустую карту, если файла ещё нет
func (s *JSONFileStore) load() (map[string][]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	data := map[string][]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", s.path, err)
	}
	return data, nil
}

func (s *JSONFileStore) save(data map[string][]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal replies: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename to %s: %w", s.path, err)
	}
	return nil
}
