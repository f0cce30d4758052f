package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
)

// JSONGameStore keeps the games list in a single indented JSON array.
//
// The mutex serialises read-modify-write cycles inside one process. Nothing
// guards against a second process writing the same file.
type JSONGameStore struct {
	path string
	opts fileOptions
	mu   sync.Mutex
}

var _ GameStore = (*JSONGameStore)(nil)

// NewJSONGameStore returns a store over path. The file is created on first write.
func NewJSONGameStore(path string, opts ...Option) *JSONGameStore {
	o := defaultFileOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &JSONGameStore{path: path, opts: o}
}

// ReadAll implements GameStore.
func (s *JSONGameStore) ReadAll(_ context.Context) ([]model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// WriteAll implements GameStore.
func (s *JSONGameStore) WriteAll(_ context.Context, games []model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(games)
}

// Find implements GameStore.
func (s *JSONGameStore) Find(_ context.Context, id string) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games, err := s.read()
	if err != nil {
		return model.Game{}, err
	}
	if i := indexOf(games, id); i >= 0 {
		return games[i], nil
	}
	return model.Game{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Insert implements GameStore.
func (s *JSONGameStore) Insert(_ context.Context, g model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	games, err := s.read()
	if err != nil {
		return err
	}
	if indexOf(games, g.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, g.ID)
	}
	return s.write(append(games, g))
}

// Update implements GameStore.
func (s *JSONGameStore) Update(_ context.Context, id string, fn func(*model.Game)) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games, err := s.read()
	if err != nil {
		return model.Game{}, err
	}
	i := indexOf(games, id)
	if i < 0 {
		return model.Game{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(&games[i])
	games[i].ID = id
	if err := s.write(games); err != nil {
		return model.Game{}, err
	}
	return games[i], nil
}

// Delete implements GameStore.
func (s *JSONGameStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	games, err := s.read()
	if err != nil {
		return err
	}
	i := indexOf(games, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.write(append(games[:i], games[i+1:]...))
}

// Count implements GameStore.
func (s *JSONGameStore) Count(ctx context.Context) int {
	games, err := s.ReadAll(ctx)
	if err != nil {
		return 0
	}
	return len(games)
}

func (s *JSONGameStore) read() ([]model.Game, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Game{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	games := []model.Game{}
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}
	return games, nil
}

// write replaces the file through a temp file and rename so readers never see
// a half-written list.
func (s *JSONGameStore) write(games []model.Game) error {
	if games == nil {
		games = []model.Game{}
	}
	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return fmt.Errorf("encode games: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if s.opts.sync {
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("sync %s: %w", tmp.Name(), err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), s.opts.perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func indexOf(games []model.Game, id string) int {
	for i := range games {
		if games[i].ID == id {
			return i
		}
	}
	return -1
}
