package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/reqctx/entity"
	"gopkg.in/yaml.v3"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entity.SessionRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]entity.SessionRecord),
	}
}

func (s *InMemoryStore) Put(id string, rec entity.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = rec
}

func (s *InMemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

func (s *InMemoryStore) FindSession(ctx context.Context, id string) (entity.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return entity.SessionRecord{}, err
	}

	s.mu.RLock()
	rec, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return entity.SessionRecord{}, pkgerror.ErrNotFound
	}

	return rec, nil
}

type seedFile struct {
	Sessions []struct {
		ID        string `yaml:"id"`
		UserID    string `yaml:"user_id"`
		ProfileID string `yaml:"profile_id"`
	} `yaml:"sessions"`
}

// LoadSeed reads sessions from a YAML file and returns how many were stored.
func (s *InMemoryStore) LoadSeed(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return s.ReadSeed(f)
}

// ReadSeed stores every session listed in r:
//
//	sessions:
//	  - id: s1
//	    user_id: u1
//	    profile_id: p1
func (s *InMemoryStore) ReadSeed(r io.Reader) (int, error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode session seed: %w", err)
	}

	for i, row := range seed.Sessions {
		if row.ID == "" || row.UserID == "" {
			return 0, fmt.Errorf("session seed entry %d: id and user_id are required", i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range seed.Sessions {
		s.sessions[row.ID] = entity.SessionRecord{UserID: row.UserID, ProfileID: row.ProfileID}
	}

	return len(seed.Sessions), nil
}
