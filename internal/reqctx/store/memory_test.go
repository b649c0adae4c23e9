package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/reqctx/entity"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_FindSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewInMemoryStore()
	s.Put("s1", entity.SessionRecord{UserID: "u1", ProfileID: "p1"})

	rec, err := s.FindSession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, entity.SessionRecord{UserID: "u1", ProfileID: "p1"}, rec)

	_, err = s.FindSession(ctx, "missing")
	require.ErrorIs(t, err, pkgerror.ErrNotFound)

	s.Delete("s1")
	_, err = s.FindSession(ctx, "s1")
	require.ErrorIs(t, err, pkgerror.ErrNotFound)
}

func TestInMemoryStore_FindSession_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewInMemoryStore()
	s.Put("s1", entity.SessionRecord{UserID: "u1"})

	_, err := s.FindSession(ctx, "s1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestInMemoryStore_LoadSeed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.yaml")
	seed := "sessions:\n" +
		"  - id: s1\n    user_id: u1\n    profile_id: p1\n" +
		"  - id: s2\n    user_id: u2\n"
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	s := NewInMemoryStore()
	n, err := s.LoadSeed(path)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	rec, err := s.FindSession(context.Background(), "s2")
	require.NoError(t, err)
	require.Equal(t, entity.SessionRecord{UserID: "u2"}, rec)
}

func TestInMemoryStore_ReadSeed_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "not yaml", in: "sessions: [\n"},
		{name: "missing user", in: "sessions:\n  - id: s1\n"},
		{name: "missing id", in: "sessions:\n  - user_id: u1\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewInMemoryStore()
			_, err := s.ReadSeed(strings.NewReader(tt.in))
			require.Error(t, err)

			_, err = s.FindSession(context.Background(), "s1")
			require.ErrorIs(t, err, pkgerror.ErrNotFound)
		})
	}
}

func TestInMemoryStore_ReadSeed_Empty(t *testing.T) {
	t.Parallel()

	n, err := NewInMemoryStore().ReadSeed(strings.NewReader(""))
	require.NoError(t, err)
	require.Zero(t, n)
}
