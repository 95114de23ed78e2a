package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/persistence/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "edutrack.db")
	store, err := Open(context.Background(), DefaultConfig(dsn))
	require.NoError(t, err)
	return store
}

func TestStoreContract(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		Open: func() persistence.Store { return newTestStore(t) },
	})
}

func TestInMemoryStoreContract(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		Open: func() persistence.Store {
			store, err := Open(context.Background(), InMemoryConfig())
			require.NoError(t, err)
			return store
		},
	})
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "edutrack.db")

	first, err := Open(ctx, DefaultConfig(dsn))
	require.NoError(t, err)
	require.NoError(t, first.PutSessions(ctx, []persistence.Session{
		{ID: "s1", Day: "Monday", StartTime: "09:00", EndTime: "10:00", Subject: "Intro to CS", RoomID: "c1", TeacherID: "u2", TeacherName: "Prof. Smith"},
	}))
	require.NoError(t, first.Close())

	second, err := Open(ctx, DefaultConfig(dsn))
	require.NoError(t, err)
	defer second.Close()

	sessions, err := second.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Intro to CS", sessions[0].Subject)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{DSN: "x.db", JournalMode: "sideways"}.Validate())
	assert.Error(t, Config{DSN: "x.db", Synchronous: "sometimes"}.Validate())
	assert.NoError(t, DefaultConfig("x.db").Validate())
	assert.NoError(t, InMemoryConfig().Validate())
}

func TestErrorMapper(t *testing.T) {
	var mapper ErrorMapper

	assert.Nil(t, mapper.MapError(nil))
	assert.True(t, errors.Is(mapper.MapError(errors.New("UNIQUE constraint failed: sessions.id")), persistence.ErrConflict))

	plain := errors.New("disk I/O error")
	assert.Equal(t, plain, mapper.MapError(plain))
}
