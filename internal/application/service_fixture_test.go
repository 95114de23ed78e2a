package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/edutrack/internal/absence"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/persistence/memory"
	"github.com/example/edutrack/internal/testfixtures"
)

type serviceFixture struct {
	store    *memory.Storage
	clock    *testfixtures.Clock
	ids      *testfixtures.IDGenerator
	rooms    *RoomService
	sessions *SessionService
	alerts   *AlertService
	monitor  *MonitorService
}

// newServiceFixture wires every service against an in-memory store holding
// the default catalog. The clock starts on Monday at 09:00.
func newServiceFixture(t *testing.T, sessions ...persistence.Session) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		store: memory.Open(),
		clock: testfixtures.NewClock(testfixtures.ReferenceTime()),
		ids:   testfixtures.NewIDGenerator("id"),
	}
	ctx := context.Background()

	f.rooms = NewRoomService(f.store)
	_, err := f.rooms.EnsureCatalog(ctx)
	require.NoError(t, err)
	require.NoError(t, f.store.PutSessions(ctx, sessions))

	f.sessions = NewSessionService(f.store, f.store, f.ids.NextFunc(), f.clock.NowFunc())
	f.alerts = NewAlertService(f.store, absence.NewDebouncer(absence.DedupByMessage, 0))
	f.monitor = NewMonitorService(f.store, f.store, f.alerts, f.sessions, MonitorOptions{RecipientID: "u1"}, f.clock.NowFunc())
	return f
}

func (f *serviceFixture) storedSessions(t *testing.T) []persistence.Session {
	t.Helper()
	sessions, err := f.store.ListSessions(context.Background())
	require.NoError(t, err)
	return sessions
}
