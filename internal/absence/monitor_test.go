package absence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/testfixtures"
)

func absentSession() persistence.Session {
	return testfixtures.NewSession(
		testfixtures.WithSessionID("s1"),
		testfixtures.WithSessionRoom("c1"),
		testfixtures.WithSessionTeacher("u2", "Prof. Smith"),
	)
}

func TestSweepThresholds(t *testing.T) {
	t.Parallel()

	sessions := []persistence.Session{absentSession()}

	tests := []struct {
		at   string
		want int
	}{
		{"09:15", 0},
		{"09:20", 0},
		{"09:21", 1},
		{"09:25", 1},
		{"09:59", 1},
		{"10:00", 0},
		{"10:05", 0},
	}
	for _, tt := range tests {
		assert.Len(t, Sweep(sessions, testfixtures.At(0, tt.at), "u1"), tt.want, tt.at)
	}
}

func TestSweepIntentContent(t *testing.T) {
	t.Parallel()

	now := testfixtures.At(0, "09:25")
	intents := Sweep([]persistence.Session{absentSession()}, now, "u1")
	require.Len(t, intents, 1)

	intent := intents[0]
	assert.Equal(t, "absent-s1", intent.ID)
	assert.Equal(t, "s1", intent.SessionID)
	assert.Equal(t, "CRITICAL: Room c1 is EMPTY. Prof. Smith absent > 20mins.", intent.Message)
	assert.Equal(t, persistence.SeverityCritical, intent.Severity)
	assert.Equal(t, "u1", intent.RecipientID)

	alert := intent.Alert()
	assert.Equal(t, now.UnixMilli(), alert.Timestamp)
	assert.False(t, alert.Read)
}

func TestSweepIgnoresCheckedInOtherDaysAndBadTimes(t *testing.T) {
	t.Parallel()

	broken := absentSession()
	broken.ID = "broken"
	broken.StartTime = "9am"

	sessions := []persistence.Session{
		testfixtures.NewSession(testfixtures.WithSessionCheckedIn(20)),
		testfixtures.NewSession(testfixtures.WithSessionDay("Tuesday")),
		broken,
	}
	assert.Empty(t, Sweep(sessions, testfixtures.At(0, "09:30"), "u1"))
}

func TestSweepUsesCeilingNotSessionEnd(t *testing.T) {
	t.Parallel()

	short := testfixtures.NewSession(testfixtures.WithSessionWindow("09:00", "09:30"))
	assert.Len(t, Sweep([]persistence.Session{short}, testfixtures.At(0, "09:45"), "u1"), 1)
}

func TestDebounceSuppressesRecentDuplicate(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(DedupByMessage, 0)
	sessions := []persistence.Session{absentSession()}

	first := testfixtures.At(0, "09:25").Add(30 * time.Second)
	alerts, added := d.Apply(nil, Sweep(sessions, first, "u1"), first)
	require.Len(t, added, 1)
	require.Len(t, alerts, 1)

	later := testfixtures.At(0, "09:35")
	alerts, added = d.Apply(alerts, Sweep(sessions, later, "u1"), later)
	assert.Empty(t, added)
	assert.Len(t, alerts, 1)
}

func TestDebounceWindowBoundary(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(DedupByMessage, 10*time.Minute)
	sessions := []persistence.Session{absentSession()}

	first := testfixtures.At(0, "09:25")
	alerts, _ := d.Apply(nil, Sweep(sessions, first, "u1"), first)

	exactly := first.Add(10 * time.Minute)
	alerts, added := d.Apply(alerts, Sweep(sessions, exactly, "u1"), exactly)
	require.Len(t, added, 1)
	require.Len(t, alerts, 2)
	assert.Equal(t, exactly.UnixMilli(), alerts[0].Timestamp, "newest alert is prepended")
}

func TestDebounceByMessageMergesSessionsWithSameText(t *testing.T) {
	t.Parallel()

	a := absentSession()
	b := absentSession()
	b.ID = "s2"
	now := testfixtures.At(0, "09:30")

	_, added := NewDebouncer(DedupByMessage, 0).Apply(nil, Sweep([]persistence.Session{a, b}, now, "u1"), now)
	assert.Len(t, added, 1)

	_, added = NewDebouncer(DedupByKey, 0).Apply(nil, Sweep([]persistence.Session{a, b}, now, "u1"), now)
	assert.Len(t, added, 2)
}

func TestDebounceIsPerRecipient(t *testing.T) {
	t.Parallel()

	now := testfixtures.At(0, "09:30")
	existing := []persistence.Alert{
		testfixtures.NewAlert("absent-s1", "u9", Message(absentSession()), now.Add(-time.Minute)),
	}

	_, added := NewDebouncer(DedupByMessage, 0).Apply(existing, Sweep([]persistence.Session{absentSession()}, now, "u1"), now)
	assert.Len(t, added, 1)
}

func TestEndToEndAbsentTeacher(t *testing.T) {
	t.Parallel()

	sessions := []persistence.Session{absentSession()}
	d := NewDebouncer(DedupByMessage, 0)

	var alerts []persistence.Alert
	sweep := func(at string) []persistence.Alert {
		now := testfixtures.At(0, at)
		var added []persistence.Alert
		alerts, added = d.Apply(alerts, Sweep(sessions, now, "u1"), now)
		return added
	}

	added := sweep("09:21")
	require.Len(t, added, 1)
	assert.Contains(t, added[0].Message, "c1")
	assert.Equal(t, persistence.SeverityCritical, added[0].Severity)

	assert.Empty(t, sweep("09:25"))
	assert.Empty(t, sweep("10:05"))
	assert.Len(t, alerts, 1)
}

func TestParseDedupMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseDedupMode("key")
	require.NoError(t, err)
	assert.Equal(t, DedupByKey, mode)

	_, err = ParseDedupMode("session")
	assert.Error(t, err)
}
