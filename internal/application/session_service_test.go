package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/example/edutrack/internal/lifecycle"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/persistence/mocks"
	"github.com/example/edutrack/internal/scheduler"
	"github.com/example/edutrack/internal/testfixtures"
)

func smith() Teacher {
	return Teacher{ID: "u2", Name: "Prof. Smith"}
}

func TestBookAdHocCreatesActiveSession(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	activated, err := f.sessions.BookAdHoc(ctx, BookAdHocParams{
		Teacher:       smith(),
		RoomID:        "l2",
		Date:          "2024-03-04",
		StartTime:     "11:00",
		DurationHours: 2,
	})
	require.NoError(t, err)

	session := activated.Session
	assert.Equal(t, "adhoc-id-1", session.ID)
	assert.Equal(t, "Monday", session.Day)
	assert.Equal(t, "11:00", session.StartTime)
	assert.Equal(t, "13:00", session.EndTime)
	assert.Equal(t, lifecycle.AdHocSubject, session.Subject)
	assert.Equal(t, lifecycle.StateQRActive, lifecycle.StateOf(session))
	assert.Equal(t, `{"id":"adhoc-id-1","room":"l2","subj":"Ad-hoc Class / Lab"}`, activated.QRText)

	stored := f.storedSessions(t)
	require.Len(t, stored, 1)
	assert.Equal(t, session, stored[0])

	active, ok, err := f.sessions.ActiveSession(ctx, "u2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "adhoc-id-1", active.ID)
	assert.Equal(t, lifecycle.StateQRActive, active.State)
}

func TestBookAdHocRejectsBadRequests(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.sessions.BookAdHoc(ctx, BookAdHocParams{Teacher: smith(), RoomID: "c1", Date: "2024-03-04", StartTime: "11:00", DurationHours: 4})
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.FieldErrors, "durationHours")

	_, err = f.sessions.BookAdHoc(ctx, BookAdHocParams{Teacher: smith(), RoomID: "c99", Date: "2024-03-04", StartTime: "11:00", DurationHours: 1})
	invalid = nil
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.FieldErrors, "roomId")
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.Empty(t, f.storedSessions(t))
}

func TestBookAdHocStoreFailureLeavesNoSelection(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	boom := errors.New("connection reset")

	store.EXPECT().ListRooms(gomock.Any()).Return(DefaultCatalog(), nil)
	store.EXPECT().ListSessions(gomock.Any()).Return([]persistence.Session{}, nil)
	store.EXPECT().PutSessions(gomock.Any(), gomock.Len(1)).Return(boom)

	svc := NewSessionService(store, store, testfixtures.NewIDGenerator("id").NextFunc(), testfixtures.NewClock(time.Time{}).NowFunc())
	_, err := svc.BookAdHoc(context.Background(), BookAdHocParams{Teacher: smith(), RoomID: "c1", Date: "2024-03-04", StartTime: "11:00", DurationHours: 1})
	require.ErrorIs(t, err, boom)

	_, ok, err := svc.ActiveSession(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActivateAndConfirm(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, testfixtures.NewSession(
		testfixtures.WithSessionID("s1"),
		testfixtures.WithSessionWindow("09:00", "10:30"),
	))
	ctx := context.Background()

	activated, err := f.sessions.Activate(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, activated.Session.QRCodeGenerated)
	assert.Equal(t, 2, activated.Session.DurationHours)
	assert.Equal(t, lifecycle.QRPayload{ID: "s1", Room: "c1", Subject: "Intro to CS"}, activated.QR)

	again, err := f.sessions.Activate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, activated.Session, again.Session)

	f.clock.Advance(5 * time.Minute)
	confirmed, err := f.sessions.Confirm(ctx, "s1", 32)
	require.NoError(t, err)
	assert.True(t, confirmed.CheckedIn)
	assert.Equal(t, "09:05:00", confirmed.CheckInTime)
	assert.Equal(t, 32, confirmed.StudentCount)
	assert.Equal(t, confirmed, f.storedSessions(t)[0])

	_, ok, err := f.sessions.ActiveSession(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok, "confirmation clears the console selection")
}

func TestConfirmRules(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, testfixtures.NewSession(testfixtures.WithSessionID("s1")))
	ctx := context.Background()

	_, err := f.sessions.Confirm(ctx, "s1", 10)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldErrors, "state")

	_, err = f.sessions.Activate(ctx, "s1")
	require.NoError(t, err)

	_, err = f.sessions.Confirm(ctx, "s1", 0)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.FieldErrors, "studentCount")

	_, err = f.sessions.Confirm(ctx, "missing", 10)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "not_found", ErrorKind(err))
}

func TestActiveSessionOverrideUntilRefreshCatchesUp(t *testing.T) {
	t.Parallel()

	scheduled := testfixtures.NewSession(testfixtures.WithSessionID("s1"))
	f := newServiceFixture(t, scheduled)
	ctx := context.Background()

	_, err := f.sessions.Activate(ctx, "s1")
	require.NoError(t, err)

	// Another writer puts back a stale record.
	require.NoError(t, f.store.PutSessions(ctx, []persistence.Session{scheduled}))
	require.NoError(t, f.monitor.Refresh(ctx))

	active, ok, err := f.sessions.ActiveSession(ctx, "u2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lifecycle.StateQRActive, active.State)

	caughtUp := scheduled
	caughtUp.QRCodeGenerated = true
	caughtUp.Subject = "Renamed"
	require.NoError(t, f.store.PutSessions(ctx, []persistence.Session{caughtUp}))
	require.NoError(t, f.monitor.Refresh(ctx))

	active, ok, err = f.sessions.ActiveSession(ctx, "u2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Renamed", active.Subject)
}

func TestActiveSessionDroppedWhenSessionDeleted(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, testfixtures.NewSession(testfixtures.WithSessionID("s1")))
	ctx := context.Background()

	_, err := f.sessions.Activate(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, f.sessions.DeleteSession(ctx, "s1"))
	require.NoError(t, f.monitor.Refresh(ctx))

	_, ok, err := f.sessions.ActiveSession(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActiveSessionDroppedWhenSessionEdited(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, testfixtures.NewSession(testfixtures.WithSessionID("s1")))
	ctx := context.Background()

	_, err := f.sessions.Activate(ctx, "s1")
	require.NoError(t, err)

	input := SessionInput{Day: "Monday", StartTime: "11:00", EndTime: "12:00", Subject: "Intro to CS", RoomID: "c2", TeacherID: "u2"}
	_, _, err = f.sessions.UpdateSession(ctx, "s1", input)
	require.NoError(t, err)
	require.NoError(t, f.monitor.Refresh(ctx))

	_, ok, err := f.sessions.ActiveSession(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok, "an edited session leaves the console")

	// A record replaced by another writer drops the override on refresh.
	activated, err := f.sessions.Activate(ctx, "s1")
	require.NoError(t, err)
	moved := activated.Session
	moved.QRCodeGenerated = false
	moved.RoomID = "c3"
	require.NoError(t, f.store.PutSessions(ctx, []persistence.Session{moved}))
	require.NoError(t, f.monitor.Refresh(ctx))

	active, ok, err := f.sessions.ActiveSession(ctx, "u2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c3", active.RoomID)
	assert.Equal(t, lifecycle.StateScheduled, active.State)
}

func TestTodaySessionsOrderedByStart(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t,
		testfixtures.NewSession(testfixtures.WithSessionID("late"), testfixtures.WithSessionWindow("14:00", "15:00")),
		testfixtures.NewSession(testfixtures.WithSessionID("early"), testfixtures.WithSessionCheckedIn(20)),
		testfixtures.NewSession(testfixtures.WithSessionID("tuesday"), testfixtures.WithSessionDay("Tuesday")),
		testfixtures.NewSession(testfixtures.WithSessionID("other"), testfixtures.WithSessionTeacher("u3", "Dr. Jones")),
	)

	today, err := f.sessions.TodaySessions(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, "early", today[0].ID)
	assert.Equal(t, lifecycle.StateConfirmed, today[0].State)
	assert.Equal(t, "late", today[1].ID)
	assert.Equal(t, lifecycle.StateScheduled, today[1].State)
}

func TestCreateSessionRejectsRoomOverlap(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, testfixtures.NewSession(testfixtures.WithSessionID("s1")))
	ctx := context.Background()

	input := SessionInput{Day: "monday", StartTime: "09:30", EndTime: "10:30", Subject: "Physics", RoomID: "c1", TeacherID: "u3"}
	_, _, err := f.sessions.CreateSession(ctx, input)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"s1"}, conflict.SessionIDs)
	assert.Len(t, f.storedSessions(t), 1)
	assert.Empty(t, f.ids.Issued(), "rejected sessions do not consume ids")

	input.RoomID = "c2"
	input.TeacherID = "u2"
	created, warnings, err := f.sessions.CreateSession(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, "Monday", created.Day)
	assert.Equal(t, 1, created.DurationHours)
	require.Len(t, warnings, 1)
	assert.Equal(t, ConflictWarning{SessionID: "id-1", WithSessionID: "s1", Type: scheduler.ConflictTypeTeacher, TeacherID: "u2"}, warnings[0])
	assert.Len(t, f.storedSessions(t), 2)
}

func TestCreateSessionValidatesInput(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	_, _, err := f.sessions.CreateSession(ctx, SessionInput{Day: "Funday", StartTime: "9am", EndTime: "10:00", RoomID: "c1", TeacherID: "u2"})
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.FieldErrors, "day")
	assert.Contains(t, invalid.FieldErrors, "startTime")
	assert.Contains(t, invalid.FieldErrors, "subject")

	_, _, err = f.sessions.CreateSession(ctx, SessionInput{Day: "Monday", StartTime: "10:00", EndTime: "09:00", Subject: "Maths", RoomID: "c1", TeacherID: "u2"})
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.FieldErrors, "endTime")

	_, _, err = f.sessions.CreateSession(ctx, SessionInput{Day: "Monday", StartTime: "09:00", EndTime: "10:00", Subject: "Maths", RoomID: "c99", TeacherID: "u2"})
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.FieldErrors, "roomId")
}

func TestUpdateSessionResetsLifecycle(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t,
		testfixtures.NewSession(testfixtures.WithSessionID("s1"), testfixtures.WithSessionCheckedIn(30)),
		testfixtures.NewSession(testfixtures.WithSessionID("s2"), testfixtures.WithSessionWindow("11:00", "12:00")),
	)
	ctx := context.Background()

	input := SessionInput{Day: "Monday", StartTime: "09:00", EndTime: "10:00", Subject: "Intro to CS", RoomID: "c1", TeacherID: "u2"}
	updated, warnings, err := f.sessions.UpdateSession(ctx, "s1", input)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "s1", updated.ID)
	assert.False(t, updated.CheckedIn)
	assert.Zero(t, updated.StudentCount)
	assert.Equal(t, updated, f.storedSessions(t)[0])

	input.StartTime, input.EndTime = "10:30", "11:30"
	_, _, err = f.sessions.UpdateSession(ctx, "s1", input)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"s2"}, conflict.SessionIDs)

	_, _, err = f.sessions.UpdateSession(ctx, "missing", input)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t,
		testfixtures.NewSession(testfixtures.WithSessionID("s1")),
		testfixtures.NewSession(testfixtures.WithSessionID("s2"), testfixtures.WithSessionDay("Tuesday")),
	)
	ctx := context.Background()

	require.NoError(t, f.sessions.DeleteSession(ctx, "s1"))
	stored := f.storedSessions(t)
	require.Len(t, stored, 1)
	assert.Equal(t, "s2", stored[0].ID)

	assert.ErrorIs(t, f.sessions.DeleteSession(ctx, "s1"), ErrNotFound)
}

func TestListSessionsReportsTeacherOverlaps(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t,
		testfixtures.NewSession(testfixtures.WithSessionID("s1")),
		testfixtures.NewSession(testfixtures.WithSessionID("s2"), testfixtures.WithSessionRoom("c2"), testfixtures.WithSessionWindow("09:30", "10:30")),
		testfixtures.NewSession(testfixtures.WithSessionID("s3"), testfixtures.WithSessionDay("Tuesday")),
	)
	ctx := context.Background()

	listed, warnings, err := f.sessions.ListSessions(ctx, "monday")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	require.Len(t, warnings, 1)
	assert.Equal(t, "s1", warnings[0].SessionID)
	assert.Equal(t, "s2", warnings[0].WithSessionID)

	all, _, err := f.sessions.ListSessions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, f.sessions.DeleteSession(ctx, "s2"))
	_, warnings, err = f.sessions.ListSessions(ctx, "Monday")
	require.NoError(t, err)
	assert.Empty(t, warnings, "writes drop cached warnings")

	_, _, err = f.sessions.ListSessions(ctx, "Someday")
	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestExportTimetableNamesWorkbookByDate(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t, testfixtures.NewSession())

	buf, name, err := f.sessions.ExportTimetable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "timetable_20240304.xlsx", name)
	assert.NotZero(t, buf.Len())
}
