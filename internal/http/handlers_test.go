package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/example/edutrack/internal/absence"
	"github.com/example/edutrack/internal/application"
	"github.com/example/edutrack/internal/extraction"
	extractionmocks "github.com/example/edutrack/internal/extraction/mocks"
	"github.com/example/edutrack/internal/persistence"
	"github.com/example/edutrack/internal/persistence/memory"
	"github.com/example/edutrack/internal/testfixtures"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine    *gin.Engine
	monitor   *application.MonitorService
	extractor *extractionmocks.MockExtractor
}

// newTestServer serves the default catalog with one Monday 09:00-10:00
// session "s1" in c1, at Monday 09:00.
func newTestServer(t *testing.T, withImport bool) *testServer {
	t.Helper()

	ctx := context.Background()
	store := memory.Open()
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("id")

	rooms := application.NewRoomService(store)
	_, err := rooms.EnsureCatalog(ctx)
	require.NoError(t, err)
	require.NoError(t, store.PutSessions(ctx, []persistence.Session{testfixtures.NewSession(testfixtures.WithSessionID("s1"))}))

	sessions := application.NewSessionService(store, store, ids.NextFunc(), clock.NowFunc())
	alerts := application.NewAlertService(store, absence.NewDebouncer(absence.DedupByMessage, 0))
	monitor := application.NewMonitorService(store, store, alerts, sessions, application.MonitorOptions{RecipientID: "u1"}, clock.NowFunc())

	srv := &testServer{monitor: monitor}
	var extractor extraction.Extractor
	if withImport {
		srv.extractor = extractionmocks.NewMockExtractor(gomock.NewController(t))
		extractor = srv.extractor
	}
	importer := application.NewImportService(extractor, store, sessions, ids.NextFunc())

	srv.engine = NewRouter(RouterConfig{
		Board:     NewBoardHandler(monitor, rooms, nil),
		Sessions:  NewSessionHandler(sessions, nil),
		Alerts:    NewAlertHandler(alerts, nil),
		Timetable: NewTimetableHandler(importer, nil),
	})
	return srv
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestBoardEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	rec := srv.do(t, http.MethodGet, "/api/v1/board", "")
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[struct {
		Rooms []struct {
			RoomID    string `json:"roomId"`
			Indicator string `json:"indicator"`
		} `json:"rooms"`
	}](t, rec)
	require.Len(t, board.Rooms, 21)
	assert.Equal(t, "c1", board.Rooms[0].RoomID)
	assert.Equal(t, "awaiting_check_in", board.Rooms[0].Indicator)
	assert.Equal(t, "empty", board.Rooms[1].Indicator)

	rec = srv.do(t, http.MethodGet, "/api/v1/rooms/c1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ACTIVE"`)

	rec = srv.do(t, http.MethodGet, "/api/v1/rooms/c99/status", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorResponse](t, rec).ErrorCode)

	rec = srv.do(t, http.MethodGet, "/api/v1/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[roomsResponse](t, rec).Rooms, 21)
}

func TestLifecycleEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/s1/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	activated := decode[application.ActivatedSession](t, rec)
	assert.True(t, activated.Session.QRCodeGenerated)
	assert.Equal(t, `{"id":"s1","room":"c1","subj":"Intro to CS"}`, activated.QRText)

	rec = srv.do(t, http.MethodGet, "/api/v1/teachers/u2/active", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"QR_ACTIVE"`)

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions/s1/confirm", `{"studentCount":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	failure := decode[errorResponse](t, rec)
	assert.Equal(t, "VALIDATION_FAILED", failure.ErrorCode)
	assert.Contains(t, failure.Errors, "studentCount")

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions/s1/confirm", `{"studentCount":25}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, decode[sessionResponse](t, rec).Session.StudentCount)

	rec = srv.do(t, http.MethodGet, "/api/v1/teachers/u2/active", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/teachers/u2/today", "")
	require.Equal(t, http.StatusOK, rec.Code)
	today := decode[todayResponse](t, rec)
	require.Len(t, today.Sessions, 1)
	assert.Equal(t, "CONFIRMED", string(today.Sessions[0].State))

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions/missing/activate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookAdHocEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions/adhoc",
		`{"teacherId":"u2","teacherName":"Prof. Smith","roomId":"l1","date":"2024-03-04","startTime":"14:00","durationHours":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	booked := decode[application.ActivatedSession](t, rec)
	assert.Equal(t, "adhoc-id-1", booked.Session.ID)
	assert.Equal(t, "17:00", booked.Session.EndTime)

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions/adhoc", `{"teacherId":"u2","roomId":"l1","startTime":"14:00","durationHours":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	failure := decode[errorResponse](t, rec)
	assert.Equal(t, "INVALID_INPUT", failure.ErrorCode)
	assert.Contains(t, failure.Errors, "date")

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions/adhoc",
		`{"teacherId":"u2","roomId":"c99","date":"2024-03-04","startTime":"14:00","durationHours":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Errors, "roomId")

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions/adhoc", `{"teacherId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionAdministrationEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	rec := srv.do(t, http.MethodPost, "/api/v1/sessions",
		`{"day":"Monday","startTime":"09:30","endTime":"10:30","subject":"Physics","roomId":"c1","teacherId":"u3"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ROOM_CONFLICT", decode[errorResponse](t, rec).ErrorCode)

	rec = srv.do(t, http.MethodPost, "/api/v1/sessions",
		`{"day":"Monday","startTime":"09:30","endTime":"10:30","subject":"Physics","roomId":"c2","teacherId":"u2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[sessionResponse](t, rec)
	assert.Equal(t, "id-1", created.Session.ID)
	require.Len(t, created.Warnings, 1)
	assert.Equal(t, "s1", created.Warnings[0].WithSessionID)

	rec = srv.do(t, http.MethodGet, "/api/v1/sessions?day=Monday", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[sessionsResponse](t, rec)
	assert.Len(t, listed.Sessions, 2)
	assert.Len(t, listed.Warnings, 1)

	rec = srv.do(t, http.MethodPut, "/api/v1/sessions/id-1",
		`{"day":"Tuesday","startTime":"09:30","endTime":"10:30","subject":"Physics","roomId":"c2","teacherId":"u2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[sessionResponse](t, rec).Warnings)

	rec = srv.do(t, http.MethodPut, "/api/v1/sessions/id-1", `{"day":"Funday"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Errors, "day")

	rec = srv.do(t, http.MethodDelete, "/api/v1/sessions/id-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(t, http.MethodDelete, "/api/v1/sessions/id-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertsEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	_, err := srv.monitor.Sweep(context.Background(), testfixtures.At(0, "09:25"))
	require.NoError(t, err)

	rec := srv.do(t, http.MethodGet, "/api/v1/alerts/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	alerts := decode[alertsResponse](t, rec)
	require.Len(t, alerts.Alerts, 1)
	assert.Equal(t, "absent-s1", alerts.Alerts[0].ID)
	assert.Equal(t, persistence.SeverityCritical, alerts.Alerts[0].Severity)

	rec = srv.do(t, http.MethodGet, "/api/v1/alerts/u7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alerts":[]}`, rec.Body.String())
}

func multipartUpload(t *testing.T, image []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if image != nil {
		part, err := writer.CreateFormFile("image", "timetable.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timetable/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestTimetableImportEndpoint(t *testing.T) {
	t.Parallel()

	teacher := map[string]string{"teacherId": "u2", "teacherName": "Prof. Smith"}

	t.Run("imports rows", func(t *testing.T) {
		srv := newTestServer(t, true)
		srv.extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, image extraction.Image) ([]extraction.Row, error) {
				assert.Equal(t, []byte("png-bytes"), image.Data)
				return []extraction.Row{{Day: "Friday", StartTime: "10:00", EndTime: "11:00", Subject: "Biology", RoomName: "Lab 2"}}, nil
			})

		rec := httptest.NewRecorder()
		srv.engine.ServeHTTP(rec, multipartUpload(t, []byte("png-bytes"), teacher))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		imported := decode[importResponse](t, rec)
		assert.Equal(t, 1, imported.Imported)
		assert.Equal(t, "auto-id-1", imported.Sessions[0].ID)
		assert.Equal(t, "l2", imported.Sessions[0].RoomID)
	})

	t.Run("collaborator failure is a bad gateway", func(t *testing.T) {
		srv := newTestServer(t, true)
		srv.extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, errors.New("503 from upstream"))

		rec := httptest.NewRecorder()
		srv.engine.ServeHTTP(rec, multipartUpload(t, []byte("png-bytes"), teacher))
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "UPSTREAM_FAILED", decode[errorResponse](t, rec).ErrorCode)
	})

	t.Run("missing file", func(t *testing.T) {
		srv := newTestServer(t, true)

		rec := httptest.NewRecorder()
		srv.engine.ServeHTTP(rec, multipartUpload(t, nil, teacher))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		srv := newTestServer(t, false)

		rec := httptest.NewRecorder()
		srv.engine.ServeHTTP(rec, multipartUpload(t, []byte("png-bytes"), teacher))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "IMPORT_DISABLED", decode[errorResponse](t, rec).ErrorCode)
	})
}

func TestTimetableExportEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	rec := srv.do(t, http.MethodGet, "/api/v1/timetable/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "timetable_20240304.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := newTestServer(t, false).do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
