// Package http exposes the edutrack services over a gin router mounted at
// /api/v1.
//
// The router exposes the following endpoints:
//   - GET /board: resolved status of every room, in catalog order.
//   - GET /rooms, GET /rooms/{id}/status: the room catalog and one room's
//     resolved status.
//   - GET /sessions?day=, POST /sessions, PUT /sessions/{id},
//     DELETE /sessions/{id}: timetable administration exchanging the
//     `sessionRequest` payload defined in session_handler.go. Listing and
//     writes include teacher overlap warnings; a room overlap is a 409.
//   - POST /sessions/adhoc, POST /sessions/{id}/activate,
//     POST /sessions/{id}/confirm: the session lifecycle. Activation responses
//     carry the QR payload.
//   - GET /teachers/{id}/today, GET /teachers/{id}/active: a teacher's day
//     view and console selection.
//   - GET /alerts/{recipientId}: alerts for a recipient, newest first.
//   - POST /timetable/import: multipart upload of a timetable photo in the
//     `image` field, with `teacherId` and `teacherName` form fields.
//   - GET /timetable/export: the timetable as an .xlsx workbook.
//   - GET /healthz: liveness.
//
// Errors are rendered as {"error_code","message","errors"}.
package http
