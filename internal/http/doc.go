// Package http exposes the attendance kiosk over HTTP.
//
// The router serves the following endpoints:
//   - POST /scans: records a badge scan. Body: {"raw_id","feed"}. Response:
//     {"presentation","feed"}; the feed is owned by the caller and echoed back
//     updated. Unknown ids and debounced scans are 200 responses whose
//     presentation kind is "invalid_id" or "suppressed".
//   - GET /search?q=&field=&limit=: ranked employees with recent shifts.
//     field is one of name, id, email, phone, role, position, department.
//   - GET /employees/{id}: an employee with recent shifts.
//   - PUT /employees/{id}: operator directory import (upsert).
//   - GET /shifts/open: employees currently clocked in.
//   - POST /shifts/sweep?before=YYYY-MM-DD: operator end-of-day sweep.
//   - GET /activity/stream: websocket stream of the recent-activity feed.
//   - GET /healthz: storage reachability.
//
// Operator routes use HTTP basic auth checked against a bcrypt hash. Request
// and response DTOs live alongside their handlers.
package http
