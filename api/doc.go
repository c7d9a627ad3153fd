// Package api provides the HTTP REST API of the maze server.
//
// Endpoints (all JSON, under /api):
//
// Sessions:
//   - POST   /api/sessions               create a session from a preset {"config_id": "classic"}
//   - GET    /api/sessions               list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}          session info with maze state and preset
//   - DELETE /api/sessions/{id}          stop any run and delete the session
//
// Runs:
//   - POST /api/sessions/{id}/generate  {"algorithm":"prim","width":41,"height":41,"wait":false}
//   - POST /api/sessions/{id}/solve     {"algorithm":"astar","wait":false}
//   - POST /api/sessions/{id}/pause
//   - POST /api/sessions/{id}/resume
//   - POST /api/sessions/{id}/step
//   - POST /api/sessions/{id}/cancel
//   - POST /api/sessions/{id}/speed     {"delay_ms": 25}
//
// A run answers 202 while it is in flight and 200 when "wait" was set.
// Its cell events stream to /ws?session={id}.
//
// Editing:
//   - POST /api/sessions/{id}/start     {"x":1,"y":1}
//   - POST /api/sessions/{id}/end       {"x":29,"y":29}
//   - POST /api/sessions/{id}/cell      {"x":4,"y":5} toggles a wall
//   - GET  /api/sessions/{id}/encode
//   - POST /api/sessions/{id}/decode    {"encoded":"31,31,..."}
//   - GET  /api/sessions/{id}/state     (?format=text for the ASCII view)
//
// Presets and info:
//   - GET  /api/configs, GET /api/configs/{name}, POST /api/configs
//   - GET  /api/algorithms
//   - GET  /api/health
//
// Errors are returned as {"error": "..."}: 404 for unknown sessions and
// presets, 409 when a run is in progress or none is, 400 for bad input.
//
// Usage:
//
//	server := api.NewServer(mazeService, hub)
//	http.ListenAndServe(":8080", server)
package api
