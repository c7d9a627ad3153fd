// Package websocket streams maze sessions to browser renderers.
//
// A central Hub owns every connection. Clients subscribe to one session by
// passing ?session=<id> when they connect, and only receive messages of
// that session. Each client has a read goroutine that keeps the connection
// alive and a write goroutine that drains its send queue.
//
// The Hub implements service.EventPublisher, so the service layer pushes
// run activity into it directly:
//
//	{"session_id":"...","event":"cell","data":{"x":3,"y":1,"tag":"visited"}}
//	{"session_id":"...","event":"run_started","data":{"kind":"solve",...}}
//	{"session_id":"...","event":"run_finished","data":{"result":{...}}}
//	{"session_id":"...","event":"state_update","state":{"rows":[...],...}}
//
// Several queued messages may share one frame, separated by newlines.
// A client that cannot keep up with a run's cell events is disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	svc := service.NewMazeService(sessions, configs, hub)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
