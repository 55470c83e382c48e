// Package websocket pushes live game updates to observers of a session.
//
// A central Hub tracks clients per session ID (case-insensitive). Each
// connection gets a write goroutine that batches queued messages and sends
// pings, and a read goroutine that only watches for the peer going away.
//
// Outgoing messages are JSON:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//	{"session_id": "a1b2", "event": "steps", "game_state": {...}, "data": [...step records...]}
//	{"session_id": "a1b2", "event": "game_over", "data": {...outcome...}}
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Clients whose send buffer fills up are dropped. Cancelling the context
// passed to Run disconnects every client.
package websocket
