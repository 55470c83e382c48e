// Package api exposes fogquest sessions over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                     {config_id, seed} -> SessionInfo
//   - GET    /api/sessions?sort=&order=&limit=&config=
//   - GET    /api/sessions/{id}
//   - DELETE /api/sessions/{id}
//
// Play:
//   - POST /api/sessions/{id}/step             {direction} (only when the acting agent is queued)
//   - POST /api/sessions/{id}/run              {max_steps}
//   - GET  /api/sessions/{id}/state
//   - GET  /api/sessions/{id}/history?page=&limit=&order=
//   - GET  /api/sessions/{id}/agents/{idx}/view
//
// Configuration:
//   - GET  /api/configs
//   - GET  /api/configs/{name}
//   - POST /api/configs                        engine.GameConfig as JSON
//
// Results:
//   - GET /api/results?limit=
//   - GET /api/leaderboard?limit=
//
// Misc:
//   - GET /api/health
//   - GET /ws?session={id}                     live step updates, see transport/websocket
//
// Errors are JSON {"error": "...", "code": N}. Missing sessions, configs and
// agents are 404, a finished game is 409, an agent breaking the decision
// contract is 422, bad directions and configs are 400, and results without a
// configured store are 503.
package api
