// Package shield provides HTTP security middleware for the whiteboard
// service: security headers, request body limits and per-IP rate
// limiting backed by a SQLite rules table.
//
// Usage:
//
//	r := chi.NewRouter()
//	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
//	r.Use(shield.MaxJSONBody(1 << 20))
//	r.Use(shield.NewRateLimiter(db).Middleware)
package shield
