package shield

import "database/sql"

// Schema defines the rate_limits table read by RateLimiter. The seeded
// rows throttle credential guessing on the auth endpoints; operators
// tune or add rows at runtime, the reloader picks them up.
const Schema = `
CREATE TABLE IF NOT EXISTS rate_limits (
    endpoint       TEXT PRIMARY KEY,
    max_requests   INTEGER NOT NULL DEFAULT 60,
    window_seconds INTEGER NOT NULL DEFAULT 60,
    enabled        INTEGER NOT NULL DEFAULT 1
);

INSERT OR IGNORE INTO rate_limits (endpoint, max_requests, window_seconds) VALUES
    ('POST /api/auth/login', 10, 60),
    ('POST /api/auth/register', 5, 60);
`

// Init creates and seeds the rate_limits table if needed.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
