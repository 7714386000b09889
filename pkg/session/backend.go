package session

import "strconv"

// Backend identifies the relational backend a session talks to. It selects
// the driver, the placeholder style, the binary column type, and the staging
// population strategy used by higher layers.
type Backend int

const (
	// BackendPostgres is a postgres-like backend reached through the pgx
	// database/sql driver.
	BackendPostgres Backend = iota
	// BackendSQLite is a sqlite-like backend reached through the pure-Go
	// modernc driver.
	BackendSQLite
)

// String returns the configuration name of the backend.
func (b Backend) String() string {
	switch b {
	case BackendPostgres:
		return "postgres"
	case BackendSQLite:
		return "sqlite"
	default:
		return "backend(" + strconv.Itoa(int(b)) + ")"
	}
}

// Placeholder returns the positional parameter marker for the i-th (1-based)
// bound value in a statement.
func (b Backend) Placeholder(i int) string {
	if b == BackendPostgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Placeholders returns n comma-separated markers starting at position start.
func (b Backend) Placeholders(start, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, b.Placeholder(start+i)...)
	}
	return string(out)
}

// BinaryType returns the backend's native binary column type, substituted for
// the schema-level binary placeholder at DDL-generation time.
func (b Backend) BinaryType() string {
	if b == BackendPostgres {
		return "BYTEA"
	}
	return "BLOB"
}
