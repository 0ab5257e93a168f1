package sqlitedb

// Times are stored as epoch milliseconds so exported data round-trips
// without precision loss.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS active_session (
	slot INTEGER PRIMARY KEY CHECK (slot = 1),
	session_id TEXT NOT NULL,
	payload TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	task_name TEXT NOT NULL,
	task_slug TEXT NOT NULL,
	planned_ms INTEGER NOT NULL,
	idle_threshold_ms INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	target_end_at INTEGER NOT NULL,
	ended_at INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	idle_ms INTEGER NOT NULL,
	away_ms INTEGER NOT NULL DEFAULT 0,
	distractions INTEGER NOT NULL,
	score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
	outcome TEXT NOT NULL,
	final_status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_task_slug ON sessions(task_slug);
CREATE TABLE IF NOT EXISTS session_events (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	type TEXT NOT NULL,
	at INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// migrations run in order; index+1 is the schema version they produce.
var migrations = []string{schemaV1}
