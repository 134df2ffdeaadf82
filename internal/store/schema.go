package store

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  quiz_id TEXT NOT NULL,
  source_file TEXT NOT NULL DEFAULT '',
  total INTEGER NOT NULL,
  correct INTEGER NOT NULL,
  score REAL NOT NULL,
  passed INTEGER NOT NULL,
  elapsed_seconds REAL NOT NULL DEFAULT 0,
  completed_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS attempts_completed_at ON attempts (completed_at)`,
	`CREATE TABLE IF NOT EXISTS attempt_failures (
  attempt_id TEXT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  question_id INTEGER NOT NULL,
  question_text TEXT NOT NULL,
  submitted TEXT NOT NULL,
  display_answer TEXT NOT NULL,
  PRIMARY KEY (attempt_id, position)
)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  quiz_id TEXT NOT NULL,
  source_file TEXT NOT NULL DEFAULT '',
  total INTEGER NOT NULL,
  correct INTEGER NOT NULL,
  score DOUBLE PRECISION NOT NULL,
  passed BOOLEAN NOT NULL,
  elapsed_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
  completed_at BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS attempts_completed_at ON attempts (completed_at)`,
	`CREATE TABLE IF NOT EXISTS attempt_failures (
  attempt_id TEXT NOT NULL REFERENCES attempts(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  question_id INTEGER NOT NULL,
  question_text TEXT NOT NULL,
  submitted TEXT NOT NULL,
  display_answer TEXT NOT NULL,
  PRIMARY KEY (attempt_id, position)
)`,
}
