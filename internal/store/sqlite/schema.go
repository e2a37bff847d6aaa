package sqlite

// schema holds the table and index definitions of spec.md §6, created with
// CREATE TABLE/INDEX IF NOT EXISTS at Open time. This module does not run a
// migration tool against versioned migration files — spec.md §1 names the
// migration runner as an external collaborator out of scope for the core;
// the schema itself, however, is fully specified and owned here, following
// the teacher's internal/testutil/db.go embedded-schema-string idiom.
const schema = `
CREATE TABLE IF NOT EXISTS workers (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL CHECK (kind IN ('coding', 'review', 'planning')),
	status TEXT NOT NULL CHECK (status IN (
		'started', 'waiting_review', 'under_review', 'feedback_received',
		'creating_pr', 'completed', 'terminated', 'failed'
	)),
	worktree_path TEXT,
	branch TEXT,
	base_branch TEXT,
	session_name TEXT,
	lm_pid INTEGER,
	tool_server_pid INTEGER,
	issue_number INTEGER,
	system_prompt TEXT,
	parent_id TEXT REFERENCES workers(id),
	pr_number INTEGER,
	pr_url TEXT,
	created_at DATETIME NOT NULL,
	last_activity DATETIME NOT NULL,
	terminated_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_workers_status ON workers(status);
CREATE INDEX IF NOT EXISTS idx_workers_last_activity ON workers(last_activity);

CREATE TABLE IF NOT EXISTS relationships (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_id TEXT NOT NULL REFERENCES workers(id),
	child_id TEXT NOT NULL REFERENCES workers(id),
	kind TEXT NOT NULL CHECK (kind IN ('spawned_review', 'created_fork', 'planning_to_issue')),
	iteration INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	metadata TEXT,
	UNIQUE(parent_id, child_id, kind, iteration)
);

CREATE INDEX IF NOT EXISTS idx_relationships_parent_id ON relationships(parent_id);
CREATE INDEX IF NOT EXISTS idx_relationships_child_id ON relationships(child_id);

CREATE TABLE IF NOT EXISTS tool_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	worker_id TEXT NOT NULL REFERENCES workers(id),
	tool_name TEXT NOT NULL,
	success INTEGER NOT NULL,
	error TEXT,
	metadata TEXT,
	git_commit_hash TEXT,
	status_change TEXT,
	is_status_updating INTEGER NOT NULL,
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tool_events_worker_id ON tool_events(worker_id);
CREATE INDEX IF NOT EXISTS idx_tool_events_timestamp ON tool_events(timestamp);

CREATE TABLE IF NOT EXISTS issues (
	number INTEGER NOT NULL,
	repo_owner TEXT NOT NULL,
	repo_name TEXT NOT NULL,
	title TEXT,
	body TEXT,
	state TEXT,
	labels TEXT,
	created_at DATETIME,
	updated_at DATETIME,
	synced_at DATETIME,
	PRIMARY KEY (number, repo_owner, repo_name)
);

CREATE INDEX IF NOT EXISTS idx_issues_state ON issues(state);

CREATE TABLE IF NOT EXISTS config (
	key TEXT PRIMARY KEY,
	value TEXT,
	encrypted INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL
);
`
