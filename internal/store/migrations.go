package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS health_checkins (
	id                 TEXT PRIMARY KEY,
	owner_id           TEXT NOT NULL,
	date               TEXT NOT NULL,
	sleep_hours        REAL NOT NULL DEFAULT 0,
	hunger             INTEGER NOT NULL DEFAULT 0,
	soreness           INTEGER NOT NULL DEFAULT 0,
	performance_rating INTEGER NOT NULL DEFAULT 0,
	created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(owner_id, date)
);

CREATE TABLE IF NOT EXISTS skills (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	section    TEXT NOT NULL CHECK(section IN ('planning', 'practicing')),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_checkins_owner ON health_checkins(owner_id);
CREATE INDEX IF NOT EXISTS idx_checkins_owner_date ON health_checkins(owner_id, date);
CREATE INDEX IF NOT EXISTS idx_skills_owner ON skills(owner_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS performance_logs (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	date        TEXT NOT NULL,
	location    TEXT NOT NULL DEFAULT '',
	performance TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_perflogs_owner_date ON performance_logs(owner_id, date);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
