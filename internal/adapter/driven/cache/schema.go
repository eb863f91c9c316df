package cache

const schemaSQL = `
CREATE TABLE IF NOT EXISTS daily_costs (
	provider_id TEXT NOT NULL,
	day         TEXT NOT NULL,
	cost        REAL NOT NULL,
	updated_at  TEXT NOT NULL,
	PRIMARY KEY (provider_id, day)
);

CREATE INDEX IF NOT EXISTS idx_daily_costs_provider ON daily_costs(provider_id);
`
