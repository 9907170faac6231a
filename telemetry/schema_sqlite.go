package telemetry

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS position_fixes (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at TEXT NOT NULL,
    trolley     TEXT NOT NULL,
    latitude    REAL NOT NULL,
    longitude   REAL NOT NULL,
    origin      TEXT NOT NULL DEFAULT '',
    destination TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_fixes_trolley_time ON position_fixes(trolley, recorded_at);

CREATE TABLE IF NOT EXISTS transit_events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at TEXT NOT NULL,
    trolley     TEXT NOT NULL,
    state       TEXT NOT NULL,
    location    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transit_trolley_time ON transit_events(trolley, recorded_at);

CREATE TABLE IF NOT EXISTS carriage_links (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at TEXT NOT NULL,
    parent      TEXT NOT NULL,
    child       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_carriage_parent ON carriage_links(parent, recorded_at);
CREATE INDEX IF NOT EXISTS idx_carriage_child ON carriage_links(child, recorded_at);

CREATE TABLE IF NOT EXISTS delivery_records (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at TEXT NOT NULL,
    order_id    TEXT NOT NULL,
    supplier    TEXT NOT NULL DEFAULT '',
    customer    TEXT NOT NULL,
    vehicle     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_delivery_vehicle ON delivery_records(vehicle, customer, recorded_at);

CREATE TABLE IF NOT EXISTS operators (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now'))
);
`
