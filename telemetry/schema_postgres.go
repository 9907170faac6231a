package telemetry

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS position_fixes (
    id          BIGSERIAL PRIMARY KEY,
    recorded_at TIMESTAMPTZ NOT NULL,
    trolley     TEXT NOT NULL,
    latitude    DOUBLE PRECISION NOT NULL,
    longitude   DOUBLE PRECISION NOT NULL,
    origin      TEXT NOT NULL DEFAULT '',
    destination TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_fixes_trolley_time ON position_fixes(trolley, recorded_at);

CREATE TABLE IF NOT EXISTS transit_events (
    id          BIGSERIAL PRIMARY KEY,
    recorded_at TIMESTAMPTZ NOT NULL,
    trolley     TEXT NOT NULL,
    state       TEXT NOT NULL,
    location    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transit_trolley_time ON transit_events(trolley, recorded_at);

CREATE TABLE IF NOT EXISTS carriage_links (
    id          BIGSERIAL PRIMARY KEY,
    recorded_at TIMESTAMPTZ NOT NULL,
    parent      TEXT NOT NULL,
    child       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_carriage_parent ON carriage_links(parent, recorded_at);
CREATE INDEX IF NOT EXISTS idx_carriage_child ON carriage_links(child, recorded_at);

CREATE TABLE IF NOT EXISTS delivery_records (
    id          BIGSERIAL PRIMARY KEY,
    recorded_at TIMESTAMPTZ NOT NULL,
    order_id    TEXT NOT NULL,
    supplier    TEXT NOT NULL DEFAULT '',
    customer    TEXT NOT NULL,
    vehicle     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_delivery_vehicle ON delivery_records(vehicle, customer, recorded_at);

CREATE TABLE IF NOT EXISTS operators (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
