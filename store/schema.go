package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    email      TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS notes (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title      TEXT NOT NULL,
    body       TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);

CREATE TABLE IF NOT EXISTS magic_links (
    id          TEXT PRIMARY KEY,
    email       TEXT NOT NULL,
    secret_hash TEXT NOT NULL,
    expires_at  INTEGER NOT NULL,
    used_at     INTEGER,
    issued_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_magic_links_email ON magic_links(email);

CREATE TABLE IF NOT EXISTS contestants (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    position         INTEGER NOT NULL,
    name             TEXT NOT NULL UNIQUE,
    age              INTEGER NOT NULL DEFAULT 0,
    gender           TEXT NOT NULL DEFAULT '',
    hometown         TEXT NOT NULL DEFAULT '',
    country          TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT '',
    tap_out_reason   TEXT NOT NULL DEFAULT '',
    ref              TEXT NOT NULL DEFAULT '',
    image            TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS outbox (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    topic      TEXT NOT NULL,
    payload    BLOB NOT NULL,
    msg_type   TEXT NOT NULL DEFAULT '',
    retries    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at    TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    email      TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notes (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title      TEXT NOT NULL,
    body       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);

CREATE TABLE IF NOT EXISTS magic_links (
    id          TEXT PRIMARY KEY,
    email       TEXT NOT NULL,
    secret_hash TEXT NOT NULL,
    expires_at  BIGINT NOT NULL,
    used_at     BIGINT,
    issued_at   BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_magic_links_email ON magic_links(email);

CREATE TABLE IF NOT EXISTS contestants (
    id               BIGSERIAL PRIMARY KEY,
    position         INTEGER NOT NULL,
    name             TEXT NOT NULL UNIQUE,
    age              INTEGER NOT NULL DEFAULT 0,
    gender           TEXT NOT NULL DEFAULT '',
    hometown         TEXT NOT NULL DEFAULT '',
    country          TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT '',
    tap_out_reason   TEXT NOT NULL DEFAULT '',
    ref              TEXT NOT NULL DEFAULT '',
    image            TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS outbox (
    id         BIGSERIAL PRIMARY KEY,
    topic      TEXT NOT NULL,
    payload    BYTEA NOT NULL,
    msg_type   TEXT NOT NULL DEFAULT '',
    retries    INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;
`
