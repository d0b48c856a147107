package store

// Schema is the PostgreSQL DDL backing the durable store implementations.
// Integration tests apply it against throwaway containers; deployments run it
// through their own migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS clients (
	client_id      TEXT PRIMARY KEY,
	secret_hash    TEXT NOT NULL DEFAULT '',
	name           TEXT NOT NULL,
	allowed_grants TEXT[] NOT NULL,
	redirect_uris  TEXT[] NOT NULL,
	allowed_scopes TEXT[] NOT NULL,
	claims         JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	claims        JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS auth_code_grants (
	code                  TEXT PRIMARY KEY,
	client_id             TEXT NOT NULL,
	user_id               TEXT NOT NULL,
	redirect_uri          TEXT NOT NULL,
	scopes                TEXT[] NOT NULL,
	nonce                 TEXT NOT NULL DEFAULT '',
	code_challenge        TEXT NOT NULL DEFAULT '',
	code_challenge_method TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMPTZ NOT NULL,
	expires_at            TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS auth_code_grants_expires_at_idx ON auth_code_grants (expires_at);

CREATE TABLE IF NOT EXISTS refresh_token_grants (
	token      TEXT PRIMARY KEY,
	client_id  TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	scopes     TEXT[] NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS refresh_token_grants_expires_at_idx ON refresh_token_grants (expires_at);
`
