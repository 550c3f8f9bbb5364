package docstore

// Schema contains the SQL statements to create the document database schema.
// The layout mirrors the hierarchical users/{owner}/items/{uid} model: one
// row per user, one row per item with the record held as a JSON document.
// uid is globally unique, not per-owner, so it is the primary key.
const Schema = `
-- Users table: one node per uploader, carrying the access level
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    access     TEXT NOT NULL DEFAULT 'user',
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Items table: one JSON document per submitted component
CREATE TABLE IF NOT EXISTS items (
    uid        TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL,
    doc        TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (owner_id) REFERENCES users(id)
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id);
`
