// Package docstore persists item records as JSON documents in SQLite,
// modeling the hierarchical users/{owner}/items/{uid} collection layout.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"salvagedb/pkg/auth"
	"salvagedb/pkg/log"
)

// Store manages user and item documents in SQLite.
type Store struct {
	db    *sql.DB
	admin string
	mu    sync.RWMutex
}

// ItemRow is one streamed item with its position in the hierarchy.
type ItemRow struct {
	Owner string
	UID   string
	Doc   map[string]any
}

// NewStore opens (creating if needed) the document database at dbPath.
// adminID is the identity whose writes are stamped with admin access.
func NewStore(dbPath, adminID string) (*Store, error) {
	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrDatabaseError, err)
	}

	ctx := context.Background()

	// Enable foreign keys
	if _, err := database.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to enable foreign keys: %w", ErrDatabaseError, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := database.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrDatabaseError, err)
	}

	store := &Store{db: database, admin: auth.Normalize(adminID)}
	if err := store.initialize(); err != nil {
		_ = database.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(context.Background(), Schema)
	if err != nil {
		return fmt.Errorf("%w: failed to initialize schema: %w", ErrDatabaseError, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) accessFor(ownerID string) auth.Access {
	if s.admin != "" && auth.Normalize(ownerID) == s.admin {
		return auth.AccessAdmin
	}
	return auth.AccessUser
}

// SetItem writes (or fully overwrites) users/{ownerID}/items/{uid}. The
// owning user's access level is (re)written on every set, not just the first.
// Overwriting a uid owned by a different user moves the item to ownerID;
// last write wins.
func (s *Store) SetItem(ctx context.Context, ownerID, uid string, doc map[string]any) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: failed to serialize document: %w", ErrDatabaseError, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, access, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET access = excluded.access, updated_at = excluded.updated_at`,
		ownerID, string(s.accessFor(ownerID)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (uid, owner_id, doc, created_at, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT(uid) DO UPDATE SET
		 owner_id = excluded.owner_id,
		 doc = excluded.doc,
		 updated_at = excluded.updated_at`,
		uid, ownerID, string(docJSON),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	log.Info().Str("owner", ownerID).Str("uid", uid).Msg("Item document written")
	return nil
}

// GetItem retrieves the document at users/{ownerID}/items/{uid}.
func (s *Store) GetItem(ctx context.Context, ownerID, uid string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM items WHERE uid = ? AND owner_id = ?`,
		uid, ownerID,
	).Scan(&docJSON)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse document: %w", ErrDatabaseError, err)
	}
	return doc, nil
}

// UpdateItem merges partial fields into an existing document. The user's
// access level is not touched. Returns ErrItemNotFound when there is no
// document to merge into.
func (s *Store) UpdateItem(ctx context.Context, ownerID, uid string, partial map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM items WHERE uid = ? AND owner_id = ?`,
		uid, ownerID,
	).Scan(&docJSON)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return fmt.Errorf("%w: failed to parse document: %w", ErrDatabaseError, err)
	}
	for k, v := range partial {
		doc[k] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: failed to serialize document: %w", ErrDatabaseError, err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE items SET doc = ?, updated_at = CURRENT_TIMESTAMP WHERE uid = ? AND owner_id = ?`,
		string(merged), uid, ownerID,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	log.Info().Str("owner", ownerID).Str("uid", uid).Msg("Item document merged")
	return nil
}

// DeleteItem removes the document at users/{ownerID}/items/{uid}.
func (s *Store) DeleteItem(ctx context.Context, ownerID, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE uid = ? AND owner_id = ?`,
		uid, ownerID,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	if rowsAffected == 0 {
		return ErrItemNotFound
	}

	log.Info().Str("owner", ownerID).Str("uid", uid).Msg("Item document deleted")
	return nil
}

// GetAccess returns the recorded access level of a user node.
func (s *Store) GetAccess(ctx context.Context, ownerID string) (auth.Access, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var access string
	err := s.db.QueryRowContext(ctx, `SELECT access FROM users WHERE id = ?`, ownerID).Scan(&access)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.AccessUser, nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return auth.Access(access), nil
}

// ListOwners lists every user id that has written at least once.
func (s *Store) ListOwners(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer func() { _ = rows.Close() }()

	var owners []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseError, scanErr)
		}
		owners = append(owners, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return owners, nil
}

// StreamItems walks every owner's items in owner/uid order and returns them
// as flattened rows.
func (s *Store) StreamItems(ctx context.Context) ([]ItemRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT owner_id, uid, doc FROM items ORDER BY owner_id, uid`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	defer func() { _ = rows.Close() }()

	var items []ItemRow
	for rows.Next() {
		var (
			row     ItemRow
			docJSON string
		)
		if scanErr := rows.Scan(&row.Owner, &row.UID, &docJSON); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrDatabaseError, scanErr)
		}
		if err := json.Unmarshal([]byte(docJSON), &row.Doc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse document: %w", ErrDatabaseError, err)
		}
		items = append(items, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseError, err)
	}
	return items, nil
}
