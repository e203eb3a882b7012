// Package store persists user records in Postgres as JSONB documents.
//
// Every record lives in the user_documents table keyed by owner and
// collection. Record fields are kept in the data column; id, createdAt and
// updatedAt come from their own columns so the server stays authoritative
// for them.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/mealplan/internal/core"
)

// Store is a core.DocumentStore backed by a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store using pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ core.DocumentStore = (*Store)(nil)

const fetchQuery = `
SELECT id::text, data, created_at, updated_at
FROM user_documents
WHERE owner_id = $1 AND collection = $2
ORDER BY %s`

// Fetch returns ownerID's records in collection, ordered per the
// collection definition.
func (s *Store) Fetch(ctx context.Context, ownerID string, collection core.CollectionKey) ([]core.Record, error) {
	def, ok := core.GetCollection(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownCollection, collection)
	}

	order, err := orderClause(def)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(fetchQuery, order), ownerID, string(collection))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var (
			id        string
			data      []byte
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &data, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}

		rec, err := decodeRecord(id, data, createdAt, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", collection, id, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}

	return records, nil
}

// Create inserts fields as a new record and returns its ID.
func (s *Store) Create(ctx context.Context, ownerID string, collection core.CollectionKey, fields core.Record) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidRecord, err)
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_documents (id, owner_id, collection, data)
		VALUES ($1, $2, $3, $4::jsonb)`,
		id.String(), ownerID, string(collection), data,
	)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id.String(), nil
}

// Update merges fields into the record's data and bumps updated_at.
func (s *Store) Update(ctx context.Context, ownerID string, collection core.CollectionKey, id string, fields core.Record) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return core.ErrRecordNotFound
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidRecord, err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE user_documents
		SET data = data || $4::jsonb, updated_at = now()
		WHERE owner_id = $1 AND collection = $2 AND id = $3`,
		ownerID, string(collection), docID.String(), data,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", collection, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, ownerID string, collection core.CollectionKey, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return core.ErrRecordNotFound
	}

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM user_documents
		WHERE owner_id = $1 AND collection = $2 AND id = $3`,
		ownerID, string(collection), docID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

// Ping checks the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// orderClause builds the ORDER BY expression for a collection. Server
// managed fields sort on their columns and anything else on the JSONB
// value. id breaks ties so the order is stable.
func orderClause(def core.CollectionDefinition) (string, error) {
	var expr string
	switch def.OrderBy {
	case core.FieldCreatedAt:
		expr = "created_at"
	case core.FieldUpdatedAt:
		expr = "updated_at"
	case "", core.FieldID:
		expr = "id"
	default:
		if !fieldName.MatchString(def.OrderBy) {
			return "", fmt.Errorf("invalid order field %q for %s", def.OrderBy, def.Key)
		}
		expr = "data->>'" + def.OrderBy + "'"
	}

	dir := "ASC"
	if def.Descending {
		dir = "DESC"
	}
	if expr == "id" {
		return "id " + dir, nil
	}
	return expr + " " + dir + ", id " + dir, nil
}

func decodeRecord(id string, data []byte, createdAt, updatedAt time.Time) (core.Record, error) {
	rec := core.Record{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
	}
	rec[core.FieldID] = id
	rec[core.FieldCreatedAt] = core.TimestampOf(createdAt)
	rec[core.FieldUpdatedAt] = core.TimestampOf(updatedAt)
	return rec, nil
}
