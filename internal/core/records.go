package core

import (
	"context"
	"fmt"
)

// FieldStockLevel is added to ingredient records returned by ListRecords.
const FieldStockLevel = "stockLevel"

func (s *Service) collection(caller Caller, key CollectionKey) (CollectionDefinition, error) {
	if !caller.Authenticated() {
		return CollectionDefinition{}, ErrUnauthenticated
	}
	def, ok := GetCollection(key)
	if !ok {
		return CollectionDefinition{}, fmt.Errorf("%w: %s", ErrUnknownCollection, key)
	}
	return def, nil
}

// ListRecords returns the caller's records in the collection's order.
// Ingredients carry a computed stockLevel.
func (s *Service) ListRecords(ctx context.Context, caller Caller, key CollectionKey) ([]Record, error) {
	def, err := s.collection(caller, key)
	if err != nil {
		return nil, err
	}

	records, err := s.store.Fetch(ctx, caller.UID, def.Key)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", def.Key, err)
	}

	if def.Key == Ingredients {
		for i, rec := range records {
			withLevel := make(Record, len(rec)+1)
			for k, v := range rec {
				withLevel[k] = v
			}
			withLevel[FieldStockLevel] = StockLevel(Number(rec, "stock"), DefaultMinStock)
			records[i] = withLevel
		}
	}
	return records, nil
}

// CreateRecord stores fields as a new record owned by the caller and
// returns its ID. Server-managed fields in the payload are ignored.
func (s *Service) CreateRecord(ctx context.Context, caller Caller, key CollectionKey, fields Record) (string, error) {
	def, err := s.collection(caller, key)
	if err != nil {
		return "", err
	}
	if fields == nil {
		return "", ErrInvalidRecord
	}

	id, err := s.store.Create(ctx, caller.UID, def.Key, userFields(fields))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", def.Key, err)
	}
	return id, nil
}

// UpdateRecord merges fields into one of the caller's records.
func (s *Service) UpdateRecord(ctx context.Context, caller Caller, key CollectionKey, id string, fields Record) error {
	def, err := s.collection(caller, key)
	if err != nil {
		return err
	}
	if id == "" || fields == nil {
		return ErrInvalidRecord
	}

	if err := s.store.Update(ctx, caller.UID, def.Key, id, userFields(fields)); err != nil {
		return fmt.Errorf("update %s %s: %w", def.Key, id, err)
	}
	return nil
}

// DeleteRecord removes one of the caller's records.
func (s *Service) DeleteRecord(ctx context.Context, caller Caller, key CollectionKey, id string) error {
	def, err := s.collection(caller, key)
	if err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidRecord
	}

	if err := s.store.Delete(ctx, caller.UID, def.Key, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", def.Key, id, err)
	}
	return nil
}

// Summary computes the export summary for the caller without sending
// anything.
func (s *Service) Summary(ctx context.Context, caller Caller) (ExportSummary, error) {
	if !caller.Authenticated() {
		return ExportSummary{}, ErrUnauthenticated
	}

	defs := Collections()
	records, err := s.fetchAll(ctx, caller.UID, defs)
	if err != nil {
		return ExportSummary{}, err
	}

	byKey := make(map[CollectionKey][]Record, len(defs))
	for i, def := range defs {
		byKey[def.Key] = records[i]
	}
	return Summarize(byKey[MealPlans], byKey[Ingredients], byKey[Feedback], s.now()), nil
}

// Ping reports whether the record store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func userFields(fields Record) Record {
	out := make(Record, len(fields))
	for k, v := range fields {
		switch k {
		case FieldID, FieldCreatedAt, FieldUpdatedAt, FieldStockLevel:
			continue
		}
		out[k] = v
	}
	return out
}
