package core

import (
	"context"
	"time"
)

// Record is one stored document as a mapping of field name to value.
// Values are whatever the store decoded: strings, float64, bool, nil,
// nested maps, or a Timestamp for the server-managed time fields.
type Record map[string]any

// Timestamp is a platform timestamp: whole seconds since the Unix epoch.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
}

// TimestampOf converts t to a Timestamp, truncating sub-second precision.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix()}
}

// Time returns the timestamp as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, 0).UTC()
}

// Reserved record fields managed by the store.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Caller identifies who invoked an operation. The zero value is an
// anonymous caller.
type Caller struct {
	UID   string
	Email string
}

// Authenticated reports whether the caller carries an identity.
func (c Caller) Authenticated() bool {
	return c.UID != ""
}

// RecordSource supplies a caller's records for one collection, already
// scoped to the owner and ordered per the collection definition.
type RecordSource interface {
	Fetch(ctx context.Context, ownerID string, collection CollectionKey) ([]Record, error)
}

// DocumentStore is a RecordSource that can also modify records.
type DocumentStore interface {
	RecordSource

	// Create stores fields as a new record and returns its ID.
	Create(ctx context.Context, ownerID string, collection CollectionKey, fields Record) (string, error)

	// Update merges fields into an existing record and bumps updatedAt.
	Update(ctx context.Context, ownerID string, collection CollectionKey, id string, fields Record) error

	// Delete removes a record.
	Delete(ctx context.Context, ownerID string, collection CollectionKey, id string) error

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}

// Address is an e-mail address with an optional display name.
type Address struct {
	Email string
	Name  string
}

// Attachment is one file attached to an outbound e-mail.
// Content is the base64 encoding of the file bytes.
type Attachment struct {
	Filename    string
	Content     string
	Type        string
	Disposition string
}

// EmailMessage is a single outbound e-mail.
type EmailMessage struct {
	To          string
	From        Address
	Subject     string
	HTML        string
	Attachments []Attachment
}

// EmailSender delivers outbound e-mail.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// ExportResult is returned to the caller after a successful export.
type ExportResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Summary ExportSummary `json:"summary"`
}
