package core

import (
	"time"
)

// DefaultExportTimeout bounds one export from fetch to delivery.
const DefaultExportTimeout = 60 * time.Second

// ServiceConfig holds the export settings a Service needs.
type ServiceConfig struct {
	// From is the sender on export e-mails.
	From Address

	// Location is the zone for dates shown to the user. Nil means UTC.
	Location *time.Location

	// ExportTimeout bounds one export. Zero means DefaultExportTimeout.
	ExportTimeout time.Duration

	// Limiter caps concurrent exports. Nil means no limit.
	Limiter *ExportLimiter

	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// Service runs exports and record operations for authenticated callers.
type Service struct {
	store  DocumentStore
	sender EmailSender

	from     Address
	location *time.Location
	timeout  time.Duration
	limiter  *ExportLimiter
	now      func() time.Time
}

// NewService wires a Service over store and sender.
func NewService(store DocumentStore, sender EmailSender, cfg ServiceConfig) *Service {
	s := &Service{
		store:    store,
		sender:   sender,
		from:     cfg.From,
		location: cfg.Location,
		timeout:  cfg.ExportTimeout,
		limiter:  cfg.Limiter,
		now:      cfg.Now,
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.timeout <= 0 {
		s.timeout = DefaultExportTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Limiter returns the export limiter, nil when exports are unbounded.
func (s *Service) Limiter() *ExportLimiter {
	return s.limiter
}
