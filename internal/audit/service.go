package audit

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Default configuration values
const (
	DefaultRetentionDays = 90
	DefaultQueryLimit    = 100
	MaxQueryLimit        = 1000
	pruneSchedule        = "@daily"
)

// Service provides audit log management functionality.
type Service struct {
	logger            *log.Logger
	repo              *Repository
	retentionDays     int
	defaultQueryLimit int
	maxQueryLimit     int
	cron              *cron.Cron
}

// NewService creates a new audit service.
// Accepts a DBPair for optimal SQLite concurrency with separate reader/writer pools.
func NewService(dbPair DBPair, retentionDays int, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}

	return &Service{
		logger:            logger,
		repo:              NewRepository(dbPair),
		retentionDays:     retentionDays,
		defaultQueryLimit: DefaultQueryLimit,
		maxQueryLimit:     MaxQueryLimit,
		cron:              cron.New(),
	}
}

// RecordEvent writes a new audit event.
func (s *Service) RecordEvent(input WriteEventInput) (*AuditEvent, error) {
	event, err := s.repo.InsertEvent(input)
	if err != nil {
		return nil, fmt.Errorf("failed to record audit event: %w", err)
	}
	return event, nil
}

// Record writes an audit event and swallows failures. Command handlers use
// this so a broken audit store never fails the request it is describing.
func (s *Service) Record(input WriteEventInput) {
	if _, err := s.RecordEvent(input); err != nil {
		s.logger.Printf("audit record error: %v", err)
	}
}

// QueryEvents retrieves events with filters and pagination.
// Clamps limit to maxQueryLimit. Returns: events, total count, hasMore flag, error.
func (s *Service) QueryEvents(filters EventQueryFilters) ([]AuditEvent, int, bool, error) {
	if filters.Limit == 0 {
		filters.Limit = s.defaultQueryLimit
	}
	if filters.Limit > s.maxQueryLimit {
		filters.Limit = s.maxQueryLimit
	}

	events, total, err := s.repo.QueryEvents(filters)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to query audit events: %w", err)
	}

	hasMore := filters.Offset+len(events) < total
	return events, total, hasMore, nil
}

// GetEvent retrieves a single event by ID. Returns nil if not found.
func (s *Service) GetEvent(eventID string) (*AuditEvent, error) {
	return s.repo.GetEvent(eventID)
}

// StartPruneJob schedules the daily prune of expired events and runs an
// initial prune immediately.
func (s *Service) StartPruneJob() {
	s.logger.Printf("Starting audit prune job (schedule: %s, retention: %d days)", pruneSchedule, s.retentionDays)

	if count, err := s.Prune(); err != nil {
		s.logger.Printf("Error pruning audit events on start: %v", err)
	} else if count > 0 {
		s.logger.Printf("Pruned %d audit events on startup", count)
	}

	if _, err := s.cron.AddFunc(pruneSchedule, func() {
		if count, err := s.Prune(); err != nil {
			s.logger.Printf("Error pruning audit events: %v", err)
		} else if count > 0 {
			s.logger.Printf("Pruned %d audit events", count)
		}
	}); err != nil {
		s.logger.Printf("Failed to schedule audit prune: %v", err)
		return
	}
	s.cron.Start()
}

// StopPruneJob stops the background prune job.
func (s *Service) StopPruneJob() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Prune manually triggers pruning, returns count deleted.
func (s *Service) Prune() (int64, error) {
	count, err := s.repo.PruneOldEvents(s.retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit events: %w", err)
	}
	return count, nil
}
