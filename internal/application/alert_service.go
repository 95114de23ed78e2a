package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/edutrack/internal/absence"
	"github.com/example/edutrack/internal/persistence"
)

// AlertService persists absence alerts through the debouncer and serves
// them back per recipient.
type AlertService struct {
	mu        sync.Mutex
	alerts    persistence.AlertRepository
	debouncer absence.Debouncer
	logger    *zap.Logger
}

// NewAlertService wires dependencies for alert operations.
func NewAlertService(alerts persistence.AlertRepository, debouncer absence.Debouncer) *AlertService {
	return NewAlertServiceWithLogger(alerts, debouncer, nil)
}

// NewAlertServiceWithLogger wires dependencies with a specified logger.
func NewAlertServiceWithLogger(alerts persistence.AlertRepository, debouncer absence.Debouncer, logger *zap.Logger) *AlertService {
	return &AlertService{
		alerts:    alerts,
		debouncer: absence.NewDebouncer(debouncer.Mode, debouncer.Window),
		logger:    defaultLogger(logger),
	}
}

func (s *AlertService) loggerWith(ctx context.Context, operation string, fields ...zap.Field) *zap.Logger {
	return serviceLogger(ctx, s.logger, "AlertService", operation, fields...)
}

// Raise stores every intent that is not a recent duplicate, newest first,
// and returns the alerts that were written. Nothing is written when every
// intent is suppressed.
func (s *AlertService) Raise(ctx context.Context, intents []absence.AlertIntent, now time.Time) (added []persistence.Alert, err error) {
	if s == nil {
		return nil, fmt.Errorf("AlertService is nil")
	}
	if len(intents) == 0 {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "Raise", zap.Int("intents", len(intents)))
	defer func() {
		logOutcome(logger, err, "failed to raise alerts", "alerts raised", zap.Int("added", len(added)))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.alerts.ListAlerts(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	merged, added := s.debouncer.Apply(existing, intents, now)
	if len(added) == 0 {
		return nil, nil
	}
	if err = s.alerts.PutAlerts(ctx, merged); err != nil {
		return nil, mapStoreError(err)
	}
	return added, nil
}

// AlertsFor returns the recipient's alerts, newest first.
func (s *AlertService) AlertsFor(ctx context.Context, recipientID string) ([]persistence.Alert, error) {
	if s == nil {
		return nil, fmt.Errorf("AlertService is nil")
	}
	if strings.TrimSpace(recipientID) == "" {
		invalid := &InvalidInputError{}
		invalid.Add("recipientId", "is required")
		return nil, invalid
	}

	alerts, err := s.alerts.ListAlerts(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	out := make([]persistence.Alert, 0)
	for _, alert := range alerts {
		if alert.RecipientID == recipientID {
			out = append(out, alert)
		}
	}
	return out, nil
}
