// Package scheduler runs the periodic maintenance jobs. Currently one job:
// turning soon-expiring contracts into dashboard notifications.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shamba-backend/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// Scheduler owns the cron runner.
type Scheduler struct {
	Store *store.Store
	cron  *cron.Cron

	now func() time.Time
}

func New(st *store.Store) *Scheduler {
	return &Scheduler{Store: st, cron: cron.New()}
}

// Start registers the sweep on the given cron spec (e.g. "0 6 * * *") and
// starts the runner.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if n, err := s.SweepExpiringContracts(context.Background()); err != nil {
			log.Error().Err(err).Msg("Contract expiry sweep failed")
		} else if n > 0 {
			log.Info().Int("notifications", n).Msg("Contract expiry sweep done")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron runner.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// SweepExpiringContracts creates one notification per contract ending within
// the next 30 days. Creation goes through the store, so subscribers see
// notification_created events. Suppression is keyed on the contract
// (supplier + end date), not the exact message: the days-left count changes
// daily and must not resurrect an alert that is already sitting unread.
func (s *Scheduler) SweepExpiringContracts(ctx context.Context) (int, error) {
	contracts, err := s.Store.Contracts.List(ctx)
	if err != nil {
		return 0, err
	}
	notifications, err := s.Store.Notifications.List(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(notifications))
	for _, n := range notifications {
		if !n.Read {
			if key, ok := expiryKeyOf(n.Message); ok {
				seen[key] = true
			}
		}
	}

	today := s.today()
	created := 0
	for _, c := range contracts {
		end, err := time.Parse(dateLayout, c.EndDate)
		if err != nil {
			continue
		}
		daysLeft := int(end.Sub(today).Hours() / 24)
		if daysLeft < 1 || daysLeft > 30 {
			continue
		}
		key := expiryKey(c.SupplierName, c.EndDate)
		if seen[key] {
			continue
		}
		_, err = s.Store.Notifications.Create(ctx, map[string]interface{}{
			"message": fmt.Sprintf("%s (%d days left)", key, daysLeft),
			"level":   "warning",
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func expiryKey(supplier, endDate string) string {
	return fmt.Sprintf("Contract with %s expires on %s", supplier, endDate)
}

// expiryKeyOf recovers the dedupe key from a stored message by stripping the
// varying "(N days left)" suffix.
func expiryKeyOf(message string) (string, bool) {
	i := strings.LastIndex(message, " (")
	if !strings.HasPrefix(message, "Contract with ") || i < 0 {
		return "", false
	}
	return message[:i], true
}

func (s *Scheduler) today() time.Time {
	t := time.Now().UTC()
	if s.now != nil {
		t = s.now().UTC()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
