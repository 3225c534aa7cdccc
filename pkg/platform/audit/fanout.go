package audit

import (
	"context"
	"log/slog"

	id "vouch/pkg/domain"
)

// Appender is the minimal sink contract for secondary fan-out targets
// (redis, postgres, kafka) that never serve reads.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// FanoutStore appends to a primary store and mirrors every event to
// best-effort secondary sinks. The primary append decides success; sink
// failures are logged and never fail the mutation they record.
type FanoutStore struct {
	primary Store
	sinks   []Appender
	log     *slog.Logger
}

func NewFanoutStore(primary Store, log *slog.Logger, sinks ...Appender) *FanoutStore {
	if log == nil {
		log = slog.Default()
	}
	return &FanoutStore{primary: primary, sinks: sinks, log: log}
}

func (s *FanoutStore) Append(ctx context.Context, event Event) error {
	if err := s.primary.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range s.sinks {
		if err := sink.Append(ctx, event); err != nil {
			s.log.Warn("audit sink append failed",
				"action", event.Action,
				"seq", event.Seq.String(),
				"error", err,
			)
		}
	}
	return nil
}

func (s *FanoutStore) ListByPrincipal(ctx context.Context, principal id.Principal) ([]Event, error) {
	return s.primary.ListByPrincipal(ctx, principal)
}

func (s *FanoutStore) ListAll(ctx context.Context) ([]Event, error) {
	return s.primary.ListAll(ctx)
}
