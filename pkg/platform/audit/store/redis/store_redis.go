package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "vouch/pkg/domain"
	audit "vouch/pkg/platform/audit"
)

const (
	// Redis key holding the global append-only stream.
	streamKey = "audit:log"
	// Per-principal index key prefix.
	principalKeyPrefix = "audit:principal:"
)

// Store is a Redis-backed audit sink for deployments where multiple readers
// need to tail the event stream. RPUSH keeps append order; the in-process
// store remains the system of record.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

type eventPayload struct {
	Seq       uint64 `json:"seq"`
	Principal string `json:"principal"`
	Action    string `json:"action"`
	Subject   string `json:"subject,omitempty"`
	Decision  string `json:"decision,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func encode(event audit.Event) ([]byte, error) {
	return json.Marshal(eventPayload{
		Seq:       uint64(event.Seq),
		Principal: event.Principal.String(),
		Action:    event.Action,
		Subject:   event.Subject,
		Decision:  event.Decision,
		RequestID: event.RequestID,
	})
}

func decode(raw string) (audit.Event, error) {
	var p eventPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit event: %w", err)
	}
	return audit.Event{
		Seq:       id.LogicalTime(p.Seq),
		Principal: id.Principal(p.Principal),
		Action:    p.Action,
		Subject:   p.Subject,
		Decision:  p.Decision,
		RequestID: p.RequestID,
	}, nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := encode(event)
	if err != nil {
		return err
	}
	// Pipeline the global and per-principal appends so a reader never sees
	// the index ahead of the log.
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, streamKey, payload)
	pipe.RPush(ctx, principalKeyPrefix+event.Principal.String(), payload)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) ListByPrincipal(ctx context.Context, principal id.Principal) ([]audit.Event, error) {
	return s.list(ctx, principalKeyPrefix+principal.String())
}

func (s *Store) ListAll(ctx context.Context) ([]audit.Event, error) {
	return s.list(ctx, streamKey)
}

func (s *Store) list(ctx context.Context, key string) ([]audit.Event, error) {
	raws, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	events := make([]audit.Event, 0, len(raws))
	for _, raw := range raws {
		event, err := decode(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
