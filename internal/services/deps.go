package services

import "context"

// EventPublisher pushes domain events onto the message bus. Implemented by
// pkg/rabbitmq; services treat a nil publisher as "messaging disabled".
type EventPublisher interface {
	PublishJSON(routingKey string, payload interface{}) error
}

// TrailCache holds reconstructed product history payloads keyed by ADS ID.
// Implemented by pkg/historycache; a nil cache disables caching. Writers
// invalidate the key instead of the presentation layer polling for
// freshness.
type TrailCache interface {
	Get(ctx context.Context, adsID string) ([]byte, bool, error)
	Set(ctx context.Context, adsID string, payload []byte) error
	Invalidate(ctx context.Context, adsIDs ...string) error
}
