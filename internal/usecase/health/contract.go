package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CacheChecker checks response cache availability.
type CacheChecker interface {
	Check(ctx context.Context) error
}
