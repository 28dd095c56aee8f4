package health

import "context"

// Pinger answers when the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexProbe reports whether the string index is provisioned.
type IndexProbe interface {
	IndexReady(ctx context.Context) (bool, error)
}
