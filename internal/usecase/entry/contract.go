package entry

import (
	"context"

	domentry "github.com/kailas-cloud/stranalyzer/internal/domain/entry"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
)

// Repository defines the storage contract for stored strings.
type Repository interface {
	Create(ctx context.Context, e *domentry.Entry) error
	Get(ctx context.Context, id string) (domentry.Entry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, expr filter.Expression, offset, limit int) (entries []domentry.Entry, total int, err error)
	Count(ctx context.Context, expr filter.Expression) (int, error)
}
