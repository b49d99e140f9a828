// Package archive reads per-station weather archives. The archive is a
// read-only collaborator: this package only ever issues SELECTs.
package archive

import (
	"context"
	"time"

	"boreas/internal/domain"
)

// Reader is the query capability the export pipeline needs from one
// station's archive.
type Reader interface {
	// Earliest returns the timestamp of the oldest record in the archive.
	Earliest(ctx context.Context) (time.Time, error)

	// Count returns the number of records with start <= timestamp < end.
	Count(ctx context.Context, start, end time.Time) (int, error)

	// Readings returns all records with start <= timestamp < end in
	// ascending timestamp order, projected onto domain.Fields.
	Readings(ctx context.Context, start, end time.Time) ([]domain.Reading, error)

	// Close releases the underlying connection.
	Close() error
}
