package consumption

import (
	"context"
	"log/slog"

	"consumelog-backend/lib/textutil"

	"go.opentelemetry.io/otel/codes"
)

// Record identifies an existing row in the record store.
type Record struct {
	ID     string
	Origin string
}

// RecordStore is the structured external store the pipeline mirrors
// records into. Implementations translate Attributes into whatever
// payload the store wants; Update must leave the stored creation
// timestamp alone and refresh the last-updated field instead.
type RecordStore interface {
	ResolveCollection(ctx context.Context, name string) (string, error)
	QueryByOrigin(ctx context.Context, collectionID, originSubstring string) ([]Record, error)
	Create(ctx context.Context, collectionID string, attr Attributes) error
	Update(ctx context.Context, recordID string, attr Attributes) error
}

type Syncer struct {
	store RecordStore
}

func NewSyncer(store RecordStore) Syncer {
	return Syncer{store: store}
}

// Upsert mirrors the record into the collection: one query, then
// exactly one write. Matching is by normalized-origin substring, which
// tolerates the store's own url formatting quirks; more than one match
// is a consistency error and nothing is written.
func (s Syncer) Upsert(ctx context.Context, collectionID string, attr Attributes) error {
	ctx, span := tracer.Start(ctx, "Upsert")
	defer span.End()

	key := textutil.NormalizeOrigin(attr.Origin)
	matches, err := s.store.QueryByOrigin(ctx, collectionID, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "origin query failed")
		return err
	}

	if len(matches) > 1 {
		err := AmbiguousOriginError{Origin: key, Matches: len(matches)}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if len(matches) == 0 {
		slog.DebugContext(ctx, "origin not found, creating", "origin", attr.Origin)
		return s.store.Create(ctx, collectionID, attr)
	}

	slog.DebugContext(ctx, "origin exists, updating", "origin", attr.Origin, "record", matches[0].ID)
	return s.store.Update(ctx, matches[0].ID, attr)
}
