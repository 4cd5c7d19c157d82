package consumption

import (
	"context"
	"log/slog"
	"time"

	"consumelog-backend/lib/eventlog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/consumption")

type Service struct {
	retrievers []RetrieverEntry
	responders []Responder
	// journal is optional, a nil store disables run journaling
	journal *eventlog.Store
}

func NewService(retrievers []RetrieverEntry, responders []Responder, journal *eventlog.Store) Service {
	return Service{
		retrievers: retrievers,
		responders: responders,
		journal:    journal,
	}
}

// Process runs one consumption event through the whole pipeline:
// retrieve, transform, then each responder in order. Responders run
// sequentially because the feed post links to store state that the
// store responder establishes first. Failures before the responder
// loop are fatal and return no results; responder failures come back
// as unsuccessful results.
func (s Service) Process(ctx context.Context, in Input) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("database", string(in.Database)),
		attribute.String("origin", in.Origin),
	)

	retriever, err := SelectRetriever(s.retrievers, in.Origin)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no retriever")
		return nil, err
	}

	slog.InfoContext(ctx, "retrieving metadata", "retriever", retriever.Name(), "origin", in.Origin)
	metadata, err := retriever.Retrieve(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")
		return nil, err
	}

	enriched := in.WithMetadata(metadata)
	attr, err := Transform(enriched, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transform failed")
		return nil, err
	}
	slog.InfoContext(ctx, "transformed input", "name", attr.Name, "score", attr.Score)

	var results []Result
	for _, responder := range s.responders {
		result := responder.Respond(ctx, attr)
		if !result.Success {
			slog.ErrorContext(
				ctx, "responder failed",
				"responder", responder.Name(),
				"message", result.Message,
			)
		} else {
			slog.InfoContext(ctx, "responder succeeded", "responder", responder.Name())
		}
		results = append(results, result)
	}

	s.journalRun(ctx, in, results)

	return results, nil
}

// journalRun is best effort, a broken journal never fails the run.
func (s Service) journalRun(ctx context.Context, in Input, results []Result) {
	if s.journal == nil {
		return
	}

	now := time.Now()
	outcomes := make([]eventlog.Outcome, len(results))
	for i, r := range results {
		outcomes[i] = eventlog.Outcome{
			Origin:    in.Origin,
			Database:  string(in.Database),
			Responder: s.responders[i].Name(),
			Success:   r.Success,
			Message:   r.Message,
			Time:      now,
		}
	}
	err := s.journal.Push(ctx, outcomes)
	if err != nil {
		slog.WarnContext(ctx, "failed to journal run", "err", err)
	}
}
