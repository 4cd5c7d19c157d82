package consumption

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedInput = errors.New("input database not recognized")
	ErrMissingMetadata   = errors.New("input has no metadata attached")
)

// KindMismatchError reports an input routed to a retriever that wants
// the other variant. Retriever selection is keyword-based, so the match
// is not structurally guaranteed and gets re-checked at the boundary.
type KindMismatchError struct {
	Retriever string
	Database  Database
}

func (e KindMismatchError) Error() string {
	return fmt.Sprintf("retriever %q cannot handle database %q", e.Retriever, e.Database)
}

type NoRetrieverError struct {
	Origin string
}

func (e NoRetrieverError) Error() string {
	return fmt.Sprintf("no metadata retriever implemented for origin %q", e.Origin)
}

// TitleNotFoundError means the scraped page had no title node. A record
// without a title is useless, so this is fatal for the retrieval.
type TitleNotFoundError struct {
	Origin string
}

func (e TitleNotFoundError) Error() string {
	return fmt.Sprintf("title not found at %q", e.Origin)
}

type NotImplementedError struct {
	Type MediaType
}

func (e NotImplementedError) Error() string {
	return fmt.Sprintf("retrieval not implemented for media type %q", e.Type)
}

// AmbiguousOriginError means the origin substring matched more than
// one stored record. Guessing which one to update would corrupt the
// store, so the upsert fails loudly and writes nothing.
type AmbiguousOriginError struct {
	Origin  string
	Matches int
}

func (e AmbiguousOriginError) Error() string {
	return fmt.Sprintf("%d records match origin %q, refusing to guess", e.Matches, e.Origin)
}
