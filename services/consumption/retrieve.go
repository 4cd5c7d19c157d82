package consumption

import (
	"context"
	"strings"
)

// Retriever fetches the origin page of an input and extracts metadata
// from it. One implementation exists per source site family.
type Retriever interface {
	Name() string
	Retrieve(ctx context.Context, in Input) (Metadata, error)
}

// RetrieverEntry binds a retriever to the keyword that selects it. An
// origin url containing the keyword routes to that retriever; entries
// are tried in order.
type RetrieverEntry struct {
	Keyword   string
	Retriever Retriever
}

func SelectRetriever(entries []RetrieverEntry, origin string) (Retriever, error) {
	for _, e := range entries {
		if strings.Contains(origin, e.Keyword) {
			return e.Retriever, nil
		}
	}
	return nil, NoRetrieverError{Origin: origin}
}
