package answer

import "context"

// Retriever assembles the context block for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (string, error)
}

// Generator produces the final answer from retrieved context and the query.
type Generator interface {
	Generate(ctx context.Context, contextBlock, query string) (string, error)
}
