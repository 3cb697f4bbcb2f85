package analysis

import "context"

// Oracle is a stateful evaluation session bound to one engine at a time.
// A session must not be shared between concurrent callers.
type Oracle interface {
	SetPosition(ctx context.Context, pos Position) error
	BestMove(ctx context.Context) (string, error)
	Evaluate(ctx context.Context) (Evaluation, error)
}
