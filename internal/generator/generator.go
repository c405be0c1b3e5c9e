// Package generator wraps the external content generator. Clients only do
// the API call itself; cross-cutting concerns (retries, logging) are layered
// on with Middleware so each wrapper stays single-purpose.
package generator

import (
	"context"
	"errors"
	"fmt"
)

// Client is the single operation consumed from the generator collaborator.
// The returned text is raw wire output: tagged file blocks or a JSON patch
// plan, possibly malformed — callers parse defensively.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// ErrEmptyResponse reports a generation that produced no text at all.
var ErrEmptyResponse = errors.New("generator: empty response")

// PermanentError marks failures that retrying cannot fix (bad credentials,
// invalid model, content policy).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent generator error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// Middleware decorates a Client.
type Middleware func(Client) Client

// Chain applies middlewares outermost-first.
func Chain(c Client, mws ...Middleware) Client {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}
