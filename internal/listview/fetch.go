package listview

import (
	"context"
	"errors"

	"github.com/dentaldesk/dentaldesk/internal/backend"
)

// State is the fetch lifecycle of a collection.
type State string

const (
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateEmpty   State = "empty"
	StateError   State = "error"
)

// Result is what a list page renders: records, an empty state, or a banner.
type Result[T any] struct {
	State   State
	Records []T
	Message string
	Detail  string
}

// Messages are the localized fallbacks used when the server gives no text.
type Messages struct {
	Fallback  string
	Malformed string
}

// Load runs fetch once and classifies the outcome. An empty array is a valid
// success and never an error.
func Load[T any](ctx context.Context, fetch func(context.Context) ([]T, error), msgs Messages) Result[T] {
	records, err := fetch(ctx)
	if err != nil {
		return Failed[T](err, msgs)
	}
	if len(records) == 0 {
		return Result[T]{State: StateEmpty, Records: []T{}}
	}
	return Result[T]{State: StateSuccess, Records: records}
}

// Failed builds the error result for err.
func Failed[T any](err error, msgs Messages) Result[T] {
	res := Result[T]{State: StateError, Detail: err.Error()}
	if errors.Is(err, backend.ErrMalformedPayload) {
		res.Message = msgs.Malformed
		if res.Message == "" {
			res.Message = msgs.Fallback
		}
		return res
	}
	res.Message = backend.UserMessage(err, msgs.Fallback)
	return res
}

// Map converts the records of r, keeping state and messages.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := Result[U]{State: r.State, Message: r.Message, Detail: r.Detail}
	if r.Records != nil {
		out.Records = make([]U, 0, len(r.Records))
		for _, rec := range r.Records {
			out.Records = append(out.Records, fn(rec))
		}
	}
	return out
}
