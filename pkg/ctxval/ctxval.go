// Package ctxval carries a mutable bag of annotations through one request.
// Code deep in the call chain writes to it; middleware reads it back once the
// handler returns.
package ctxval

import (
	"context"
	"fmt"
	"sync"
)

type ctxKey struct{}

var defKey = ctxKey{}

type bag struct {
	m sync.Mutex
	// keys in first-write order
	keys   []string
	values map[string]any
}

// Wrap attaches an empty bag unless ctx already carries one.
func Wrap(ctx context.Context) context.Context {
	if _, ok := getBag(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, defKey, &bag{values: make(map[string]any)})
}

// Annotate records key/value pairs for the request log line. A repeated key
// keeps its position and takes the new value.
func Annotate(ctx context.Context, keysAndValues ...any) {
	b, ok := getBag(ctx)
	if !ok {
		return
	}
	b.m.Lock()
	defer b.m.Unlock()
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		var value any
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		if _, seen := b.values[key]; !seen {
			b.keys = append(b.keys, key)
		}
		b.values[key] = value
	}
}

// Annotations returns the recorded pairs flattened, ready for a sugared logger.
func Annotations(ctx context.Context) []any {
	b, ok := getBag(ctx)
	if !ok {
		return nil
	}
	b.m.Lock()
	defer b.m.Unlock()
	out := make([]any, 0, len(b.keys)*2)
	for _, key := range b.keys {
		out = append(out, key, b.values[key])
	}
	return out
}

func getBag(ctx context.Context) (*bag, bool) {
	b, ok := ctx.Value(defKey).(*bag)
	return b, ok
}
