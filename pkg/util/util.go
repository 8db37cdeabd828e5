package util

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func ConvertList[A any, B any](listA []A, convert func(A) B) []B {
	listB := make([]B, len(listA))
	for i, a := range listA {
		listB[i] = convert(a)
	}

	return listB
}

// Ptr returns pointer of any value.
func Ptr[T any](t T) *T {
	return &t
}

// NewTimeoutContext detaches from parent cancellation but keeps its values.
func NewTimeoutContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}

// DefaultBuckets spans sub-millisecond handlers up to slow model calls.
var DefaultBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// GetHistogramVec registers a histogram with the default registry, or returns
// the one registered earlier under the same name.
func GetHistogramVec(name string, labels ...string) (*prometheus.HistogramVec, error) {
	return register(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    name,
		Buckets: DefaultBuckets,
	}, labels))
}

// GetCounterVec is GetHistogramVec for counters.
func GetCounterVec(name, help string, labels ...string) (*prometheus.CounterVec, error) {
	return register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels))
}

func register[C prometheus.Collector](c C) (C, error) {
	err := prometheus.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, fmt.Errorf("register metric: %w", err)
}
