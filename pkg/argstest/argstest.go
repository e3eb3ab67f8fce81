// Package argstest provides helpers for tests that drive launches through a
// launchargs.Launcher.
package argstest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/google/go-cmp/cmp"

	launchargs "github.com/goliatone/go-launchargs"
)

// RecordingInvoker records every launch it receives and returns Err.
type RecordingInvoker struct {
	Err   error
	mu    sync.Mutex
	specs []launchargs.LaunchSpec
}

// Launch implements launchargs.Invoker.
func (r *RecordingInvoker) Launch(_ context.Context, spec launchargs.LaunchSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, spec)
	return r.Err
}

// Specs returns the recorded launches in order.
func (r *RecordingInvoker) Specs() []launchargs.LaunchSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]launchargs.LaunchSpec(nil), r.specs...)
}

// Last returns the most recent launch, reporting false when none happened.
func (r *RecordingInvoker) Last() (launchargs.LaunchSpec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.specs) == 0 {
		return launchargs.LaunchSpec{}, false
	}
	return r.specs[len(r.specs)-1], true
}

// PreconditionError reports that the configured baseline differs from what a
// test expected.
type PreconditionError struct {
	Expected string
	Actual   string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failure: preconfigured launch arguments do not match the expected value.\nExpected: %s\nReceived: %s", e.Expected, e.Actual)
}

// ExpectBaseline compares the expected and actual baselines structurally and
// returns a *PreconditionError listing both when they differ. Numbers compare
// by exact decimal value regardless of their Go type, so 1 and 1.0 are equal
// while 9007199254740993 and 9007199254740992 are not. Deletion markers are
// not baseline values and are reported as errors.
func ExpectBaseline(expected, actual launchargs.Args) error {
	want, err := launchargs.NormalizeArgs(expected, false)
	if err != nil {
		return fmt.Errorf("argstest: expected baseline: %w", err)
	}
	got, err := launchargs.NormalizeArgs(actual, false)
	if err != nil {
		return fmt.Errorf("argstest: actual baseline: %w", err)
	}
	if cmp.Equal(exactNumbers(want), exactNumbers(got), ratComparer) {
		return nil
	}
	return &PreconditionError{Expected: describe(want), Actual: describe(got)}
}

var ratComparer = cmp.Comparer(func(a, b *big.Rat) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

// exactNumbers replaces every finite number with its exact rational value.
// Non-finite floats keep their textual form.
func exactNumbers(value any) any {
	switch typed := value.(type) {
	case launchargs.Args:
		return exactNumbers(map[string]any(typed))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, elem := range typed {
			out[key] = exactNumbers(elem)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, elem := range typed {
			out[i] = exactNumbers(elem)
		}
		return out
	case json.Number:
		return ratFromText(typed.String())
	case float32:
		return ratFromText(strconv.FormatFloat(float64(typed), 'g', -1, 32))
	case float64:
		return ratFromText(strconv.FormatFloat(typed, 'g', -1, 64))
	case int:
		return new(big.Rat).SetInt64(int64(typed))
	case int8:
		return new(big.Rat).SetInt64(int64(typed))
	case int16:
		return new(big.Rat).SetInt64(int64(typed))
	case int32:
		return new(big.Rat).SetInt64(int64(typed))
	case int64:
		return new(big.Rat).SetInt64(typed)
	case uint:
		return new(big.Rat).SetUint64(uint64(typed))
	case uint8:
		return new(big.Rat).SetUint64(uint64(typed))
	case uint16:
		return new(big.Rat).SetUint64(uint64(typed))
	case uint32:
		return new(big.Rat).SetUint64(uint64(typed))
	case uint64:
		return new(big.Rat).SetUint64(typed)
	default:
		return value
	}
}

func ratFromText(text string) any {
	if rat, ok := new(big.Rat).SetString(text); ok {
		return rat
	}
	return text
}

func describe(args launchargs.Args) string {
	if args == nil {
		args = launchargs.Args{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprint(map[string]any(args))
	}
	return string(raw)
}
