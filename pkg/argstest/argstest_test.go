package argstest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	launchargs "github.com/goliatone/go-launchargs"
)

func TestExpectBaselineMatches(t *testing.T) {
	expected := launchargs.Args{"app": "le", "goo": "gle?", "micro": "soft", "n": 1}
	actual := launchargs.Args{"micro": "soft", "goo": "gle?", "app": "le", "n": 1.0}
	if err := ExpectBaseline(expected, actual); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := ExpectBaseline(nil, launchargs.Args{}); err != nil {
		t.Fatalf("expected nil and empty to match, got %v", err)
	}
}

func TestExpectBaselineMismatchListsBoth(t *testing.T) {
	err := ExpectBaseline(launchargs.Args{"app": "le"}, launchargs.Args{"app": "lo"})
	var precondition *PreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if precondition.Expected != `{"app":"le"}` || precondition.Actual != `{"app":"lo"}` {
		t.Fatalf("unexpected diagnostic: %+v", precondition)
	}
	if !strings.Contains(err.Error(), "Expected: {\"app\":\"le\"}") || !strings.Contains(err.Error(), "Received: {\"app\":\"lo\"}") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestRecordingInvoker(t *testing.T) {
	invoker := &RecordingInvoker{}
	if _, ok := invoker.Last(); ok {
		t.Fatalf("expected no launches yet")
	}
	_ = invoker.Launch(context.Background(), launchargs.LaunchSpec{ID: "1"})
	_ = invoker.Launch(context.Background(), launchargs.LaunchSpec{ID: "2"})

	last, ok := invoker.Last()
	if !ok || last.ID != "2" {
		t.Fatalf("expected last launch 2, got %+v", last)
	}
	if got := len(invoker.Specs()); got != 2 {
		t.Fatalf("expected 2 launches, got %d", got)
	}

	invoker.Err = errors.New("boom")
	if err := invoker.Launch(context.Background(), launchargs.LaunchSpec{}); err == nil {
		t.Fatalf("expected configured error")
	}
}

func TestExpectBaselineComparesNumbersExactly(t *testing.T) {
	err := ExpectBaseline(
		launchargs.Args{"n": int64(9007199254740993)},
		launchargs.Args{"n": int64(9007199254740992)},
	)
	var precondition *PreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("expected PreconditionError for adjacent large integers, got %v", err)
	}
	if precondition.Expected != `{"n":9007199254740993}` {
		t.Fatalf("expected exact digits in diagnostic, got %s", precondition.Expected)
	}

	same := []launchargs.Args{
		{"n": json.Number("9007199254740993"), "f": float32(0.5), "l": []any{uint8(2)}},
		{"n": uint64(9007199254740993), "f": 0.5, "l": []int{2}},
	}
	if err := ExpectBaseline(same[0], same[1]); err != nil {
		t.Fatalf("expected equal numbers across types to match, got %v", err)
	}
}

func TestExpectBaselineRejectsDeletionMarkers(t *testing.T) {
	err := ExpectBaseline(launchargs.Args{"a": launchargs.Delete}, launchargs.Args{"a": map[string]any{}})
	if !errors.Is(err, launchargs.ErrDeleteNotAllowed) {
		t.Fatalf("expected ErrDeleteNotAllowed, got %v", err)
	}
	var precondition *PreconditionError
	if errors.As(err, &precondition) {
		t.Fatalf("marker must not be compared as a value")
	}

	err = ExpectBaseline(launchargs.Args{"a": map[string]any{}}, launchargs.Args{"a": launchargs.Delete})
	if !errors.Is(err, launchargs.ErrDeleteNotAllowed) {
		t.Fatalf("expected ErrDeleteNotAllowed for actual marker, got %v", err)
	}
}
