package rules

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type ruleCase struct {
	Name    string `json:"name"`
	Context struct {
		Platform string            `json:"platform"`
		App      string            `json:"app"`
		Env      map[string]string `json:"env"`
	} `json:"context"`
	Expr   string `json:"expr"`
	CEL    string `json:"cel"`
	Expect bool   `json:"expect"`
}

type ruleFixture struct {
	Description string     `json:"description"`
	Cases       []ruleCase `json:"cases"`
}

func loadRuleFixture(t *testing.T) ruleFixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "rules_cases.json"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	var fx ruleFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal fixture: %v", err)
	}
	return fx
}

var evaluatorFactories = []struct {
	name       string
	new        func(cache ProgramCache) Evaluator
	expression func(ruleCase) string
}{
	{
		name:       EngineExpr,
		new:        func(cache ProgramCache) Evaluator { return NewExprEvaluator(ExprWithProgramCache(cache)) },
		expression: func(tc ruleCase) string { return tc.Expr },
	},
	{
		name:       EngineCEL,
		new:        func(cache ProgramCache) Evaluator { return NewCELEvaluator(CELWithProgramCache(cache)) },
		expression: func(tc ruleCase) string { return tc.CEL },
	},
}

func TestEvaluatorsFromFixtures(t *testing.T) {
	fx := loadRuleFixture(t)
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil)
			for _, tc := range fx.Cases {
				tc := tc
				t.Run(tc.Name, func(t *testing.T) {
					ctx := Context{Platform: tc.Context.Platform, App: tc.Context.App, Env: tc.Context.Env}
					got, err := evaluator.Evaluate(ctx, factory.expression(tc))
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if got != tc.Expect {
						t.Fatalf("expected %v, got %v", tc.Expect, got)
					}
				})
			}
		})
	}
}

func TestEvaluatorProgramCache(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			cache := &countingCache{}
			evaluator := factory.new(cache)
			for i := 0; i < 3; i++ {
				if _, err := evaluator.Evaluate(Context{Platform: "android"}, `platform == "android"`); err != nil {
					t.Fatalf("unexpected error on iteration %d: %v", i, err)
				}
			}
			if cache.misses != 1 || cache.hits != 2 {
				t.Fatalf("expected 1 miss and 2 hits, got %d and %d", cache.misses, cache.hits)
			}
		})
	}
}

func TestEvaluatorErrors(t *testing.T) {
	cases := map[string]string{
		"empty":    "",
		"syntax":   "platform ==",
		"non bool": "platform",
	}
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil)
			for name, expression := range cases {
				_, err := evaluator.Evaluate(Context{Platform: "android"}, expression)
				var evalErr *EvaluationError
				if !errors.As(err, &evalErr) {
					t.Fatalf("%s: expected EvaluationError, got %v", name, err)
				}
				if evalErr.Engine != factory.name {
					t.Fatalf("%s: expected engine %q, got %q", name, factory.name, evalErr.Engine)
				}
				if evalErr.Expr != expression {
					t.Fatalf("%s: expected expression metadata %q, got %q", name, expression, evalErr.Expr)
				}
			}
		})
	}
}

func TestNewEvaluatorSelectsEngine(t *testing.T) {
	for _, engine := range []string{"", "expr", " CEL "} {
		evaluator, err := NewEvaluator(engine, NewMemoryCache())
		if err != nil || evaluator == nil {
			t.Fatalf("engine %q: unexpected error %v", engine, err)
		}
	}
	if _, err := NewEvaluator("js", nil); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))
	if _, err := evaluator.Evaluate(Context{}, `app == ""`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one cached program, got %d", cache.Len())
	}
	var zero MemoryCache
	zero.Set("k", 1)
	if value, ok := zero.Get("k"); !ok || value != 1 {
		t.Fatalf("zero value cache should be usable")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: EngineExpr, Err: base}

	err := wrapEvaluationError(EngineCEL, "rule", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != EngineExpr {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if wrapEvaluationError(EngineExpr, "x", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

type countingCache struct {
	store  map[string]any
	hits   int
	misses int
}

func (c *countingCache) Get(key string) (any, bool) {
	value, ok := c.store[key]
	if ok {
		c.hits++
		return value, true
	}
	c.misses++
	return nil, false
}

func (c *countingCache) Set(key string, value any) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = value
}
