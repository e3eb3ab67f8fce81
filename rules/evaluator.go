// Package rules decides which conditional baseline blocks apply to a launch.
// Expressions see three variables: platform, app and env (a string map).
package rules

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Engine names accepted by NewEvaluator.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
)

// ErrUnknownEngine indicates NewEvaluator was given an unsupported engine name.
var ErrUnknownEngine = errors.New("rules: unknown engine")

// Context is the data a rule is evaluated against.
type Context struct {
	Platform string
	App      string
	Env      map[string]string
}

func (c Context) withDefaultMaps() Context {
	if c.Env == nil {
		c.Env = map[string]string{}
	}
	return c
}

// Evaluator evaluates boolean rule expressions.
type Evaluator interface {
	Evaluate(ctx Context, expression string) (bool, error)
}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewEvaluator returns the evaluator for engine. An empty engine selects expr.
// cache may be nil.
func NewEvaluator(engine string, cache ProgramCache) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cache)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cache)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// MemoryCache is a ProgramCache backed by a map. It is safe for concurrent use.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]any
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: map[string]any{}}
}

func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.store[key]
	return value, ok
}

func (c *MemoryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = value
}

// Len returns the number of cached programs.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
