package rules

import (
	"fmt"
	"sync"

	celgo "github.com/google/cel-go/cel"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

type celEvaluator struct {
	cache ProgramCache

	envOnce sync.Once
	env     *celgo.Env
	envErr  error
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx Context, expression string) (bool, error) {
	if expression == "" {
		return false, wrapEvaluationError(EngineCEL, expression, errEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return false, wrapEvaluationError(EngineCEL, expression, err)
	}
	out, _, err := program.Eval(environment(ctx.withDefaultMaps()))
	if err != nil {
		return false, wrapEvaluationError(EngineCEL, expression, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, wrapEvaluationError(EngineCEL, expression, fmt.Errorf("result %T is not a bool", out.Value()))
	}
	return matched, nil
}

func (e *celEvaluator) loadOrCompile(expression string) (celgo.Program, error) {
	key := EngineCEL + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.celEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, prg)
	}
	return prg, nil
}

func (e *celEvaluator) celEnv() (*celgo.Env, error) {
	e.envOnce.Do(func() {
		e.env, e.envErr = celgo.NewEnv(
			celgo.Variable("platform", celgo.StringType),
			celgo.Variable("app", celgo.StringType),
			celgo.Variable("env", celgo.MapType(celgo.StringType, celgo.StringType)),
		)
	})
	return e.env, e.envErr
}
