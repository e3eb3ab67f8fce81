package rules

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// exprEvaluator executes rule expressions using github.com/expr-lang/expr.
type exprEvaluator struct {
	cache ProgramCache
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx Context, expression string) (bool, error) {
	if expression == "" {
		return false, wrapEvaluationError(EngineExpr, expression, errEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return false, err
	}
	result, err := exprlang.Run(program, environment(ctx.withDefaultMaps()))
	if err != nil {
		return false, wrapEvaluationError(EngineExpr, expression, err)
	}
	matched, ok := result.(bool)
	if !ok {
		return false, wrapEvaluationError(EngineExpr, expression, fmt.Errorf("result %T is not a bool", result))
	}
	return matched, nil
}

func (e *exprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	key := EngineExpr + ":" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(environment(Context{Env: map[string]string{}})),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, wrapEvaluationError(EngineExpr, expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func environment(ctx Context) map[string]any {
	return map[string]any{
		"platform": ctx.Platform,
		"app":      ctx.App,
		"env":      ctx.Env,
	}
}
