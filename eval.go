package attach

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoEvaluator indicates an evaluation was requested without an evaluator.
var ErrNoEvaluator = errors.New("attach: evaluator not configured")

// EvalContext carries the inputs for evaluating an expression against a
// scope's live bindings.
type EvalContext struct {
	Scope Scope
	Name  string
	Now   *time.Time
	Args  map[string]any
}

func (ctx EvalContext) withDefaultNow() EvalContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx EvalContext) withDefaultArgs() EvalContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx EvalContext) label() string {
	if ctx.Name != "" {
		return ctx.Name
	}
	return "scope"
}

// bindings copies the scope's current bindings into a plain map for the
// evaluator environments.
func (ctx EvalContext) bindings() map[string]any {
	if ctx.Scope == nil {
		return map[string]any{}
	}
	out := make(map[string]any, ctx.Scope.Len())
	for _, name := range ctx.Scope.Keys() {
		if value, ok := ctx.Scope.Get(name); ok {
			out[name] = value
		}
	}
	return out
}

// Evaluator executes expressions against a scope context.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledExpr, error)
}

// CompiledExpr represents a reusable expression program.
type CompiledExpr interface {
	Evaluate(ctx EvalContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// EvalOption configures a single EvalScope call.
type EvalOption func(*evalConfig)

type evalConfig struct {
	logger EvalLogger
	name   string
}

// WithEvalLogger attaches a logger observing the evaluation attempt.
func WithEvalLogger(logger EvalLogger) EvalOption {
	return func(cfg *evalConfig) {
		cfg.logger = logger
	}
}

// WithEvalScopeName labels the scope in errors and log events.
func WithEvalScopeName(name string) EvalOption {
	return func(cfg *evalConfig) {
		cfg.name = name
	}
}

// EvalScope executes expr against scope's current bindings.
func EvalScope(evaluator Evaluator, scope Scope, expr string, opts ...EvalOption) (any, error) {
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if expr == "" {
		return nil, fmt.Errorf("attach: expression must not be empty")
	}
	cfg := evalConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ctx := EvalContext{Scope: scope, Name: cfg.name}.withDefaultNow().withDefaultArgs()
	engine := engineName(evaluator)
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	err = wrapEvaluationError(engine, expr, ctx.label(), err)
	if cfg.logger != nil {
		cfg.logger.LogEvaluation(EvalLogEvent{
			Engine:   engine,
			Expr:     expr,
			Scope:    ctx.label(),
			Duration: duration,
			Err:      err,
		})
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Eval executes expr against the session's scope while the overlay is active.
func (s *Session) Eval(evaluator Evaluator, expr string, opts ...EvalOption) (any, error) {
	if s == nil || !s.active {
		return nil, ErrSessionEnded
	}
	if s.cfg.scopeName != "" {
		opts = append([]EvalOption{WithEvalScopeName(s.cfg.scopeName)}, opts...)
	}
	return EvalScope(evaluator, s.scope, expr, opts...)
}

func engineName(e Evaluator) string {
	switch e.(type) {
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if jsEngineName(e) {
			return "js"
		}
		return "custom"
	}
}
