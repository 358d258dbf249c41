package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
)

// Calculate evaluates arithmetic expressions in a sandbox: numbers,
// operators, parentheses and a fixed set of math functions. Names outside
// that set fail to compile.
type Calculate struct{}

// calcEnv is the complete set of names visible to expressions.
var calcEnv = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sqrt":  math.Sqrt,
	"pow":   math.Pow,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"log":   math.Log,
	"log10": math.Log10,
	"exp":   math.Exp,
}

// calcBuiltins are the expr builtins left enabled.
var calcBuiltins = []string{"abs", "ceil", "floor", "round", "max", "min"}

func (Calculate) Name() string { return "calculate" }

func (Calculate) Description() string {
	return "Perform mathematical calculations. Evaluates mathematical expressions safely, " +
		"supporting + - * / % ** and functions such as sqrt, pow, abs, round, sin, cos, log."
}

func (Calculate) Parameters() map[string]any {
	return schema(map[string]any{
		"expression": prop("string", "Mathematical expression to evaluate, e.g. '(10 + 5) * 2 / 3'"),
	}, "expression")
}

func (Calculate) Execute(_ context.Context, args map[string]any) (any, error) {
	expression, err := stringArg(args, "expression")
	if err != nil {
		return nil, err
	}
	value, err := evaluate(expression)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"expression": expression,
		"result":     value,
	}, nil
}

var errDivisionByZero = errors.New("Division by zero")

// evaluate compiles and runs expression against calcEnv.
func evaluate(expression string) (result float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = classifyCalcError(fmt.Errorf("%v", p))
		}
	}()

	if strings.TrimSpace(expression) == "" {
		return 0, errors.New("Invalid expression: empty")
	}

	opts := []expr.Option{expr.Env(calcEnv), expr.AsFloat64(), expr.DisableAllBuiltins()}
	for _, name := range calcBuiltins {
		opts = append(opts, expr.EnableBuiltin(name))
	}

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return 0, classifyCalcError(err)
	}
	out, err := expr.Run(program, calcEnv)
	if err != nil {
		return 0, classifyCalcError(err)
	}

	f, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("Invalid expression: result is %T, not a number", out)
	}
	if math.IsInf(f, 0) {
		return 0, errDivisionByZero
	}
	if math.IsNaN(f) {
		return 0, errors.New("Invalid expression: result is not a number")
	}
	return f, nil
}

func classifyCalcError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "divide by zero") || strings.Contains(msg, "division by zero") {
		return errDivisionByZero
	}
	// expr errors span several lines with a caret marker; keep the first.
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return fmt.Errorf("Invalid expression: %s", msg)
}
