// Package formula evaluates per-indicator score expressions in a sandbox.
//
// Expressions may reference only the five scoring variables and a handful of
// numeric builtins of github.com/expr-lang/expr. Every other builtin is
// disabled and no host functions are registered.
package formula

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/huangsam/kpiboard/schema"
)

// MaxLength caps the size of an accepted expression.
const MaxLength = 512

// ErrEmpty is returned for blank expressions.
var ErrEmpty = errors.New("empty formula")

// builtins are the only expr builtins an expression may call.
var builtins = []string{"abs", "ceil", "floor", "round", "min", "max"}

// mathPrefix strips JavaScript-style "math." qualifiers from builtin calls.
var mathPrefix = regexp.MustCompile(`\bmath\.(abs|ceil|floor|round|min|max)\b`)

// Variables are the values a formula may reference.
type Variables struct {
	Weight         float64
	AvgScore       float64
	TotalSalary    float64
	QuitStoreCount float64
	SalesTotal     float64
}

func (v Variables) env() map[string]any {
	return map[string]any{
		schema.VarWeight:         v.Weight,
		schema.VarAvgScore:       v.AvgScore,
		schema.VarTotalSalary:    v.TotalSalary,
		schema.VarQuitStoreCount: v.QuitStoreCount,
		schema.VarSalesTotal:     v.SalesTotal,
	}
}

// Error wraps every failure to produce a finite number from an expression.
type Error struct {
	Expr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("formula %q: %v", e.Expr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Program is a compiled formula that can be run repeatedly.
type Program struct {
	source string
	prog   *vm.Program
}

// Source returns the normalized expression text.
func (p *Program) Source() string {
	return p.source
}

// Normalize lowercases the expression and removes "math." qualifiers.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return mathPrefix.ReplaceAllString(s, "$1")
}

// Compile checks an expression against the variable environment.
// Unknown identifiers and non-numeric expressions fail here.
func Compile(source string) (*Program, error) {
	norm := Normalize(source)
	if norm == "" {
		return nil, &Error{Expr: source, Err: ErrEmpty}
	}
	if len(norm) > MaxLength {
		return nil, &Error{Expr: source, Err: fmt.Errorf("expression longer than %d bytes", MaxLength)}
	}
	opts := []expr.Option{expr.Env(Variables{}.env()), expr.DisableAllBuiltins()}
	for _, name := range builtins {
		opts = append(opts, expr.EnableBuiltin(name))
	}
	prog, err := expr.Compile(norm, opts...)
	if err != nil {
		return nil, &Error{Expr: source, Err: err}
	}
	return &Program{source: norm, prog: prog}, nil
}

// Run evaluates the program. Booleans map to 1 and 0.
func (p *Program) Run(vars Variables) (result float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = 0, &Error{Expr: p.source, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, err := expr.Run(p.prog, vars.env())
	if err != nil {
		return 0, &Error{Expr: p.source, Err: err}
	}

	var n float64
	switch v := out.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case bool:
		if v {
			n = 1
		}
	default:
		return 0, &Error{Expr: p.source, Err: fmt.Errorf("result %v (%T) is not a number", out, out)}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, &Error{Expr: p.source, Err: fmt.Errorf("result %v is not finite", n)}
	}
	return n, nil
}

// Evaluate compiles and runs an expression in one step.
func Evaluate(source string, vars Variables) (float64, error) {
	p, err := Compile(source)
	if err != nil {
		return 0, err
	}
	return p.Run(vars)
}

// Validate reports whether the expression compiles.
func Validate(source string) error {
	_, err := Compile(source)
	return err
}
