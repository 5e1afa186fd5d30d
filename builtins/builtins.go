// Package builtins is the compile-time table of built-in math functions,
// shared by the parser (name/arity lookup for compile-time checks) and the
// VM (actual dispatch).
package builtins

import "math"

// Func is a built-in's native implementation: one float64 argument in, one
// float64 result out. All built-ins in this table are unary.
type Func func(float64) float64

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// table maps a built-in's name to its implementation.
var table = map[string]Func{
	"sin":        math.Sin,
	"cos":        math.Cos,
	"tan":        math.Tan,
	"asin":       math.Asin,
	"acos":       math.Acos,
	"atan":       math.Atan,
	"asinh":      math.Asinh,
	"acosh":      math.Acosh,
	"atanh":      math.Atanh,
	"cosh":       math.Cosh,
	"abs":        math.Abs,
	"cbrt":       math.Cbrt,
	"ceil":       math.Ceil,
	"floor":      math.Floor,
	"ln":         math.Log,
	"log2":       math.Log2,
	"log10":      math.Log10,
	"round":      math.Round,
	"sqrt":       math.Sqrt,
	"to_radians": toRadians,
	"to_degrees": toDegrees,
}

// Arity is fixed at 1 for every built-in; print is variadic but lives
// outside this table since it isn't a Number -> Number function.
const Arity = 1

// Lookup returns a built-in's implementation and whether it exists.
func Lookup(name string) (Func, bool) {
	f, ok := table[name]
	return f, ok
}

// IsBuiltin reports whether name names a built-in math function.
func IsBuiltin(name string) bool {
	_, ok := table[name]
	return ok
}
