package flowfield

import (
	"math"
	"math/rand/v2"
)

// scope is the read-only environment one evaluation sees: the position's
// axis values, the caller's parameter bindings, and the constants pi and e.
type scope struct {
	x, y, z float64
	params  map[string]float64
}

// lookup resolves a symbol. Unknown symbols evaluate to NaN, which surfaces
// as an invalid result at the Field boundary rather than an error.
func (s *scope) lookup(name string) float64 {
	switch name {
	case "x":
		return s.x
	case "y":
		return s.y
	case "z":
		return s.z
	case "pi":
		return math.Pi
	case "e":
		return math.E
	}
	if v, ok := s.params[name]; ok {
		return v
	}
	return math.NaN()
}

// exprNode is one node of a compiled expression tree. Trees are immutable
// once built; eval has no side effects.
type exprNode interface {
	eval(sc *scope) float64
	collectVars(set map[string]struct{})
}

type numberNode float64

func (n numberNode) eval(*scope) float64           { return float64(n) }
func (numberNode) collectVars(map[string]struct{}) {}

type symbolNode string

func (n symbolNode) eval(sc *scope) float64 { return sc.lookup(string(n)) }
func (n symbolNode) collectVars(set map[string]struct{}) {
	switch string(n) {
	case "pi", "e":
		// Constants are not variables.
	default:
		set[string(n)] = struct{}{}
	}
}

type unaryNode struct {
	op      byte // '+' or '-'
	operand exprNode
}

func (n *unaryNode) eval(sc *scope) float64 {
	v := n.operand.eval(sc)
	if n.op == '-' {
		return -v
	}
	return v
}

func (n *unaryNode) collectVars(set map[string]struct{}) {
	n.operand.collectVars(set)
}

type binaryNode struct {
	op          byte // '+', '-', '*', '/', '^'
	left, right exprNode
}

func (n *binaryNode) eval(sc *scope) float64 {
	l := n.left.eval(sc)
	r := n.right.eval(sc)
	switch n.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	default:
		return math.Pow(l, r)
	}
}

func (n *binaryNode) collectVars(set map[string]struct{}) {
	n.left.collectVars(set)
	n.right.collectVars(set)
}

type callNode struct {
	fn   *builtinFunc
	args []exprNode
}

func (n *callNode) eval(sc *scope) float64 {
	var buf [4]float64
	args := buf[:0]
	for _, a := range n.args {
		args = append(args, a.eval(sc))
	}
	return n.fn.apply(args)
}

func (n *callNode) collectVars(set map[string]struct{}) {
	for _, a := range n.args {
		a.collectVars(set)
	}
}

// builtinFunc is one entry of the closed function whitelist. Calls to any
// name outside the whitelist are rejected at compile time.
type builtinFunc struct {
	name    string
	minArgs int
	maxArgs int
	apply   func(args []float64) float64
}

func fn1(name string, f func(float64) float64) *builtinFunc {
	return &builtinFunc{name: name, minArgs: 1, maxArgs: 1, apply: func(a []float64) float64 { return f(a[0]) }}
}

func fn2(name string, f func(float64, float64) float64) *builtinFunc {
	return &builtinFunc{name: name, minArgs: 2, maxArgs: 2, apply: func(a []float64) float64 { return f(a[0], a[1]) }}
}

// builtins is the whole callable surface available to formulas.
var builtins = map[string]*builtinFunc{
	"sin":   fn1("sin", math.Sin),
	"cos":   fn1("cos", math.Cos),
	"tan":   fn1("tan", math.Tan),
	"asin":  fn1("asin", math.Asin),
	"acos":  fn1("acos", math.Acos),
	"atan":  fn1("atan", math.Atan),
	"atan2": fn2("atan2", math.Atan2),
	"sinh":  fn1("sinh", math.Sinh),
	"cosh":  fn1("cosh", math.Cosh),
	"tanh":  fn1("tanh", math.Tanh),
	"sqrt":  fn1("sqrt", math.Sqrt),
	"cbrt":  fn1("cbrt", math.Cbrt),
	"abs":   fn1("abs", math.Abs),
	"exp":   fn1("exp", math.Exp),
	"log":   fn1("log", math.Log),
	"log2":  fn1("log2", math.Log2),
	"log10": fn1("log10", math.Log10),
	"floor": fn1("floor", math.Floor),
	"ceil":  fn1("ceil", math.Ceil),
	"round": fn1("round", math.Round),
	"sign":  fn1("sign", sign),
	"min":   fn2("min", math.Min),
	"max":   fn2("max", math.Max),
	"pow":   fn2("pow", math.Pow),
	"hypot": fn2("hypot", math.Hypot),
	"random": {
		name: "random", minArgs: 0, maxArgs: 0,
		apply: func([]float64) float64 { return rand.Float64() },
	},
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
