package flowfield

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// CompiledField is the whitelisted evaluator produced from a formula string.
// It is immutable after Compile and owned by at most one Field at a time;
// replacing a field's formula simply drops the prior CompiledField.
type CompiledField struct {
	dim   int
	comps []exprNode
	vars  []string
}

// Dim returns the field's dimension (2 or 3).
func (f *CompiledField) Dim() int {
	return f.dim
}

// Variables returns the sorted coordinate names referenced by the formula.
// The returned slice MUST NOT be mutated.
func (f *CompiledField) Variables() []string {
	return f.vars
}

// Evaluate interprets the compiled AST at position p with the given
// parameter bindings. ok is false when any component of the result is
// non-finite; the vector is then unusable and must be skipped.
// Components beyond the field's dimension are always zero.
func (f *CompiledField) Evaluate(p Vec, params map[string]float64) (Vec, bool) {
	sc := scope{x: p.X, y: p.Y, z: p.Z, params: params}
	var out Vec
	for i, comp := range f.comps {
		v := comp.eval(&sc)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Vec{}, false
		}
		out = out.SetAxis(i, v)
	}
	return out, true
}

// selfTestPoints are the canonical probe positions used by SelfTest.
var selfTestPoints = []Vec{
	{0, 0, 0},
	{1, 1, 1},
	{-1, 1, 1},
	{0.5, 0.5, 0.5},
}

// SelfTest evaluates the field at four canonical points and reports an error
// if none of them produces a finite vector. It is a cheap runtime sanity
// probe, not a correctness proof: fields with partial domains legitimately
// fail at some of the points.
func (f *CompiledField) SelfTest() error {
	for _, p := range selfTestPoints {
		if f.dim == 2 {
			p.Z = 0
		}
		if _, ok := f.Evaluate(p, nil); ok {
			return nil
		}
	}
	return fmt.Errorf("flowfield: field produced no finite value at any probe point")
}

// coordinateNames returns the symbols valid for a dimension.
func coordinateNames(dim int) []string {
	if dim == 3 {
		return []string{"x", "y", "z"}
	}
	return []string{"x", "y"}
}

// Compile parses a formula in array notation ("[-y, x]") into a
// CompiledField with exactly dim components.
//
// The returned variable list is sorted and is populated with whatever was
// collected before a failure, so callers can still display partial
// information next to the error. Errors are one of *SyntaxError,
// *ComponentCountError, *ComponentError, or *InvalidVariableError.
//
// Only coordinate names valid for the dimension may appear as free symbols;
// any other symbol is rejected with *InvalidVariableError.
func Compile(src string, dim int) (*CompiledField, []string, error) {
	if dim != 2 && dim != 3 {
		return nil, nil, &SyntaxError{Msg: fmt.Sprintf("dimension must be 2 or 3, got %d", dim)}
	}

	trimmed := strings.TrimSpace(src)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, nil, &SyntaxError{Msg: "formula must be array notation: [c1, c2, ...]"}
	}
	inner := trimmed[1 : len(trimmed)-1]

	parts, err := splitComponents(inner)
	if err != nil {
		return nil, nil, err
	}
	if len(parts) != dim {
		return nil, nil, &ComponentCountError{Expected: dim, Actual: len(parts)}
	}

	seen := make(map[string]struct{})
	comps := make([]exprNode, 0, dim)
	for i, part := range parts {
		node, err := parseComponent(part)
		if err != nil {
			return nil, sortedVars(seen), &ComponentError{Index: i, Err: err}
		}
		node.collectVars(seen)
		comps = append(comps, node)
	}

	vars := sortedVars(seen)
	if bad := invalidVars(vars, dim); len(bad) > 0 {
		return nil, vars, &InvalidVariableError{Names: bad}
	}

	return &CompiledField{dim: dim, comps: comps, vars: vars}, vars, nil
}

func sortedVars(set map[string]struct{}) []string {
	vars := make([]string, 0, len(set))
	for name := range set {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}

func invalidVars(vars []string, dim int) []string {
	allowed := make(map[string]struct{})
	for _, name := range coordinateNames(dim) {
		allowed[name] = struct{}{}
	}
	var bad []string
	for _, name := range vars {
		if _, ok := allowed[name]; !ok {
			bad = append(bad, name)
		}
	}
	return bad
}

// splitComponents splits the inside of the array brackets at top-level
// commas. Commas nested in parentheses or brackets do not split.
func splitComponents(inner string) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth < 0 {
				return nil, &SyntaxError{Msg: "mismatched brackets"}
			}
		case ',':
			if depth == 0 {
				parts = append(parts, inner[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, &SyntaxError{Msg: "mismatched brackets"}
	}
	parts = append(parts, inner[start:])
	return parts, nil
}

// --- Tokenizer -------------------------------------------------------------

type tokenKind uint8

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp     // + - * / ^
	tokLParen // (
	tokRParen // )
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	op   byte
	num  float64
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			toks = append(toks, token{kind: tokOp, op: c, pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, pos: i})
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			// Exponent suffix: 1e-3, 2.5E+10.
			if j < len(src) && (src[j] == 'e' || src[j] == 'E') {
				k := j + 1
				if k < len(src) && (src[k] == '+' || src[k] == '-') {
					k++
				}
				if k < len(src) && src[k] >= '0' && src[k] <= '9' {
					for k < len(src) && src[k] >= '0' && src[k] <= '9' {
						k++
					}
					j = k
				}
			}
			num, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", src[i:j])
			}
			toks = append(toks, token{kind: tokNumber, num: num, pos: i})
			i = j
		case isIdentStart(c):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", string(c))
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// --- Recursive descent -----------------------------------------------------

// componentParser parses a single array component with the closed grammar:
//
//	expr   := term (('+'|'-') term)*
//	term   := unary (('*'|'/') unary)*
//	unary  := ('+'|'-') unary | power
//	power  := atom ('^' unary)?          ('^' is right-associative)
//	atom   := number | ident | ident '(' args ')' | '(' expr ')'
type componentParser struct {
	toks []token
	pos  int
}

func parseComponent(src string) (exprNode, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty component")
	}
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &componentParser{toks: toks}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected %s", p.describe(p.peek()))
	}
	return node, nil
}

func (p *componentParser) peek() token {
	return p.toks[p.pos]
}

func (p *componentParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *componentParser) describe(t token) string {
	switch t.kind {
	case tokNumber:
		return fmt.Sprintf("number %g", t.num)
	case tokIdent:
		return fmt.Sprintf("identifier %q", t.text)
	case tokOp:
		return fmt.Sprintf("operator %q", string(t.op))
	case tokLParen:
		return `"("`
	case tokRParen:
		return `")"`
	case tokComma:
		return `","`
	default:
		return "end of expression"
	}
}

func (p *componentParser) parseExpr() (exprNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '+' && t.op != '-') {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.op, left: left, right: right}
	}
}

func (p *componentParser) parseTerm() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '*' && t.op != '/') {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: t.op, left: left, right: right}
	}
}

func (p *componentParser) parseUnary() (exprNode, error) {
	t := p.peek()
	if t.kind == tokOp && (t.op == '+' || t.op == '-') {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.op == '+' {
			return operand, nil
		}
		return &unaryNode{op: '-', operand: operand}, nil
	}
	return p.parsePower()
}

func (p *componentParser) parsePower() (exprNode, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tokOp && t.op == '^' {
		p.next()
		// Right-associative, and the exponent may carry a unary sign:
		// x^-2 and x^y^z both parse naturally through parseUnary.
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: '^', left: base, right: exp}, nil
	}
	return base, nil
}

func (p *componentParser) parseAtom() (exprNode, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberNode(t.num), nil

	case tokIdent:
		if p.peek().kind != tokLParen {
			return symbolNode(t.text), nil
		}
		fn, ok := builtins[t.text]
		if !ok {
			return nil, fmt.Errorf("unknown function %q", t.text)
		}
		p.next() // consume '('
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if len(args) < fn.minArgs || len(args) > fn.maxArgs {
			return nil, fmt.Errorf("%s expects %s, got %d", fn.name, arityString(fn), len(args))
		}
		return &callNode{fn: fn, args: args}, nil

	case tokLParen:
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return node, nil

	default:
		return nil, fmt.Errorf("unexpected %s", p.describe(t))
	}
}

func (p *componentParser) parseArgs() ([]exprNode, error) {
	if p.peek().kind == tokRParen {
		p.next()
		return nil, nil
	}
	var args []exprNode
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch t := p.next(); t.kind {
		case tokComma:
			continue
		case tokRParen:
			return args, nil
		default:
			return nil, fmt.Errorf("unexpected %s in argument list", p.describe(t))
		}
	}
}

func arityString(fn *builtinFunc) string {
	if fn.minArgs == fn.maxArgs {
		if fn.minArgs == 1 {
			return "1 argument"
		}
		return fmt.Sprintf("%d arguments", fn.minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", fn.minArgs, fn.maxArgs)
}
