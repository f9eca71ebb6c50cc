package spice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrDivisionByZero   = errors.New("division by zero")
)

// ExprLexer tokenizes arithmetic parameter expressions. Numbers carry their
// scale suffix in the same token.
var ExprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Number", Pattern: `(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?[a-zA-Z]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Op", Pattern: `[-+*/()]`},
})

// Expr is a sum of terms
type Expr struct {
	Left  *Term     `@@`
	Right []*OpTerm `@@*`
}

type OpTerm struct {
	Op   string `@("+" | "-")`
	Term *Term  `@@`
}

// Term is a product of factors
type Term struct {
	Left  *Factor     `@@`
	Right []*OpFactor `@@*`
}

type OpFactor struct {
	Op     string  `@("*" | "/")`
	Factor *Factor `@@`
}

// Factor is a possibly negated number, parameter reference or parenthesized
// expression
type Factor struct {
	Neg    bool    `@"-"?`
	Number *string `( @Number`
	Ident  *string `| @Ident`
	Sub    *Expr   `| "(" @@ ")" )`
}

// Params maps lower-cased parameter names to values
type Params map[string]float64

// Set stores a parameter
func (p Params) Set(name string, v float64) {
	p[strings.ToLower(name)] = v
}

// Lookup finds a parameter by name
func (p Params) Lookup(name string) (float64, bool) {
	v, ok := p[strings.ToLower(name)]
	return v, ok
}

// Evaluator computes numeric parameter expressions. It is safe for
// concurrent use.
type Evaluator struct {
	parser *participle.Parser[Expr]
}

// NewEvaluator builds the expression grammar
func NewEvaluator() (*Evaluator, error) {
	parser, err := participle.Build[Expr](
		participle.Lexer(ExprLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build expression parser: %w", err)
	}
	return &Evaluator{parser: parser}, nil
}

// Eval evaluates an expression. Quotes or braces around it are ignored and
// parameter references are resolved through scopes in order.
func (e *Evaluator) Eval(expression string, scopes ...Params) (float64, error) {
	src := unquote(strings.TrimSpace(expression))
	if v, ok := parseNumber(src); ok {
		return v, nil
	}
	ast, err := e.parser.ParseString("", src)
	if err != nil {
		return 0, fmt.Errorf("expression %q: %w", expression, err)
	}
	return ast.eval(scopes)
}

func (x *Expr) eval(scopes []Params) (float64, error) {
	acc, err := x.Left.eval(scopes)
	if err != nil {
		return 0, err
	}
	for _, r := range x.Right {
		v, err := r.Term.eval(scopes)
		if err != nil {
			return 0, err
		}
		if r.Op == "+" {
			acc += v
		} else {
			acc -= v
		}
	}
	return acc, nil
}

func (t *Term) eval(scopes []Params) (float64, error) {
	acc, err := t.Left.eval(scopes)
	if err != nil {
		return 0, err
	}
	for _, r := range t.Right {
		v, err := r.Factor.eval(scopes)
		if err != nil {
			return 0, err
		}
		if r.Op == "*" {
			acc *= v
			continue
		}
		if v == 0 {
			return 0, ErrDivisionByZero
		}
		acc /= v
	}
	return acc, nil
}

func (f *Factor) eval(scopes []Params) (float64, error) {
	var (
		v   float64
		err error
	)
	switch {
	case f.Number != nil:
		var ok bool
		if v, ok = parseNumber(*f.Number); !ok {
			err = fmt.Errorf("bad number %q", *f.Number)
		}
	case f.Ident != nil:
		v, err = resolve(*f.Ident, scopes)
	case f.Sub != nil:
		v, err = f.Sub.eval(scopes)
	}
	if err != nil {
		return 0, err
	}
	if f.Neg {
		v = -v
	}
	return v, nil
}

func resolve(name string, scopes []Params) (float64, error) {
	for _, s := range scopes {
		if v, ok := s.Lookup(name); ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
}

// scale suffixes, longest first
var suffixes = []struct {
	name  string
	scale float64
}{
	{"meg", 1e6},
	{"mil", 25.4e-6},
	{"t", 1e12},
	{"g", 1e9},
	{"k", 1e3},
	{"c", 1e-2},
	{"m", 1e-3},
	{"u", 1e-6},
	{"n", 1e-9},
	{"p", 1e-12},
	{"f", 1e-15},
	{"a", 1e-18},
}

// parseNumber parses a literal with an optional scale suffix. Letters after
// a recognized suffix, or unrecognized trailing letters, are units and are
// ignored.
func parseNumber(s string) (float64, bool) {
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || c == '+' || c == '-' {
			end++
			continue
		}
		if (c == 'e' || c == 'E') && end+1 < len(s) {
			next := s[end+1]
			if (next >= '0' && next <= '9') ||
				((next == '+' || next == '-') && end+2 < len(s) && s[end+2] >= '0' && s[end+2] <= '9') {
				end += 2
				continue
			}
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	unit := strings.ToLower(s[end:])
	for _, c := range unit {
		if c < 'a' || c > 'z' {
			return 0, false
		}
	}
	for _, sfx := range suffixes {
		if strings.HasPrefix(unit, sfx.name) {
			return v * sfx.scale, true
		}
	}
	return v, true
}
