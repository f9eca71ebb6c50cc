package spice

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// CardLexer splits one logical card into words, assignments and quoted or
// braced expressions.
var CardLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Quoted", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Braced", Pattern: `\{[^}]*\}`},
	{Name: "Eq", Pattern: `=`},
	{Name: "Word", Pattern: `[^ \t\r\n=]+`},
})

// CardAST is a parsed card: a leading word followed by arguments
type CardAST struct {
	Head string    `@Word`
	Args []*ArgAST `@@*`
}

// ArgAST is a bare word or a key=value assignment
type ArgAST struct {
	Key   string  `@Word`
	Value *string `( Eq @( Word | Quoted | Braced ) )?`
}

// IsAssignment reports whether the argument carries a value
func (a *ArgAST) IsAssignment() bool {
	return a.Value != nil
}

// Words returns the leading bare words of the card, stopping at the first
// assignment.
func (c *CardAST) Words() []string {
	var out []string
	for _, a := range c.Args {
		if a.IsAssignment() {
			break
		}
		out = append(out, a.Key)
	}
	return out
}

// Assignments returns the key=value arguments in card order
func (c *CardAST) Assignments() []*ArgAST {
	var out []*ArgAST
	for _, a := range c.Args {
		if a.IsAssignment() {
			out = append(out, a)
		}
	}
	return out
}

// CardParser parses logical cards
type CardParser struct {
	parser *participle.Parser[CardAST]
}

// NewCardParser creates a new card parser instance
func NewCardParser() (*CardParser, error) {
	parser, err := participle.Build[CardAST](
		participle.Lexer(CardLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build card parser: %w", err)
	}
	return &CardParser{parser: parser}, nil
}

// ParseString parses a single card
func (p *CardParser) ParseString(text string) (*CardAST, error) {
	ast, err := p.parser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return ast, nil
}

// unquote strips the quotes or braces around an expression value
func unquote(v string) string {
	if len(v) >= 2 {
		switch {
		case v[0] == '\'' && v[len(v)-1] == '\'',
			v[0] == '"' && v[len(v)-1] == '"',
			v[0] == '{' && v[len(v)-1] == '}':
			return strings.TrimSpace(v[1 : len(v)-1])
		}
	}
	return v
}
