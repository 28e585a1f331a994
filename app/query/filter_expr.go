package query

import (
	"fmt"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// TokenType represents the type of a token in the filter expression
type TokenType int

const (
	TokenWord     TokenType = iota // A bare word: column name, value or keyword
	TokenString                    // A quoted string ("user name", 'x')
	TokenAND                       // AND operator
	TokenOR                        // OR operator
	TokenNOT                       // NOT operator
	TokenLParen                    // (
	TokenRParen                    // )
	TokenLBracket                  // [
	TokenRBracket                  // ]
	TokenComma                     // ,
	TokenEQ                        // =
	TokenNE                        // !=
	TokenEOF                       // End of expression
)

// Token represents a token in the filter expression
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Expr is a compiled filter expression
type Expr interface {
	Eval(rec interfaces.Record, ctx *Context) bool
	String() string
}

// ConditionNode is a leaf: one declarative condition
type ConditionNode struct {
	Cond settings.Condition
}

func (n *ConditionNode) Eval(rec interfaces.Record, ctx *Context) bool {
	return Check(rec, n.Cond, ctx)
}

func (n *ConditionNode) String() string {
	v := n.Cond.FilterValue.Text
	if n.Cond.FilterValue.IsList {
		v = "[" + strings.Join(n.Cond.FilterValue.List, ",") + "]"
	}
	return fmt.Sprintf("%q %s %q", n.Cond.Column, n.Cond.FilterType, v)
}

// NotNode represents a NOT expression
type NotNode struct {
	Child Expr
}

func (n *NotNode) Eval(rec interfaces.Record, ctx *Context) bool {
	return !n.Child.Eval(rec, ctx)
}

func (n *NotNode) String() string {
	return "NOT(" + n.Child.String() + ")"
}

// AndNode represents an AND expression
type AndNode struct {
	Left  Expr
	Right Expr
}

func (n *AndNode) Eval(rec interfaces.Record, ctx *Context) bool {
	return n.Left.Eval(rec, ctx) && n.Right.Eval(rec, ctx)
}

func (n *AndNode) String() string {
	return "(" + n.Left.String() + " AND " + n.Right.String() + ")"
}

// OrNode represents an OR expression
type OrNode struct {
	Left  Expr
	Right Expr
}

func (n *OrNode) Eval(rec interfaces.Record, ctx *Context) bool {
	return n.Left.Eval(rec, ctx) || n.Right.Eval(rec, ctx)
}

func (n *OrNode) String() string {
	return "(" + n.Left.String() + " OR " + n.Right.String() + ")"
}

// FilterExprTokenizer tokenizes a filter expression
type FilterExprTokenizer struct {
	input    string
	pos      int
	tokens   []Token
	tokenPos int
	err      error
}

// NewFilterExprTokenizer creates a new tokenizer for a filter expression
func NewFilterExprTokenizer(input string) *FilterExprTokenizer {
	t := &FilterExprTokenizer{input: input}
	t.tokenize()
	return t
}

func (t *FilterExprTokenizer) emit(tt TokenType, value string, pos int) {
	t.tokens = append(t.tokens, Token{Type: tt, Value: value, Pos: pos})
}

// tokenize splits the input into tokens
func (t *FilterExprTokenizer) tokenize() {
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		start := t.pos

		switch {
		case isSpace(c):
			t.pos++
		case c == '(':
			t.emit(TokenLParen, "(", start)
			t.pos++
		case c == ')':
			t.emit(TokenRParen, ")", start)
			t.pos++
		case c == '[':
			t.emit(TokenLBracket, "[", start)
			t.pos++
		case c == ']':
			t.emit(TokenRBracket, "]", start)
			t.pos++
		case c == ',':
			t.emit(TokenComma, ",", start)
			t.pos++
		case c == '=':
			t.emit(TokenEQ, "=", start)
			t.pos++
		case c == '!' && t.pos+1 < len(t.input) && t.input[t.pos+1] == '=':
			t.emit(TokenNE, "!=", start)
			t.pos += 2
		case c == '"' || c == '\'':
			t.readQuoted(c)
		default:
			t.readWord()
		}
		if t.err != nil {
			return
		}
	}
	t.emit(TokenEOF, "", len(t.input))
}

// readQuoted reads a quoted string; a doubled quote is an escaped quote
func (t *FilterExprTokenizer) readQuoted(quote byte) {
	start := t.pos
	t.pos++
	var b strings.Builder
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if c == quote {
			if t.pos+1 < len(t.input) && t.input[t.pos+1] == quote {
				b.WriteByte(quote)
				t.pos += 2
				continue
			}
			t.pos++
			t.emit(TokenString, b.String(), start)
			return
		}
		b.WriteByte(c)
		t.pos++
	}
	t.err = fmt.Errorf("unterminated string starting at position %d", start)
}

// readWord reads up to whitespace or punctuation. A leading "!" is part of the
// word so that "!contains" reads as one operator.
func (t *FilterExprTokenizer) readWord() {
	start := t.pos
	t.pos++
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if isSpace(c) || strings.IndexByte("()[],=\"'", c) >= 0 {
			break
		}
		if c == '!' && t.pos+1 < len(t.input) && t.input[t.pos+1] == '=' {
			break
		}
		t.pos++
	}
	word := t.input[start:t.pos]
	switch strings.ToUpper(word) {
	case "AND", "&&":
		t.emit(TokenAND, word, start)
	case "OR", "||":
		t.emit(TokenOR, word, start)
	case "NOT":
		t.emit(TokenNOT, word, start)
	default:
		t.emit(TokenWord, word, start)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Tokens returns every token including the trailing EOF
func (t *FilterExprTokenizer) Tokens() []Token {
	return t.tokens
}

// Peek returns the current token without consuming it
func (t *FilterExprTokenizer) Peek() Token {
	if t.tokenPos >= len(t.tokens) {
		return Token{Type: TokenEOF, Pos: len(t.input)}
	}
	return t.tokens[t.tokenPos]
}

// PeekAt looks ahead n tokens
func (t *FilterExprTokenizer) PeekAt(n int) Token {
	if t.tokenPos+n >= len(t.tokens) {
		return Token{Type: TokenEOF, Pos: len(t.input)}
	}
	return t.tokens[t.tokenPos+n]
}

// Next returns the current token and advances to the next
func (t *FilterExprTokenizer) Next() Token {
	tok := t.Peek()
	t.tokenPos++
	return tok
}

// FilterExprParser parses a filter expression into an expression tree.
//
//	expr      := or
//	or        := and { OR and }
//	and       := not { AND not }
//	not       := NOT not | primary
//	primary   := "(" or ")" | condition
//	condition := column op
//	op        := "=" value | "!=" value | contains value | !contains value
//	           | in list | not in list
//	           | is empty | is not empty | is true | is false
//	list      := "[" value { "," value } "]" | value
type FilterExprParser struct {
	tokenizer *FilterExprTokenizer
}

// NewFilterExprParser creates a new parser
func NewFilterExprParser(input string) *FilterExprParser {
	return &FilterExprParser{tokenizer: NewFilterExprTokenizer(input)}
}

// Parse returns the root node. An empty expression is an error.
func (p *FilterExprParser) Parse() (Expr, error) {
	if p.tokenizer.err != nil {
		return nil, p.tokenizer.err
	}
	if p.tokenizer.Peek().Type == TokenEOF {
		return nil, fmt.Errorf("empty filter expression")
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.tokenizer.Peek(); tok.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", tok.Value, tok.Pos)
	}
	return node, nil
}

// parseOr parses OR expressions (lowest precedence)
func (p *FilterExprParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tokenizer.Peek().Type == TokenOR {
		p.tokenizer.Next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrNode{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd parses AND expressions (medium precedence)
func (p *FilterExprParser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tokenizer.Peek().Type == TokenAND {
		p.tokenizer.Next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &AndNode{Left: left, Right: right}
	}
	return left, nil
}

// parseNot parses NOT expressions (high precedence)
func (p *FilterExprParser) parseNot() (Expr, error) {
	if p.tokenizer.Peek().Type == TokenNOT {
		p.tokenizer.Next()
		child, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotNode{Child: child}, nil
	}
	return p.parsePrimary()
}

func (p *FilterExprParser) parsePrimary() (Expr, error) {
	tok := p.tokenizer.Peek()
	switch tok.Type {
	case TokenLParen:
		p.tokenizer.Next()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.tokenizer.Next(); closing.Type != TokenRParen {
			return nil, fmt.Errorf("missing ) at position %d", closing.Pos)
		}
		return node, nil
	case TokenWord, TokenString:
		return p.parseCondition()
	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", tok.Value, tok.Pos)
	}
}

func (p *FilterExprParser) parseCondition() (Expr, error) {
	column := p.tokenizer.Next().Value
	cond := settings.Condition{Column: column}

	op := p.tokenizer.Next()
	switch {
	case op.Type == TokenEQ:
		cond.FilterType = settings.FilterValueEquals
	case op.Type == TokenNE:
		cond.FilterType = settings.FilterValueIsNot
	case isKeyword(op, "contains"):
		cond.FilterType = settings.FilterContains
	case isKeyword(op, "!contains"):
		cond.FilterType = settings.FilterDoesNotContain
	case isKeyword(op, "in"):
		cond.FilterType = settings.FilterValueInList
	case op.Type == TokenNOT && isKeyword(p.tokenizer.Peek(), "in"):
		p.tokenizer.Next()
		cond.FilterType = settings.FilterValueNotInList
	case isKeyword(op, "is"):
		return p.parseIs(cond)
	case op.Type == TokenEOF:
		return nil, fmt.Errorf("missing operator after %q", column)
	default:
		return nil, fmt.Errorf("unknown operator %q after %q at position %d", op.Value, column, op.Pos)
	}

	if cond.FilterType == settings.FilterValueInList || cond.FilterType == settings.FilterValueNotInList {
		list, err := p.parseList()
		if err != nil {
			return nil, err
		}
		cond.FilterValue = settings.ListValue(list...)
		return &ConditionNode{Cond: cond}, nil
	}

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	cond.FilterValue = settings.TextValue(value)
	return &ConditionNode{Cond: cond}, nil
}

// parseIs handles "is empty", "is not empty", "is true", "is false"
func (p *FilterExprParser) parseIs(cond settings.Condition) (Expr, error) {
	negated := false
	if p.tokenizer.Peek().Type == TokenNOT {
		p.tokenizer.Next()
		negated = true
	}
	tok := p.tokenizer.Next()
	switch {
	case isKeyword(tok, "empty") && !negated:
		cond.FilterType = settings.FilterValueIsEmpty
	case isKeyword(tok, "empty"):
		cond.FilterType = settings.FilterValueNotEmpty
	case isKeyword(tok, "true") && !negated, isKeyword(tok, "false") && negated:
		cond.FilterType = settings.FilterBooleanTrue
	case isKeyword(tok, "false"), isKeyword(tok, "true"):
		cond.FilterType = settings.FilterBooleanFalse
	default:
		return nil, fmt.Errorf("expected empty, true or false after \"is\" at position %d", tok.Pos)
	}
	return &ConditionNode{Cond: cond}, nil
}

func (p *FilterExprParser) parseValue() (string, error) {
	tok := p.tokenizer.Next()
	if tok.Type == TokenWord || tok.Type == TokenString {
		return tok.Value, nil
	}
	if tok.Type == TokenEOF {
		return "", fmt.Errorf("missing value at end of expression")
	}
	return "", fmt.Errorf("expected a value at position %d, found %q", tok.Pos, tok.Value)
}

// parseList reads [a, "b c", d]; a single bare value is a one-element list
func (p *FilterExprParser) parseList() ([]string, error) {
	if p.tokenizer.Peek().Type != TokenLBracket {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return []string{v}, nil
	}
	p.tokenizer.Next()

	items := []string{}
	if p.tokenizer.Peek().Type == TokenRBracket {
		p.tokenizer.Next()
		return items, nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		tok := p.tokenizer.Next()
		switch tok.Type {
		case TokenComma:
			continue
		case TokenRBracket:
			return items, nil
		default:
			return nil, fmt.Errorf("expected , or ] at position %d", tok.Pos)
		}
	}
}

func isKeyword(tok Token, word string) bool {
	return tok.Type == TokenWord && strings.EqualFold(tok.Value, word)
}

// ParseFilterExpression compiles an expression such as
//
//	Status = Active AND (Owner contains bob OR NOT Risk in [High, Low])
//
// into a tree whose leaves are evaluated by Check.
func ParseFilterExpression(expr string) (Expr, error) {
	return NewFilterExprParser(expr).Parse()
}

// Filter returns the records for which expr holds
func Filter(records []interfaces.Record, expr Expr, ctx *Context) []interfaces.Record {
	if expr == nil {
		return records
	}
	out := make([]interfaces.Record, 0, len(records))
	for _, rec := range records {
		if expr.Eval(rec, ctx) {
			out = append(out, rec)
		}
	}
	return out
}
