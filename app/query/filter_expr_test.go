package query

import (
	"testing"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// TestTokenizer tests the tokenization of filter expressions
func TestTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "simple condition",
			input: "Status=Active",
			expected: []Token{
				{Type: TokenWord, Value: "Status"},
				{Type: TokenEQ, Value: "="},
				{Type: TokenWord, Value: "Active"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "quoted column with OR",
			input: `"user name" = scrappy OR "user name" != 'x ray'`,
			expected: []Token{
				{Type: TokenString, Value: "user name"},
				{Type: TokenEQ, Value: "="},
				{Type: TokenWord, Value: "scrappy"},
				{Type: TokenOR, Value: "OR"},
				{Type: TokenString, Value: "user name"},
				{Type: TokenNE, Value: "!="},
				{Type: TokenString, Value: "x ray"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "doubled quote escapes",
			input: `Title = "say ""hi"""`,
			expected: []Token{
				{Type: TokenWord, Value: "Title"},
				{Type: TokenEQ, Value: "="},
				{Type: TokenString, Value: `say "hi"`},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "symbolic operators",
			input: "a=1 && b!=2 || NOT c",
			expected: []Token{
				{Type: TokenWord, Value: "a"},
				{Type: TokenEQ, Value: "="},
				{Type: TokenWord, Value: "1"},
				{Type: TokenAND, Value: "&&"},
				{Type: TokenWord, Value: "b"},
				{Type: TokenNE, Value: "!="},
				{Type: TokenWord, Value: "2"},
				{Type: TokenOR, Value: "||"},
				{Type: TokenNOT, Value: "NOT"},
				{Type: TokenWord, Value: "c"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "list and negated contains",
			input: "Tags in [a, b] and Title !contains x",
			expected: []Token{
				{Type: TokenWord, Value: "Tags"},
				{Type: TokenWord, Value: "in"},
				{Type: TokenLBracket, Value: "["},
				{Type: TokenWord, Value: "a"},
				{Type: TokenComma, Value: ","},
				{Type: TokenWord, Value: "b"},
				{Type: TokenRBracket, Value: "]"},
				{Type: TokenAND, Value: "and"},
				{Type: TokenWord, Value: "Title"},
				{Type: TokenWord, Value: "!contains"},
				{Type: TokenWord, Value: "x"},
				{Type: TokenEOF, Value: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := NewFilterExprTokenizer(tt.input).Tokens()
			if len(tokens) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d: %+v", len(tt.expected), len(tokens), tokens)
			}
			for i, tok := range tokens {
				if tok.Type != tt.expected[i].Type || tok.Value != tt.expected[i].Value {
					t.Errorf("token %d: expected {%d %q}, got {%d %q}",
						i, tt.expected[i].Type, tt.expected[i].Value, tok.Type, tok.Value)
				}
			}
		})
	}
}

func TestParseFilterExpression_Conditions(t *testing.T) {
	tests := []struct {
		input      string
		column     string
		filterType string
		value      settings.FilterValue
	}{
		{"Status = Active", "Status", settings.FilterValueEquals, settings.TextValue("Active")},
		{`"Art Needed" != "no"`, "Art Needed", settings.FilterValueIsNot, settings.TextValue("no")},
		{"Title contains draft", "Title", settings.FilterContains, settings.TextValue("draft")},
		{"Title !contains draft", "Title", settings.FilterDoesNotContain, settings.TextValue("draft")},
		{"Risk in [High, 'Very High']", "Risk", settings.FilterValueInList, settings.ListValue("High", "Very High")},
		{"Risk in High", "Risk", settings.FilterValueInList, settings.ListValue("High")},
		{"Risk not in []", "Risk", settings.FilterValueNotInList, settings.ListValue()},
		{"Owner is empty", "Owner", settings.FilterValueIsEmpty, settings.FilterValue{}},
		{"Owner is not empty", "Owner", settings.FilterValueNotEmpty, settings.FilterValue{}},
		{"Done is true", "Done", settings.FilterBooleanTrue, settings.FilterValue{}},
		{"Done is not true", "Done", settings.FilterBooleanFalse, settings.FilterValue{}},
		{"Done IS FALSE", "Done", settings.FilterBooleanFalse, settings.FilterValue{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := ParseFilterExpression(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			node, ok := expr.(*ConditionNode)
			if !ok {
				t.Fatalf("expected *ConditionNode, got %T", expr)
			}
			c := node.Cond
			if c.Column != tt.column || c.FilterType != tt.filterType {
				t.Errorf("expected %s %s, got %s %s", tt.column, tt.filterType, c.Column, c.FilterType)
			}
			if c.FilterValue.IsList != tt.value.IsList || c.FilterValue.Text != tt.value.Text {
				t.Errorf("expected value %+v, got %+v", tt.value, c.FilterValue)
			}
			if len(c.FilterValue.List) != len(tt.value.List) {
				t.Fatalf("expected list %v, got %v", tt.value.List, c.FilterValue.List)
			}
			for i := range c.FilterValue.List {
				if c.FilterValue.List[i] != tt.value.List[i] {
					t.Errorf("list item %d: expected %q, got %q", i, tt.value.List[i], c.FilterValue.List[i])
				}
			}
		})
	}
}

func TestParseFilterExpression_Precedence(t *testing.T) {
	expr, err := ParseFilterExpression("a = 1 OR b = 2 AND NOT c = 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	or, ok := expr.(*OrNode)
	if !ok {
		t.Fatalf("expected OR at the root, got %T", expr)
	}
	and, ok := or.Right.(*AndNode)
	if !ok {
		t.Fatalf("expected AND on the right, got %T", or.Right)
	}
	if _, ok := and.Right.(*NotNode); !ok {
		t.Errorf("expected NOT under AND, got %T", and.Right)
	}

	grouped, err := ParseFilterExpression("(a = 1 OR b = 2) AND c = 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := grouped.(*AndNode); !ok {
		t.Errorf("parentheses must bind first, got %T", grouped)
	}
}

func TestParseFilterExpression_Errors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Status",
		"Status =",
		"Status ~ x",
		"(Status = x",
		"Status = x)",
		`Status = "open`,
		"Status in [a b]",
		"Status is maybe",
		"AND Status = x",
	}
	for _, input := range inputs {
		if _, err := ParseFilterExpression(input); err == nil {
			t.Errorf("expected an error for %q", input)
		}
	}
}

func TestFilter(t *testing.T) {
	ctx := newCtx("Status", "Owner", "Tags")
	records := []interfaces.Record{
		rec("Status", "Active", "Owner", "bob", "Tags", "x"),
		rec("Status", "Closed", "Owner", "bob", "Tags", ""),
		rec("Status", "Active", "Owner", "amy", "Tags", "y"),
		rec("Status", "Review", "Owner", "", "Tags", "x"),
	}

	tests := []struct {
		expr     string
		expected int
	}{
		{"Status = active", 2},
		{"Status = Active AND Owner = bob", 1},
		{"Owner = amy OR Tags = x", 3},
		{"NOT Status in [Active, Review]", 1},
		{"Owner is empty", 1},
		{"(Status = Active OR Status = Review) AND Tags = x", 2},
		{"Ghost = x OR Owner = amy", 1},
		{"NOT Ghost = x", 4},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := ParseFilterExpression(tt.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := Filter(records, expr, ctx); len(got) != tt.expected {
				t.Errorf("expected %d records, got %d", tt.expected, len(got))
			}
		})
	}

	if got := Filter(records, nil, ctx); len(got) != len(records) {
		t.Errorf("nil expression must keep every record")
	}
}
