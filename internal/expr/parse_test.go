package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValues(t *testing.T) {
	tests := []struct {
		in   string
		want Expr
	}{
		{"true", Lit{V: Boolean(true)}},
		{"false", Lit{V: Boolean(false)}},
		{" true  ", Lit{V: Boolean(true)}},
		{"12", Lit{V: Numeral(12)}},
		{"  52 ", Lit{V: Numeral(52)}},
		{"[]", Lit{V: List{}}},
		{"[1 true]", Lit{V: List{Lit{V: Numeral(1)}, Lit{V: Boolean(true)}}}},
		{`""`, Lit{V: String("")}},
		{`"simple string"`, Lit{V: String("simple string")}},
		{`"^[A-Za-z\":\\]{,100}$"`, Lit{V: String(`^[A-Za-z":\]{,100}$`)}},
		{`"\n"`, Lit{V: String(`\n`)}},
		{".", Context{Path: ""}},
		{".attr", Context{Path: "attr"}},
		{".attr.sub", Context{Path: "attr.sub"}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseOperations(t *testing.T) {
	tests := []struct {
		in   string
		want Expr
	}{
		{
			"1 < 7",
			LessThan{A: Lit{V: Numeral(1)}, B: Lit{V: Numeral(7)}},
		},
		{
			"false and true not and true",
			And{
				A: Not{A: And{A: Lit{V: Boolean(false)}, B: Lit{V: Boolean(true)}}},
				B: Lit{V: Boolean(true)},
			},
		},
		{
			"((1 < 7) or (2 > 9)) and true",
			And{
				A: Or{
					A: LessThan{A: Lit{V: Numeral(1)}, B: Lit{V: Numeral(7)}},
					B: GreaterThan{A: Lit{V: Numeral(2)}, B: Lit{V: Numeral(9)}},
				},
				B: Lit{V: Boolean(true)},
			},
		},
		{
			"(.attr) length",
			Length{List: Context{Path: "attr"}},
		},
		{
			".attr length",
			Length{List: Context{Path: "attr"}},
		},
		{
			".attr.sub length",
			Length{List: Context{Path: "attr.sub"}},
		},
		{
			`.title test "^fix"`,
			Test{Haystack: Context{Path: "title"}, Pattern: Lit{V: String("^fix")}},
		},
		{
			".body lines",
			Lines{S: Context{Path: "body"}},
		},
		{
			"[true false] all .",
			All{List: Lit{V: List{Lit{V: Boolean(true)}, Lit{V: Boolean(false)}}}, Pred: Context{Path: ""}},
		},
		{
			".commits map (. not)",
			Map{List: Context{Path: "commits"}, Xform: Not{A: Context{Path: ""}}},
		},
		{
			"true xor false",
			Xor{A: Lit{V: Boolean(true)}, B: Lit{V: Boolean(false)}},
		},
		{
			"7 = 7",
			Equal{A: Lit{V: Numeral(7)}, B: Lit{V: Numeral(7)}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"trailing input", "1 < 7 ?", "remaining input"},
		{"trailing garbage after value", "true §", "remaining input"},
		{"missing operand", "1 <", "needs more"},
		{"empty input", "", "needs more"},
		{"unterminated string", `"abc`, "needs more"},
		{"unterminated list", "[1 2", "needs more"},
		{"unterminated group", "(1 < 7", "needs more"},
		{"bare operator", "= 7", "expected a value"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.in)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Msg, tc.msg)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("1 < 7 junk")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 6, perr.Pos)
}
