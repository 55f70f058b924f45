package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	l := New("test.chai", []byte(src))
	var toks []Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return toks
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestNumbersAndIdentifiers(t *testing.T) {
	toks := tokenize(t, "x = 42 + 3.14")
	assert.Equal(t, []Kind{Ident, ASSIGN, Int, PLUS, Float, EOF}, kinds(toks))
	assert.Equal(t, "42", toks[2].Text)
	assert.Equal(t, "3.14", toks[4].Text)
}

func TestKeywordsNotMistakenForIdentifiers(t *testing.T) {
	toks := tokenize(t, "def foo() { return true }")
	assert.Equal(t, []Kind{KwDef, Ident, LPAREN, RPAREN, LBRACE, KwReturn, KwTrue, RBRACE, EOF}, kinds(toks))
}

func TestMultiCharSymbolsBeforeSingleChar(t *testing.T) {
	toks := tokenize(t, ">= > <= < == != && || := + - ++ --")
	assert.Equal(t, []Kind{GE, GT, LE, LT, EQ, NE, AND, OR, REBIND, PLUS, MINUS, INCR, DECR, EOF}, kinds(toks))
}

func TestLineCommentStopsAtNewline(t *testing.T) {
	toks := tokenize(t, "x // a comment\ny")
	assert.Equal(t, []Kind{Ident, Newline, Ident, EOF}, kinds(toks))
}

func TestBlockCommentIsElided(t *testing.T) {
	toks := tokenize(t, "x /* multi\nline */ y")
	assert.Equal(t, []Kind{Ident, Ident, EOF}, kinds(toks))
}

func TestUnclosedBlockCommentIsError(t *testing.T) {
	l := New("t.chai", []byte("x /* never closed"))
	_, err := l.Next()
	require.NoError(t, err)
	_, err = l.Next()
	require.Error(t, err)
}

func TestDoubleQuotedStringWithEscapes(t *testing.T) {
	toks := tokenize(t, `"hello\nworld\t\""`)
	require.Equal(t, String, toks[0].Kind)
	assert.Equal(t, "hello\nworld\t\"", toks[0].Text)
}

func TestSingleQuotedChar(t *testing.T) {
	toks := tokenize(t, `'a'`)
	require.Equal(t, Char, toks[0].Kind)
	assert.Equal(t, "a", toks[0].Text)
}

func TestBacktickIdentifier(t *testing.T) {
	toks := tokenize(t, "`+`(1, 2)")
	require.Equal(t, BacktickIdent, toks[0].Kind)
	assert.Equal(t, "+", toks[0].Text)
}

func TestWellFormedSourceReachesEOFWithoutError(t *testing.T) {
	toks := tokenize(t, "if(x")
	assert.Equal(t, []Kind{KwIf, LPAREN, Ident, EOF}, kinds(toks))
}

func TestUnclosedStringLiteralError(t *testing.T) {
	l := New("t.chai", []byte(`"unterminated`))
	_, err := l.Next()
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrUnclosedString, lexErr.Reason)
	assert.Equal(t, 1, lexErr.Pos.Col)
}

func TestNewlineAndSemicolonAreSeparateTokens(t *testing.T) {
	toks := tokenize(t, "a;\nb")
	assert.Equal(t, []Kind{Ident, SEMI, Newline, Ident, EOF}, kinds(toks))
}

func TestTrailingBackslashContinuesLine(t *testing.T) {
	toks := tokenize(t, "a + \\\nb")
	assert.Equal(t, []Kind{Ident, PLUS, Ident, EOF}, kinds(toks))
}

func TestPositionsTrackLineAndColumn(t *testing.T) {
	toks := tokenize(t, "a\nbc")
	require.Len(t, toks, 4)
	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 1, toks[0].Pos.Col)
	assert.Equal(t, 2, toks[2].Pos.Line)
	assert.Equal(t, 1, toks[2].Pos.Col)
}
