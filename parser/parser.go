// Package parser implements a hand-written recursive-descent parser over
// the lexer's token stream. It keeps exactly one token of lookahead and
// never backtracks, building the immutable ast.Node tree the evaluator
// walks.
package parser

import (
	"fmt"

	"github.com/rubiojr/chaiscript-go/ast"
	"github.com/rubiojr/chaiscript-go/lexer"
)

// ParseError reports a syntax error at a specific source position.
type ParseError struct {
	Reason string
	Pos    lexer.Position
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Reason) }

// Parser consumes a token stream and produces an ast.File.
type Parser struct {
	lex  *lexer.Lexer
	tok  lexer.Token // current token
	peek lexer.Token // one-token lookahead
}

// Parse tokenizes and parses source text, returning the root File node.
func Parse(file string, src []byte) (*ast.File, error) {
	p := &Parser{lex: lexer.New(file, src)}
	if err := p.prime(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

// prime fills tok and peek from the lexer.
func (p *Parser) prime() error {
	t0, err := p.lex.Next()
	if err != nil {
		return wrapLexErr(err)
	}
	t1, err := p.lex.Next()
	if err != nil {
		return wrapLexErr(err)
	}
	p.tok, p.peek = t0, t1
	return nil
}

func wrapLexErr(err error) error {
	if le, ok := err.(*lexer.Error); ok {
		return &ParseError{Reason: le.Reason, Pos: le.Pos}
	}
	return err
}

// next consumes the current token and advances the lookahead window.
func (p *Parser) next() error {
	p.tok = p.peek
	t, err := p.lex.Next()
	if err != nil {
		return wrapLexErr(err)
	}
	p.peek = t
	return nil
}

func (p *Parser) at(k lexer.Kind) bool { return p.tok.Kind == k }

func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...), Pos: p.tok.Pos}
}

// expect consumes the current token if it matches k, else reports a
// ParseError naming what was expected.
func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, p.errorf("expected %s, found %q", what, p.tok.Text)
	}
	tok := p.tok
	if err := p.next(); err != nil {
		return lexer.Token{}, err
	}
	return tok, nil
}

// skipTerminators consumes any run of newline/semicolon statement
// separators.
func (p *Parser) skipTerminators() error {
	for p.at(lexer.Newline) || p.at(lexer.SEMI) {
		if err := p.next(); err != nil {
			return err
		}
	}
	return nil
}

// parseFile implements File := (Statement | Def | If | While | For | EOL)*.
func (p *Parser) parseFile() (*ast.File, error) {
	start := p.tok.Pos
	f := &ast.File{SourceFile: start.File}
	f.At = start

	if err := p.skipTerminators(); err != nil {
		return nil, err
	}
	for !p.at(lexer.EOF) {
		stmt, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		f.Statements = append(f.Statements, stmt)
		if err := p.requireTerminatorOrEOF(); err != nil {
			return nil, err
		}
		if err := p.skipTerminators(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// parseTopLevel dispatches to the few statement forms legal at any
// statement boundary (Def/If/While/For share this entry with Statement).
func (p *Parser) parseTopLevel() (ast.Statement, error) {
	switch p.tok.Kind {
	case lexer.KwDef:
		return p.parseDef()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwFor:
		return p.parseFor()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) requireTerminatorOrEOF() error {
	if p.at(lexer.EOF) || p.at(lexer.RBRACE) || p.at(lexer.Newline) || p.at(lexer.SEMI) {
		return nil
	}
	return p.errorf("multiple statements on one line must be separated by ';' or a newline, found %q", p.tok.Text)
}

// parseStatement implements Statement := Return | Break | Equation.
func (p *Parser) parseStatement() (ast.Statement, error) {
	var stmt ast.Statement
	var err error
	switch p.tok.Kind {
	case lexer.KwReturn:
		stmt, err = p.parseReturn()
	case lexer.KwBreak:
		stmt, err = p.parseBreak()
	default:
		stmt, err = p.parseEquationStatement()
	}
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	r := &ast.Return{}
	r.At = start
	if p.at(lexer.Newline) || p.at(lexer.SEMI) || p.at(lexer.RBRACE) || p.at(lexer.EOF) {
		return r, nil
	}
	val, err := p.parseEquation()
	if err != nil {
		return nil, err
	}
	r.Value = val
	return r, nil
}

func (p *Parser) parseBreak() (ast.Statement, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	b := &ast.Break{}
	b.At = start
	return b, nil
}

func (p *Parser) parseEquationStatement() (ast.Statement, error) {
	start := p.tok.Pos
	x, err := p.parseEquation()
	if err != nil {
		return nil, err
	}
	if eq, ok := x.(*ast.Equation); ok {
		return eq, nil
	}
	if vd, ok := x.(*ast.VarDecl); ok {
		return vd, nil
	}
	es := &ast.ExprStmt{X: x}
	es.At = start
	return es, nil
}

// parseDef implements
// Def := "def" Id "(" [ArgList] ")" [":" Expression] Block
func (p *Parser) parseDef() (ast.Statement, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.at(lexer.Ident) {
		return nil, p.errorf("def requires a function name")
	}
	name := p.tok.Text
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	params, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}

	var guard ast.Expr
	if p.at(lexer.COLON) {
		if err := p.next(); err != nil {
			return nil, err
		}
		guard, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	d := &ast.Def{Name: name, Params: params, Guard: guard, Body: body}
	d.At = start
	return d, nil
}

func (p *Parser) parseArgList() ([]string, error) {
	var names []string
	if p.at(lexer.RPAREN) {
		return names, nil
	}
	for {
		if !p.at(lexer.Ident) {
			return nil, p.errorf("expected parameter name, found %q", p.tok.Text)
		}
		names = append(names, p.tok.Text)
		if err := p.next(); err != nil {
			return nil, err
		}
		if !p.at(lexer.COMMA) {
			break
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// parseExprArgList parses a call's argument expression list.
func (p *Parser) parseExprArgList() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.at(lexer.RPAREN) {
		return args, nil
	}
	for {
		arg, err := p.parseEquation()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.at(lexer.COMMA) {
			break
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// parseBlock implements Block := "{" Statements "}".
func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect(lexer.LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	b := &ast.Block{}
	b.At = open.Pos

	if err := p.skipTerminators(); err != nil {
		return nil, err
	}
	for !p.at(lexer.RBRACE) {
		if p.at(lexer.EOF) {
			return nil, &ParseError{Reason: "missing closing '}'", Pos: open.Pos}
		}
		stmt, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		b.Statements = append(b.Statements, stmt)
		if err := p.requireTerminatorOrEOF(); err != nil {
			return nil, err
		}
		if err := p.skipTerminators(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return b, nil
}

// parseIf implements
// If := "if" "(" Expression ")" Block { "elseif" "(" Expression ")" Block } [ "else" Block ]
func (p *Parser) parseIf() (ast.Statement, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, then, err := p.parseCondAndBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.If{Cond: cond, Then: then}
	n.At = start

	for p.at(lexer.KwElseif) {
		if err := p.next(); err != nil {
			return nil, err
		}
		c, b, err := p.parseCondAndBlock()
		if err != nil {
			return nil, err
		}
		n.ElseIfs = append(n.ElseIfs, ast.ElseIf{Cond: c, Body: b})
	}
	if p.at(lexer.KwElse) {
		if err := p.next(); err != nil {
			return nil, err
		}
		eb, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		n.ElseBody = eb
	}
	return n, nil
}

func (p *Parser) parseCondAndBlock() (ast.Expr, *ast.Block, error) {
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}
	return cond, body, nil
}

// parseWhile implements While := "while" "(" Expression ")" Block.
func (p *Parser) parseWhile() (ast.Statement, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	cond, body, err := p.parseCondAndBlock()
	if err != nil {
		return nil, err
	}
	w := &ast.While{Cond: cond, Body: body}
	w.At = start
	return w, nil
}

// parseFor implements For := "for" "(" [Equation] ";" Expression ";" Equation ")" Block.
func (p *Parser) parseFor() (ast.Statement, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}

	var initStmt ast.Statement
	if !p.at(lexer.SEMI) {
		init, err := p.parseEquation()
		if err != nil {
			return nil, err
		}
		initStmt = toStatement(init)
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.at(lexer.SEMI) {
		c, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		cond = c
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}

	var stepStmt ast.Statement
	if !p.at(lexer.RPAREN) {
		step, err := p.parseEquation()
		if err != nil {
			return nil, err
		}
		stepStmt = toStatement(step)
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	f := &ast.For{Init: initStmt, Cond: cond, Step: stepStmt, Body: body}
	f.At = start
	return f, nil
}

func toStatement(x ast.Expr) ast.Statement {
	switch v := x.(type) {
	case *ast.Equation:
		return v
	case *ast.VarDecl:
		return v
	default:
		es := &ast.ExprStmt{X: x}
		es.At = x.Pos()
		return es
	}
}

// parseEquation implements
// Equation := Expression [ ("=" | ":=" | "+=" | "-=" | "*=" | "/=") Equation ] (right-assoc)
func (p *Parser) parseEquation() (ast.Expr, error) {
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	op, ok := equationOp(p.tok.Kind)
	if !ok {
		return left, nil
	}
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	right, err := p.parseEquation()
	if err != nil {
		return nil, err
	}
	eq := &ast.Equation{Target: left, Op: op, Value: right}
	eq.At = start
	return eq, nil
}

func equationOp(k lexer.Kind) (string, bool) {
	switch k {
	case lexer.ASSIGN:
		return "=", true
	case lexer.REBIND:
		return ":=", true
	case lexer.PLUSEQ:
		return "+=", true
	case lexer.MINUSEQ:
		return "-=", true
	case lexer.STAREQ:
		return "*=", true
	case lexer.SLASHEQ:
		return "/=", true
	default:
		return "", false
	}
}

// parseExpression implements Expression := Comparison { ("&&" | "||") Comparison }.
func (p *Parser) parseExpression() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.AND) || p.at(lexer.OR) {
		op := "&&"
		if p.at(lexer.OR) {
			op = "||"
		}
		start := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		l := &ast.Logical{Op: op, Left: left, Right: right}
		l.At = start
		left = l
	}
	return left, nil
}

// parseComparison implements
// Comparison := Additive { (">=" | ">" | "<=" | "<" | "==" | "!=") Additive }.
func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOp(p.tok.Kind)
		if !ok {
			return left, nil
		}
		start := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		c := &ast.Comparison{Op: op, Left: left, Right: right}
		c.At = start
		left = c
	}
}

func comparisonOp(k lexer.Kind) (string, bool) {
	switch k {
	case lexer.GE:
		return ">=", true
	case lexer.GT:
		return ">", true
	case lexer.LE:
		return "<=", true
	case lexer.LT:
		return "<", true
	case lexer.EQ:
		return "==", true
	case lexer.NE:
		return "!=", true
	default:
		return "", false
	}
}

// parseAdditive implements Additive := Multiplicative { ("+" | "-") Multiplicative }.
func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		op := "+"
		if p.at(lexer.MINUS) {
			op = "-"
		}
		start := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		a := &ast.Additive{Op: op, Left: left, Right: right}
		a.At = start
		left = a
	}
	return left, nil
}

// parseMultiplicative implements
// Multiplicative := DotAccess { ("*" | "/" | "%") DotAccess }.
func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseDotAccess()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.tok.Kind {
		case lexer.STAR:
			op = "*"
		case lexer.SLASH:
			op = "/"
		case lexer.PERCENT:
			op = "%"
		default:
			return left, nil
		}
		start := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseDotAccess()
		if err != nil {
			return nil, err
		}
		m := &ast.Multiplicative{Op: op, Left: left, Right: right}
		m.At = start
		left = m
	}
}

// parseDotAccess implements DotAccess := Value { "." Value }.
func (p *Parser) parseDotAccess() (ast.Expr, error) {
	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.DOT) {
		start := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		d := &ast.DotAccess{Object: left, Right: right}
		d.At = start
		left = d
	}
	return left, nil
}

// parseValue implements
// Value := VarDecl | Lambda | IdFunArray | Num | Prefix | String | CharLit
//
//	| "(" Expression ")" | InlineContainer
func (p *Parser) parseValue() (ast.Expr, error) {
	switch p.tok.Kind {
	case lexer.KwVar:
		return p.parseVarDecl()
	case lexer.KwFun:
		return p.parseLambda()
	case lexer.Ident, lexer.BacktickIdent:
		return p.parseIdFunArray()
	case lexer.Int:
		n := &ast.Int{Text: p.tok.Text}
		n.At = p.tok.Pos
		return n, p.next()
	case lexer.Float:
		n := &ast.Float{Text: p.tok.Text}
		n.At = p.tok.Pos
		return n, p.next()
	case lexer.KwTrue, lexer.KwFalse:
		b := &ast.Bool{Value: p.tok.Kind == lexer.KwTrue}
		b.At = p.tok.Pos
		return b, p.next()
	case lexer.MINUS, lexer.NOT, lexer.INCR, lexer.DECR:
		return p.parsePrefix()
	case lexer.String:
		s := &ast.String{Value: p.tok.Text}
		s.At = p.tok.Pos
		return s, p.next()
	case lexer.Char:
		c := &ast.Char{Value: p.tok.Text}
		c.At = p.tok.Pos
		return c, p.next()
	case lexer.LPAREN:
		return p.parseParenExpr()
	case lexer.LBRACKET:
		return p.parseInlineContainer()
	default:
		return nil, p.errorf("unexpected token %q", p.tok.Text)
	}
}

func (p *Parser) parseParenExpr() (ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return x, nil
}

// parsePrefix implements Prefix := ("-" | "!" | "++" | "--") DotAccess.
func (p *Parser) parsePrefix() (ast.Expr, error) {
	start := p.tok.Pos
	kind := p.tok.Kind
	if err := p.next(); err != nil {
		return nil, err
	}
	operand, err := p.parseDotAccess()
	if err != nil {
		return nil, err
	}
	switch kind {
	case lexer.MINUS:
		n := &ast.Negate{X: operand}
		n.At = start
		return n, nil
	case lexer.NOT:
		n := &ast.Not{X: operand}
		n.At = start
		return n, nil
	default:
		op := "++"
		if kind == lexer.DECR {
			op = "--"
		}
		pr := &ast.Prefix{Op: op, X: operand}
		pr.At = start
		return pr, nil
	}
}

// parseIdFunArray implements
// IdFunArray := (Id | BacktickId) { "(" [ArgList] ")" | "[" Expression "]" }.
func (p *Parser) parseIdFunArray() (ast.Expr, error) {
	start := p.tok.Pos
	name := p.tok.Text
	if err := p.next(); err != nil {
		return nil, err
	}
	id := &ast.Id{Name: name}
	id.At = start

	var result ast.Expr = id
	for {
		switch p.tok.Kind {
		case lexer.LPAREN:
			if err := p.next(); err != nil {
				return nil, err
			}
			args, err := p.parseExprArgList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
				return nil, err
			}
			call := &ast.FunCall{Callee: result, Args: args}
			call.At = start
			result = call
		case lexer.LBRACKET:
			if err := p.next(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			ac := &ast.ArrayCall{Object: result, Index: idx}
			ac.At = start
			result = ac
		default:
			return result, nil
		}
	}
}

// parseVarDecl implements VarDecl := "var" Id.
func (p *Parser) parseVarDecl() (ast.Expr, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if !p.at(lexer.Ident) {
		return nil, p.errorf("expected identifier after 'var'")
	}
	name := p.tok.Text
	if err := p.next(); err != nil {
		return nil, err
	}
	v := &ast.VarDecl{Name: name}
	v.At = start
	return v, nil
}

// parseLambda implements Lambda := "fun" ["(" [ArgList] ")"] Block.
func (p *Parser) parseLambda() (ast.Expr, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	var params []string
	if p.at(lexer.LPAREN) {
		if err := p.next(); err != nil {
			return nil, err
		}
		ps, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		params = ps
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	l := &ast.Lambda{Params: params, Body: body}
	l.At = start
	return l, nil
}

// parseInlineContainer implements
// InlineContainer := "[" [MapPair {"," MapPair}] "]"
// where a MapPair with ":" makes an Inline_Map, otherwise an Inline_Array.
func (p *Parser) parseInlineContainer() (ast.Expr, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.at(lexer.RBRACKET) {
		if err := p.next(); err != nil {
			return nil, err
		}
		arr := &ast.InlineArray{}
		arr.At = start
		return arr, nil
	}

	first, err := p.parseEquation()
	if err != nil {
		return nil, err
	}

	if p.at(lexer.COLON) {
		if err := p.next(); err != nil {
			return nil, err
		}
		val, err := p.parseEquation()
		if err != nil {
			return nil, err
		}
		m := &ast.InlineMap{Pairs: []ast.MapPair{{Key: first, Value: val}}}
		m.At = start
		for p.at(lexer.COMMA) {
			if err := p.next(); err != nil {
				return nil, err
			}
			k, err := p.parseEquation()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.COLON, "':'"); err != nil {
				return nil, err
			}
			v, err := p.parseEquation()
			if err != nil {
				return nil, err
			}
			m.Pairs = append(m.Pairs, ast.MapPair{Key: k, Value: v})
		}
		if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
			return nil, err
		}
		return m, nil
	}

	arr := &ast.InlineArray{Elements: []ast.Expr{first}}
	arr.At = start
	for p.at(lexer.COMMA) {
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.parseEquation()
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, e)
	}
	if _, err := p.expect(lexer.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return arr, nil
}
