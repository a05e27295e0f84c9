// Package parser implements the recursive-descent parser that turns a token
// stream into a program (a slice of ast.Stmt), with panic-mode error
// recovery at statement boundaries.
package parser

import (
	"fmt"

	"github.com/loxlang/lox/lang/ast"
	"github.com/loxlang/lox/lang/token"
)

// ErrHandler is called once for every parse error encountered, with the
// offending token (an EOF token indicates "at end") and a message.
type ErrHandler func(tok token.Token, msg string)

// errParse is the sentinel panic value used for panic-mode recovery. It
// carries no data; the parser always knows what to report before panicking.
var errParse = fmt.Errorf("parse error")

// Parse parses toks (which must end with an EOF token, as produced by
// scanner.Scanner.ScanTokens) into a program. Parsing never stops at the
// first error: on a parse error, the parser reports it via errFn, then
// recovers at the next statement boundary and continues, so the returned
// slice always reflects everything that could be parsed. Callers must check
// whether errFn was ever invoked (e.g. by counting calls) before treating
// the result as usable.
func Parse(toks []token.Token, errFn ErrHandler) []ast.Stmt {
	p := &parser{toks: toks, errFn: errFn}
	var stmts []ast.Stmt
	for !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

type parser struct {
	toks    []token.Token
	current int
	errFn   ErrHandler
}

// ====================
// declarations & statements
// ====================

func (p *parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != errParse {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.check(token.CLASS):
		return p.classDecl()
	case p.check(token.FUN):
		p.advance()
		return p.function("function")
	case p.check(token.VAR):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *parser) classDecl() ast.Stmt {
	line := p.peek().Line
	p.advance() // 'class'
	name := p.consume(token.IDENT, "Expect class name.")

	var superclass *ast.Variable
	if p.match(token.LT) {
		superName := p.consume(token.IDENT, "Expect superclass name.")
		superclass = ast.NewVariable(superName.Line, superName)
	}

	p.consume(token.LBRACE, "Expect '{' before class body.")
	var methods []*ast.Function
	for !p.check(token.RBRACE) && !p.atEnd() {
		methods = append(methods, p.function("method"))
	}
	p.consume(token.RBRACE, "Expect '}' after class body.")

	return ast.NewClass(line, name, superclass, methods)
}

func (p *parser) function(kind string) *ast.Function {
	line := p.peek().Line
	name := p.consume(token.IDENT, "Expect "+kind+" name.")
	p.consume(token.LPAREN, "Expect '(' after "+kind+" name.")

	var params []token.Token
	if !p.check(token.RPAREN) {
		for {
			params = append(params, p.consume(token.IDENT, "Expect parameter name."))
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")

	p.consume(token.LBRACE, "Expect '{' before "+kind+" body.")
	body := p.block()
	return ast.NewFunction(line, name, params, body)
}

func (p *parser) varDecl() ast.Stmt {
	line := p.peek().Line
	p.advance() // 'var'
	name := p.consume(token.IDENT, "Expect variable name.")

	var init ast.Expr
	if p.match(token.EQ) {
		init = p.expression()
	}
	p.consume(token.SEMI, "Expect ';' after variable declaration.")
	return ast.NewVar(line, name, init)
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.check(token.FOR):
		return p.forStmt()
	case p.check(token.IF):
		return p.ifStmt()
	case p.check(token.PRINT):
		return p.printStmt()
	case p.check(token.RETURN):
		return p.returnStmt()
	case p.check(token.WHILE):
		return p.whileStmt()
	case p.check(token.LBRACE):
		line := p.peek().Line
		p.advance()
		return ast.NewBlock(line, p.block())
	default:
		return p.exprStmt()
	}
}

func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.atEnd() {
		if s := p.declaration(); s != nil {
			stmts = append(stmts, s)
		}
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
	return stmts
}

func (p *parser) ifStmt() ast.Stmt {
	line := p.peek().Line
	p.advance() // 'if'
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RPAREN, "Expect ')' after if condition.")

	then := p.statement()
	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.statement()
	}
	return ast.NewIf(line, cond, then, els)
}

func (p *parser) printStmt() ast.Stmt {
	line := p.peek().Line
	p.advance() // 'print'
	value := p.expression()
	p.consume(token.SEMI, "Expect ';' after value.")
	return ast.NewPrint(line, value)
}

func (p *parser) returnStmt() ast.Stmt {
	keyword := p.peek()
	p.advance() // 'return'

	var value ast.Expr
	if !p.check(token.SEMI) {
		value = p.expression()
	}
	p.consume(token.SEMI, "Expect ';' after return value.")
	return ast.NewReturn(keyword.Line, keyword, value)
}

func (p *parser) whileStmt() ast.Stmt {
	line := p.peek().Line
	p.advance() // 'while'
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")
	body := p.statement()
	return ast.NewWhile(line, cond, body)
}

// forStmt desugars for (init; cond; inc) body into
// Block([init, While(cond, Block([body, Expression(inc)]))]) per spec.md
// §4.2's desugaring rule.
func (p *parser) forStmt() ast.Stmt {
	line := p.peek().Line
	p.advance() // 'for'
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.SEMI):
		init = nil
	case p.check(token.VAR):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.SEMI) {
		cond = p.expression()
	}
	p.consume(token.SEMI, "Expect ';' after loop condition.")

	var inc ast.Expr
	if !p.check(token.RPAREN) {
		inc = p.expression()
	}
	p.consume(token.RPAREN, "Expect ')' after for clauses.")

	body := p.statement()

	if inc != nil {
		body = ast.NewBlock(line, []ast.Stmt{body, ast.NewExpression(line, inc)})
	}
	if cond == nil {
		cond = ast.NewLiteral(line, true)
	}
	var loop ast.Stmt = ast.NewWhile(line, cond, body)
	if init != nil {
		loop = ast.NewBlock(line, []ast.Stmt{init, loop})
	}
	return loop
}

func (p *parser) exprStmt() ast.Stmt {
	line := p.peek().Line
	expr := p.expression()
	p.consume(token.SEMI, "Expect ';' after expression.")
	return ast.NewExpression(line, expr)
}

// ====================
// expressions
// ====================

func (p *parser) expression() ast.Expr { return p.assignment() }

func (p *parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.EQ) {
		equals := p.previous()
		value := p.assignment()

		switch e := expr.(type) {
		case *ast.Variable:
			return ast.NewAssign(e.Line(), e.Name, value)
		case *ast.Get:
			return ast.NewSet(e.Line(), e.Object, e.Name, value)
		default:
			p.error(equals, "Invalid assignment target.")
			return expr
		}
	}
	return expr
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for p.check(token.OR) {
		op := p.advance()
		right := p.and()
		expr = ast.NewLogical(expr.Line(), expr, op, right)
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.equality()
	for p.check(token.AND) {
		op := p.advance()
		right := p.equality()
		expr = ast.NewLogical(expr.Line(), expr, op, right)
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	expr := p.comparison()
	for p.checkAny(token.BANG_EQ, token.EQ_EQ) {
		op := p.advance()
		right := p.comparison()
		expr = ast.NewBinary(expr.Line(), expr, op, right)
	}
	return expr
}

func (p *parser) comparison() ast.Expr {
	expr := p.term()
	for p.checkAny(token.GT, token.GT_EQ, token.LT, token.LT_EQ) {
		op := p.advance()
		right := p.term()
		expr = ast.NewBinary(expr.Line(), expr, op, right)
	}
	return expr
}

func (p *parser) term() ast.Expr {
	expr := p.factor()
	for p.checkAny(token.MINUS, token.PLUS) {
		op := p.advance()
		right := p.factor()
		expr = ast.NewBinary(expr.Line(), expr, op, right)
	}
	return expr
}

func (p *parser) factor() ast.Expr {
	expr := p.unary()
	for p.checkAny(token.SLASH, token.STAR) {
		op := p.advance()
		right := p.unary()
		expr = ast.NewBinary(expr.Line(), expr, op, right)
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.checkAny(token.BANG, token.MINUS) {
		op := p.advance()
		right := p.unary()
		return ast.NewUnary(op.Line, op, right)
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.check(token.LPAREN):
			p.advance()
			expr = p.finishCall(expr)
		case p.check(token.DOT):
			p.advance()
			name := p.consume(token.IDENT, "Expect property name after '.'.")
			expr = ast.NewGet(expr.Line(), expr, name)
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren := p.consume(token.RPAREN, "Expect ')' after arguments.")
	return ast.NewCall(callee.Line(), callee, paren, args)
}

func (p *parser) primary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.FALSE:
		p.advance()
		return ast.NewLiteral(tok.Line, false)
	case token.TRUE:
		p.advance()
		return ast.NewLiteral(tok.Line, true)
	case token.NIL:
		p.advance()
		return ast.NewLiteral(tok.Line, nil)
	case token.NUMBER, token.STRING:
		p.advance()
		return ast.NewLiteral(tok.Line, tok.Literal)
	case token.SUPER:
		p.advance()
		p.consume(token.DOT, "Expect '.' after 'super'.")
		method := p.consume(token.IDENT, "Expect superclass method name.")
		return ast.NewSuper(tok.Line, tok, method)
	case token.THIS:
		p.advance()
		return ast.NewThis(tok.Line, tok)
	case token.IDENT:
		p.advance()
		return ast.NewVariable(tok.Line, tok)
	case token.LPAREN:
		p.advance()
		expr := p.expression()
		p.consume(token.RPAREN, "Expect ')' after expression.")
		return ast.NewGrouping(tok.Line, expr)
	default:
		p.error(tok, "Expect expression.")
		panic(errParse)
	}
}

// ====================
// token helpers
// ====================

func (p *parser) peek() token.Token     { return p.toks[p.current] }
func (p *parser) previous() token.Token { return p.toks[p.current-1] }
func (p *parser) atEnd() bool           { return p.peek().Kind == token.EOF }

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) check(kind token.Kind) bool {
	return !p.atEnd() && p.peek().Kind == kind
}

func (p *parser) checkAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *parser) match(kind token.Kind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(kind token.Kind, msg string) token.Token {
	if p.check(kind) {
		return p.advance()
	}
	p.error(p.peek(), msg)
	panic(errParse)
}

func (p *parser) error(tok token.Token, msg string) {
	if p.errFn != nil {
		p.errFn(tok, msg)
	}
}

// synchronize discards tokens until it reaches a likely statement boundary:
// just after a ';', or just before a keyword that starts a new statement.
// A statement keyword that caused the error is kept, since every declaration
// starting with such a keyword has already consumed it.
func (p *parser) synchronize() {
	if !p.startsStatement() {
		p.advance()
	}
	for !p.atEnd() {
		if p.startsStatement() {
			return
		}
		if p.previous().Kind == token.SEMI {
			return
		}
		p.advance()
	}
}

func (p *parser) startsStatement() bool {
	switch p.peek().Kind {
	case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
		return true
	}
	return false
}
