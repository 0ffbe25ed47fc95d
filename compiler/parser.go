package compiler

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent parser for FluxScript
// ---------------------------------------------------------------------------

// Parser parses FluxScript source code into an AST.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	errors    []string
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// peekTokenIs checks if the peek token is of the given type.
func (p *Parser) peekTokenIs(t TokenType) bool {
	return p.peekToken.Type == t
}

// match advances past the current token if it has the given type.
func (p *Parser) match(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect advances if the current token matches, otherwise records an error.
func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s", t, p.curToken.Type)
	return false
}

// errorf records a parse error at the current token.
func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("line %d: %s", p.curToken.Pos.Line, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, msg)
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// synchronize skips tokens until a likely statement boundary, so one
// error does not cascade into dozens.
func (p *Parser) synchronize() {
	p.nextToken()
	for !p.curTokenIs(TokenEOF) {
		switch p.curToken.Type {
		case TokenLet, TokenIf, TokenWhile, TokenFor, TokenFunc,
			TokenReturn, TokenPrint, TokenBreak, TokenContinue, TokenRBrace:
			return
		}
		p.nextToken()
	}
}

// ParseProgram parses the whole input. Call Errors afterwards; the
// returned tree is partial when errors were recorded.
func (p *Parser) ParseProgram() *Program {
	prog := &Program{}
	for !p.curTokenIs(TokenEOF) {
		before := len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil && len(p.errors) == before {
			prog.Stmts = append(prog.Stmts, stmt)
		} else if len(p.errors) > before {
			p.synchronize()
		}
	}
	return prog
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() Stmt {
	switch p.curToken.Type {
	case TokenLet:
		return p.parseLetStatement()
	case TokenIf:
		return p.parseIfStatement()
	case TokenWhile:
		return p.parseWhileStatement()
	case TokenFor:
		return p.parseForStatement()
	case TokenBreak:
		pos := p.curToken.Pos
		p.nextToken()
		return &BreakStmt{PosVal: pos}
	case TokenContinue:
		pos := p.curToken.Pos
		p.nextToken()
		return &ContinueStmt{PosVal: pos}
	case TokenFunc:
		// 'func (' starts a lambda expression, not a definition
		if p.peekTokenIs(TokenIdent) {
			return p.parseFuncStatement()
		}
		return p.parseExpressionStatement()
	case TokenReturn:
		return p.parseReturnStatement()
	case TokenPrint:
		return p.parsePrintStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() Stmt {
	pos := p.curToken.Pos
	p.nextToken() // consume 'let'
	if !p.curTokenIs(TokenIdent) {
		p.errorf("expected variable name after 'let', got %s", p.curToken.Type)
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()
	if !p.expect(TokenEquals) {
		return nil
	}
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &LetStmt{PosVal: pos, Name: name, Value: value}
}

func (p *Parser) parseIfStatement() Stmt {
	pos := p.curToken.Pos
	p.nextToken() // consume 'if'
	if !p.expect(TokenLParen) {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil || !p.expect(TokenRParen) {
		return nil
	}
	then := p.parseBlock()
	if then == nil {
		return nil
	}
	var els *BlockStmt
	if p.match(TokenElse) {
		els = p.parseBlock()
		if els == nil {
			return nil
		}
	}
	return &IfStmt{PosVal: pos, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhileStatement() Stmt {
	pos := p.curToken.Pos
	p.nextToken() // consume 'while'
	if !p.expect(TokenLParen) {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil || !p.expect(TokenRParen) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &WhileStmt{PosVal: pos, Cond: cond, Body: body}
}

func (p *Parser) parseForStatement() Stmt {
	pos := p.curToken.Pos
	p.nextToken() // consume 'for'
	if !p.expect(TokenLParen) || !p.expect(TokenLet) {
		return nil
	}
	if !p.curTokenIs(TokenIdent) {
		p.errorf("expected loop variable name, got %s", p.curToken.Type)
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()
	if !p.expect(TokenEquals) {
		return nil
	}
	start := p.parseExpression()
	if start == nil || !p.expect(TokenTo) {
		return nil
	}
	end := p.parseExpression()
	if end == nil {
		return nil
	}
	var step Expr
	if p.match(TokenStep) {
		step = p.parseExpression()
		if step == nil {
			return nil
		}
	}
	if !p.expect(TokenRParen) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ForStmt{PosVal: pos, Name: name, Start: start, End: end, Step: step, Body: body}
}

func (p *Parser) parseFuncStatement() Stmt {
	pos := p.curToken.Pos
	p.nextToken() // consume 'func'
	name := p.curToken.Literal
	p.nextToken()
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &FuncStmt{PosVal: pos, Name: name, Params: params, Body: body}
}

// parseParams parses a parenthesized parameter name list.
func (p *Parser) parseParams() ([]string, bool) {
	if !p.expect(TokenLParen) {
		return nil, false
	}
	var params []string
	if !p.curTokenIs(TokenRParen) {
		for {
			if !p.curTokenIs(TokenIdent) {
				p.errorf("expected parameter name, got %s", p.curToken.Type)
				return nil, false
			}
			params = append(params, p.curToken.Literal)
			p.nextToken()
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if !p.expect(TokenRParen) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseReturnStatement() Stmt {
	pos := p.curToken.Pos
	p.nextToken() // consume 'return'
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &ReturnStmt{PosVal: pos, Value: value}
}

func (p *Parser) parsePrintStatement() Stmt {
	pos := p.curToken.Pos
	p.nextToken() // consume 'print'
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return &PrintStmt{PosVal: pos, Value: value}
}

func (p *Parser) parseBlock() *BlockStmt {
	pos := p.curToken.Pos
	if !p.expect(TokenLBrace) {
		return nil
	}
	block := &BlockStmt{PosVal: pos}
	for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) {
		before := len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil && len(p.errors) == before {
			block.Stmts = append(block.Stmts, stmt)
		} else if len(p.errors) > before {
			p.synchronize()
		}
	}
	if !p.expect(TokenRBrace) {
		return nil
	}
	return block
}

// parseExpressionStatement parses an expression and then checks for the
// 'assign' keyword, which turns it into a rebinding or indexed store.
func (p *Parser) parseExpressionStatement() Stmt {
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if p.curTokenIs(TokenAssign) {
		p.nextToken() // consume 'assign'
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		switch target := expr.(type) {
		case *Ident:
			return &AssignStmt{PosVal: target.PosVal, Name: target.Name, Value: value}
		case *IndexExpr:
			return &IndexAssignStmt{PosVal: target.PosVal, Target: target, Value: value}
		default:
			p.errorf("invalid assignment target")
			return nil
		}
	}
	return &ExprStmt{X: expr}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Precedence climbs: or < and < equality < comparison < term < factor <
// power < unary < call/index < primary.

func (p *Parser) parseExpression() Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() Expr {
	expr := p.parseAnd()
	for expr != nil && p.curTokenIs(TokenOr) {
		op := p.curToken
		p.nextToken()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		expr = &BinaryExpr{PosVal: op.Pos, Op: op.Literal, X: expr, Y: right}
	}
	return expr
}

func (p *Parser) parseAnd() Expr {
	expr := p.parseEquality()
	for expr != nil && p.curTokenIs(TokenAnd) {
		op := p.curToken
		p.nextToken()
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		expr = &BinaryExpr{PosVal: op.Pos, Op: op.Literal, X: expr, Y: right}
	}
	return expr
}

func (p *Parser) parseEquality() Expr {
	expr := p.parseComparison()
	for expr != nil && (p.curTokenIs(TokenEqEq) || p.curTokenIs(TokenNotEq)) {
		op := p.curToken
		p.nextToken()
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		expr = &BinaryExpr{PosVal: op.Pos, Op: op.Literal, X: expr, Y: right}
	}
	return expr
}

func (p *Parser) parseComparison() Expr {
	expr := p.parseTerm()
	for expr != nil && (p.curTokenIs(TokenLess) || p.curTokenIs(TokenLessEq) ||
		p.curTokenIs(TokenGreater) || p.curTokenIs(TokenGreaterEq)) {
		op := p.curToken
		p.nextToken()
		right := p.parseTerm()
		if right == nil {
			return nil
		}
		expr = &BinaryExpr{PosVal: op.Pos, Op: op.Literal, X: expr, Y: right}
	}
	return expr
}

func (p *Parser) parseTerm() Expr {
	expr := p.parseFactor()
	for expr != nil && (p.curTokenIs(TokenPlus) || p.curTokenIs(TokenMinus)) {
		op := p.curToken
		p.nextToken()
		right := p.parseFactor()
		if right == nil {
			return nil
		}
		expr = &BinaryExpr{PosVal: op.Pos, Op: op.Literal, X: expr, Y: right}
	}
	return expr
}

func (p *Parser) parseFactor() Expr {
	expr := p.parsePower()
	for expr != nil && (p.curTokenIs(TokenStar) || p.curTokenIs(TokenSlash) || p.curTokenIs(TokenPercent)) {
		op := p.curToken
		p.nextToken()
		right := p.parsePower()
		if right == nil {
			return nil
		}
		expr = &BinaryExpr{PosVal: op.Pos, Op: op.Literal, X: expr, Y: right}
	}
	return expr
}

func (p *Parser) parsePower() Expr {
	expr := p.parseUnary()
	for expr != nil && p.curTokenIs(TokenPower) {
		op := p.curToken
		p.nextToken()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		expr = &BinaryExpr{PosVal: op.Pos, Op: op.Literal, X: expr, Y: right}
	}
	return expr
}

func (p *Parser) parseUnary() Expr {
	if p.curTokenIs(TokenMinus) || p.curTokenIs(TokenNot) {
		op := p.curToken
		p.nextToken()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		return &UnaryExpr{PosVal: op.Pos, Op: op.Literal, X: right}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any number of
// call and index suffixes.
func (p *Parser) parsePostfix() Expr {
	expr := p.parsePrimary()
	for expr != nil {
		switch {
		case p.curTokenIs(TokenLParen):
			pos := p.curToken.Pos
			p.nextToken() // consume '('
			var args []Expr
			if !p.curTokenIs(TokenRParen) {
				for {
					arg := p.parseExpression()
					if arg == nil {
						return nil
					}
					args = append(args, arg)
					if !p.match(TokenComma) {
						break
					}
				}
			}
			if !p.expect(TokenRParen) {
				return nil
			}
			expr = &CallExpr{PosVal: pos, Callee: expr, Args: args}

		case p.curTokenIs(TokenLBracket):
			pos := p.curToken.Pos
			p.nextToken() // consume '['
			index := p.parseExpression()
			if index == nil || !p.expect(TokenRBracket) {
				return nil
			}
			expr = &IndexExpr{PosVal: pos, Container: expr, Index: index}

		default:
			return expr
		}
	}
	return expr
}

func (p *Parser) parsePrimary() Expr {
	tok := p.curToken
	switch tok.Type {
	case TokenInt:
		p.nextToken()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorf("invalid integer literal %q", tok.Literal)
			return nil
		}
		return &IntLit{PosVal: tok.Pos, Value: v}

	case TokenFloat:
		p.nextToken()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf("invalid float literal %q", tok.Literal)
			return nil
		}
		return &FloatLit{PosVal: tok.Pos, Value: v}

	case TokenString:
		p.nextToken()
		return &StringLit{PosVal: tok.Pos, Value: tok.Literal}

	case TokenTrue:
		p.nextToken()
		return &BoolLit{PosVal: tok.Pos, Value: true}

	case TokenFalse:
		p.nextToken()
		return &BoolLit{PosVal: tok.Pos, Value: false}

	case TokenNone:
		p.nextToken()
		return &NoneLit{PosVal: tok.Pos}

	case TokenIdent:
		p.nextToken()
		// 'name append value' sugars to __append(name, value), with an
		// optional 'to' for readability.
		if p.curTokenIs(TokenIdent) && p.curToken.Literal == "append" {
			p.nextToken() // consume 'append'
			if p.curTokenIs(TokenTo) {
				p.nextToken()
			}
			value := p.parseExpression()
			if value == nil {
				return nil
			}
			return &CallExpr{
				PosVal: tok.Pos,
				Callee: &Ident{PosVal: tok.Pos, Name: "__append"},
				Args:   []Expr{&Ident{PosVal: tok.Pos, Name: tok.Literal}, value},
			}
		}
		return &Ident{PosVal: tok.Pos, Name: tok.Literal}

	case TokenFunc:
		return p.parseFuncLit()

	case TokenLParen:
		p.nextToken()
		expr := p.parseExpression()
		if expr == nil || !p.expect(TokenRParen) {
			return nil
		}
		return expr

	case TokenLBracket:
		p.nextToken()
		lit := &ArrayLit{PosVal: tok.Pos}
		if !p.curTokenIs(TokenRBracket) {
			for {
				elem := p.parseExpression()
				if elem == nil {
					return nil
				}
				lit.Elems = append(lit.Elems, elem)
				if !p.match(TokenComma) {
					break
				}
			}
		}
		if !p.expect(TokenRBracket) {
			return nil
		}
		return lit

	case TokenLBrace:
		p.nextToken()
		lit := &MapLit{PosVal: tok.Pos}
		if !p.curTokenIs(TokenRBrace) {
			for {
				key := p.parseExpression()
				if key == nil || !p.expect(TokenColon) {
					return nil
				}
				value := p.parseExpression()
				if value == nil {
					return nil
				}
				lit.Pairs = append(lit.Pairs, MapEntry{Key: key, Value: value})
				if !p.match(TokenComma) {
					break
				}
			}
		}
		if !p.expect(TokenRBrace) {
			return nil
		}
		return lit

	default:
		p.errorf("expected expression, got %s", tok.Type)
		return nil
	}
}

// parseFuncLit parses an anonymous function expression: func (params) { body }.
func (p *Parser) parseFuncLit() Expr {
	pos := p.curToken.Pos
	p.nextToken() // consume 'func'
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &FuncLit{PosVal: pos, Params: params, Body: body}
}
