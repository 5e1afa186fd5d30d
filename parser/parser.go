// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser
//
// A Recursive descent parser is a top-down parser because it starts from
// the top grammar rule and works its way down in to the nested
// sub-expressions before reaching the leaves of the syntax tree (terminal
// rules).
package parser

import (
	"errors"
	"fmt"

	"nilan/ast"
	"nilan/builtins"
	"nilan/lexer"
	"nilan/token"
)

// Parser drives the lexer one token ahead (cur is the token being worked
// on, peek is the token after it) and maintains a shadow-aware symbol
// environment tracking variable and function declarations as it goes.
type Parser struct {
	lex     *lexer.Lexer
	cur     token.Token
	peekTok token.Token

	Symbols *Symbols
}

// New constructs a Parser over source text. symbols carries the variable
// and function tables across successive top-level expressions and, for a
// REPL, across successive turns; pass nil to start with an empty
// environment.
//
// NOTE: the parser's position is always one token ahead of cur.
func New(source string, symbols *Symbols) (*Parser, error) {
	if symbols == nil {
		symbols = NewSymbols()
	}
	p := &Parser{lex: lexer.New(source), Symbols: symbols, cur: token.Null()}

	first, err := p.nextToken()
	if err != nil {
		return nil, err
	}
	p.peekTok = first
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// nextToken pulls the next token from the lexer, turning its ErrEOF
// sentinel into the parser's synthetic eof token.
func (p *Parser) nextToken() (token.Token, error) {
	tok, err := p.lex.Next()
	if err != nil {
		if errors.Is(err, lexer.ErrEOF) {
			return token.EOFAt(p.lex.Pos()), nil
		}
		return token.Token{}, err
	}
	return tok, nil
}

// advance consumes cur and pulls in a new peek. On a lexer error, peek is
// forced to eof so callers looping on isFinished() always terminate.
func (p *Parser) advance() error {
	p.cur = p.peekTok
	tok, err := p.nextToken()
	if err != nil {
		p.peekTok = token.EOFAt(p.lex.Pos())
		return err
	}
	p.peekTok = tok
	return nil
}

func (p *Parser) curIs(tt token.TokenType) bool { return p.cur.Type == tt }
func (p *Parser) isFinished() bool              { return p.cur.Type == token.EOF }

// expect consumes cur if it matches tt, else reports a syntax error.
func (p *Parser) expect(tt token.TokenType, message string) (token.Token, error) {
	if !p.curIs(tt) {
		return token.Token{}, CreateSyntaxError(p.cur.Span, message)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return tok, err
	}
	return tok, nil
}

// ParseProgram parses every top-level expression in the source, collecting
// nodes that parsed successfully and every error encountered. On a parse
// failure it resynchronizes past the next terminator so later errors can
// still surface in the same pass.
func (p *Parser) ParseProgram() ([]ast.Node, []error) {
	var nodes []ast.Node
	var errs []error

	for !p.isFinished() {
		node, err := p.parseTopLevel()
		if err != nil {
			if !errors.Is(err, ErrNoResult) {
				errs = append(errs, err)
			}
			p.resync()
			continue
		}
		nodes = append(nodes, node)
	}

	return nodes, errs
}

// resync advances past tokens until just after the next terminator (or
// EOF), discarding any further lexer errors it meets along the way — it
// only needs to make forward progress, not produce a clean parse.
func (p *Parser) resync() {
	for !p.isFinished() {
		if p.curIs(token.SEMICOLON) || p.curIs(token.COLON) {
			p.advance()
			return
		}
		p.advance()
	}
}

// parseTopLevel parses one `expr := final_stage terminator` production.
func (p *Parser) parseTopLevel() (ast.Node, error) {
	if p.isFinished() {
		return nil, ErrNoResult
	}

	expr, err := p.finalStage()
	if err != nil {
		return nil, err
	}

	if p.curIs(token.SEMICOLON) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return expr, nil
	}
	if p.curIs(token.COLON) {
		colonSpan := p.cur.Span
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.Output{Inner: expr, SrcSpan: expr.Span().Merge(colonSpan)}, nil
	}
	return nil, CreateSyntaxError(p.cur.Span, "expected ';' or ':' to terminate the expression")
}

// finalStage is the grammar's `final_stage := bitor` entry point, exposed
// so parenthesized sub-expressions and function arguments can recurse into
// it directly.
func (p *Parser) finalStage() (ast.Node, error) {
	return p.bitor()
}

// leftAssocBinary is the shared left-associative loop every precedence
// level in the grammar table uses: parse one operand via next, then fold
// in `(op operand)*`.
func (p *Parser) leftAssocBinary(next func() (ast.Node, error), ops ...token.TokenType) (ast.Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.matchesAny(ops) {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		op, _ := ast.OperatorFromToken(opTok.Type)
		left = ast.BinaryOp{Op: op, Lhs: left, Rhs: right, SrcSpan: left.Span().Merge(right.Span())}
	}
	return left, nil
}

func (p *Parser) matchesAny(tts []token.TokenType) bool {
	for _, tt := range tts {
		if p.curIs(tt) {
			return true
		}
	}
	return false
}

func (p *Parser) bitor() (ast.Node, error) {
	return p.leftAssocBinary(p.bitxor, token.PIPE)
}

func (p *Parser) bitxor() (ast.Node, error) {
	return p.leftAssocBinary(p.bitand, token.CARET)
}

func (p *Parser) bitand() (ast.Node, error) {
	return p.leftAssocBinary(p.bitshift, token.AMP)
}

func (p *Parser) bitshift() (ast.Node, error) {
	return p.leftAssocBinary(p.term, token.SHL, token.SHR)
}

func (p *Parser) term() (ast.Node, error) {
	return p.leftAssocBinary(p.factor, token.PLUS, token.MINUS)
}

func (p *Parser) factor() (ast.Node, error) {
	return p.leftAssocBinary(p.expon, token.STAR, token.SLASH)
}

func (p *Parser) expon() (ast.Node, error) {
	return p.leftAssocBinary(p.unary, token.EXPONENT)
}

// unary handles prefix `+`/`-`; anything else falls through to base.
func (p *Parser) unary() (ast.Node, error) {
	if p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		op, _ := ast.OperatorFromToken(opTok.Type)
		return ast.UnaryOp{Op: op, Rhs: rhs, SrcSpan: opTok.Span.Merge(rhs.Span())}, nil
	}
	return p.base()
}

// base handles the grammar's terminal productions: literals, a
// parenthesized sub-expression, and every identifier-led form.
func (p *Parser) base() (ast.Node, error) {
	switch {
	case p.curIs(token.NUMBER):
		tok := p.cur
		v, err := lexer.ParseNumber(tok)
		if err != nil {
			return nil, CreateSyntaxError(tok.Span, err.Error())
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.Number{Value: v, SrcSpan: tok.Span}, nil

	case p.curIs(token.STRING):
		tok := p.cur
		s, err := lexer.DecodeString(tok.Lexeme, tok.Span)
		if err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.String{Value: s, SrcSpan: tok.Span}, nil

	case p.curIs(token.LPAREN):
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.finalStage()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "expected ')' to close the grouped expression"); err != nil {
			return nil, err
		}
		return inner, nil

	case p.curIs(token.IDENTIFIER):
		return p.identifierForm()

	default:
		return nil, CreateSyntaxError(p.cur.Span, fmt.Sprintf("unexpected token %q", p.cur.Lexeme))
	}
}

// identifierForm dispatches an identifier at the start of a base production
// to the right shape: a `let`/`delete` form, the `Null`/`print` keywords, or
// an ordinary reference to a previously bound name.
func (p *Parser) identifierForm() (ast.Node, error) {
	nameTok := p.cur
	name := nameTok.Lexeme
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch name {
	case "let":
		return p.parseLet(nameTok.Span)
	case "delete":
		return p.parseDelete(nameTok.Span)
	case "Null":
		return ast.Null{SrcSpan: nameTok.Span}, nil
	case "print":
		if p.curIs(token.LPAREN) {
			return p.parsePrint(nameTok.Span)
		}
		return nil, CreateSyntaxError(nameTok.Span, "'print' must be called as print(...)")
	default:
		return p.identifierReference(name, nameTok.Span)
	}
}

// parseLet handles every `let ...` form: `let x`, `let x = expr`, and
// `let f a b = body` (function declaration).
func (p *Parser) parseLet(letSpan token.Span) (ast.Node, error) {
	xTok, err := p.expect(token.IDENTIFIER, "expected an identifier after 'let'")
	if err != nil {
		return nil, err
	}
	x := xTok.Lexeme

	switch {
	case p.curIs(token.EQUAL):
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.finalStage()
		if err != nil {
			return nil, err
		}
		if err := p.checkDeclarable(x, xTok.Span); err != nil {
			return nil, err
		}
		p.Symbols.DeclareVariable(x)
		return ast.DeclareAssign{Name: x, Value: value, SrcSpan: letSpan.Merge(value.Span())}, nil

	case p.curIs(token.IDENTIFIER):
		return p.parseFunctionDecl(letSpan, x, xTok.Span)

	default:
		if err := p.checkDeclarable(x, xTok.Span); err != nil {
			return nil, err
		}
		p.Symbols.DeclareVariable(x)
		return ast.Declare{Name: x, SrcSpan: letSpan.Merge(xTok.Span)}, nil
	}
}

// parseFunctionDecl parses `f a b c = body`, having already consumed `let
// f`. Argument names are temporarily live as variables while the body
// parses so self-consistent references type-check; they are discarded
// again once the body is fully parsed.
func (p *Parser) parseFunctionDecl(letSpan token.Span, name string, nameSpan token.Span) (ast.Node, error) {
	if err := p.checkDeclarable(name, nameSpan); err != nil {
		return nil, err
	}

	var args []string
	for p.curIs(token.IDENTIFIER) {
		args = append(args, p.cur.Lexeme)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if len(args) == 1 && args[0] == "_" {
		args = nil
	}

	if _, err := p.expect(token.EQUAL, "expected '=' before the function body"); err != nil {
		return nil, err
	}

	snapshot := p.Symbols.Clone()
	p.Symbols.DeclareFunction(name, len(args))
	for _, a := range args {
		p.Symbols.DeclareVariable(a)
	}

	body, err := p.finalStage()
	if err != nil {
		p.Symbols.Restore(snapshot)
		return nil, err
	}

	snapshot.DeclareFunction(name, len(args))
	p.Symbols.Restore(snapshot)

	return ast.FunctionDecl{Name: name, Args: args, Body: body, SrcSpan: letSpan.Merge(body.Span())}, nil
}

// parseDelete handles `delete y`.
func (p *Parser) parseDelete(deleteSpan token.Span) (ast.Node, error) {
	yTok, err := p.expect(token.IDENTIFIER, "expected an identifier after 'delete'")
	if err != nil {
		return nil, err
	}
	y := yTok.Lexeme
	if builtins.IsBuiltin(y) || y == "print" {
		return nil, CreateSyntaxError(yTok.Span, fmt.Sprintf("'%s' is a built-in and cannot be deleted", y))
	}
	p.Symbols.Delete(y)
	return ast.Delete{Name: y, SrcSpan: deleteSpan.Merge(yTok.Span)}, nil
}

// parsePrint handles the variadic built-in `print(arg, arg, ...)`, having
// already consumed the `print` identifier.
func (p *Parser) parsePrint(printSpan token.Span) (ast.Node, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.RPAREN, "expected ')' after print's arguments")
	if err != nil {
		return nil, err
	}
	return ast.Print{Args: args, SrcSpan: printSpan.Merge(closeTok.Span)}, nil
}

// parseArgList parses a comma-separated argument list up to (but not
// consuming) the closing ')'.
func (p *Parser) parseArgList() ([]ast.Node, error) {
	var args []ast.Node
	if p.curIs(token.RPAREN) {
		return args, nil
	}
	for {
		arg, err := p.finalStage()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.curIs(token.COMMA) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return args, nil
}

// identifierReference resolves a plain identifier against the symbol
// tables — it must already refer to a prior binding — dispatching on
// what follows it.
func (p *Parser) identifierReference(name string, nameSpan token.Span) (ast.Node, error) {
	switch {
	case p.curIs(token.EQUAL):
		if err := p.checkVariableUse(name, nameSpan); err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.finalStage()
		if err != nil {
			return nil, err
		}
		return ast.Assign{Name: name, Value: value, SrcSpan: nameSpan.Merge(value.Span())}, nil

	case p.curIs(token.LPAREN):
		return p.parseFunctionCall(name, nameSpan)

	case token.IsCompoundAssign(p.cur.Type):
		if err := p.checkVariableUse(name, nameSpan); err != nil {
			return nil, err
		}
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.finalStage()
		if err != nil {
			return nil, err
		}
		op, _ := ast.OperatorFromToken(opTok.Type)
		return ast.AssignOp{Name: name, Op: op, Value: value, SrcSpan: nameSpan.Merge(value.Span())}, nil

	default:
		if err := p.checkVariableUse(name, nameSpan); err != nil {
			return nil, err
		}
		return ast.Identifier{Name: name, SrcSpan: nameSpan}, nil
	}
}

// parseFunctionCall parses `name(args)`, having already consumed `name`;
// checks dispatch against built-ins first (they can never be shadowed),
// then the user function table.
func (p *Parser) parseFunctionCall(name string, nameSpan token.Span) (ast.Node, error) {
	var arity int
	switch {
	case builtins.IsBuiltin(name):
		arity = builtins.Arity
	default:
		a, ok, shadowed := p.Symbols.LookupFunction(name)
		if !ok {
			if shadowed {
				return nil, CreateSyntaxError(nameSpan, fmt.Sprintf("'%s' is a variable here, not a function", name))
			}
			return nil, CreateSyntaxError(nameSpan, fmt.Sprintf("'%s' does not exist", name))
		}
		arity = a
	}

	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.RPAREN, fmt.Sprintf("expected ')' after arguments to '%s'", name))
	if err != nil {
		return nil, err
	}
	if len(args) != arity {
		return nil, CreateSyntaxError(nameSpan.Merge(closeTok.Span),
			fmt.Sprintf("'%s' expects %d argument(s), got %d", name, arity, len(args)))
	}
	return ast.FunctionCall{Name: name, Args: args, SrcSpan: nameSpan.Merge(closeTok.Span)}, nil
}

// checkDeclarable reports an error if name can never be declared — it
// names a built-in or the print keyword, neither of which may be shadowed.
func (p *Parser) checkDeclarable(name string, span token.Span) error {
	if builtins.IsBuiltin(name) || name == "print" {
		return CreateSyntaxError(span, fmt.Sprintf("'%s' is a built-in and cannot be redeclared", name))
	}
	return nil
}

// checkVariableUse reports an error if name cannot currently be used as a
// variable: it names a built-in/print, it is shadowed by a function, or it
// does not exist at all.
func (p *Parser) checkVariableUse(name string, span token.Span) error {
	if builtins.IsBuiltin(name) || name == "print" {
		return CreateSyntaxError(span, fmt.Sprintf("'%s' is a built-in function, not a variable", name))
	}
	ok, shadowed := p.Symbols.LookupVariable(name)
	if ok {
		return nil
	}
	if shadowed {
		return CreateSyntaxError(span, fmt.Sprintf("'%s' is a function here, not a variable", name))
	}
	return CreateSyntaxError(span, fmt.Sprintf("'%s' does not exist", name))
}
