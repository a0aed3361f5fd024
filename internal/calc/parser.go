package calc

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth bounds parenthesis and unary sign nesting
const DefaultMaxDepth = 100

var errTooDeep = errors.New("expression nested too deeply")

// node is an element of the expression tree
type node interface {
	eval() (Number, error)
}

type numberNode struct {
	value Number
}

func (n *numberNode) eval() (Number, error) {
	return n.value, nil
}

type unaryNode struct {
	op      tokenKind
	operand node
}

func (n *unaryNode) eval() (Number, error) {
	v, err := n.operand.eval()
	if err != nil {
		return Number{}, err
	}
	if n.op == tokenMinus {
		return v.neg(), nil
	}
	return v, nil
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n *binaryNode) eval() (Number, error) {
	l, err := n.left.eval()
	if err != nil {
		return Number{}, err
	}
	r, err := n.right.eval()
	if err != nil {
		return Number{}, err
	}
	return l.apply(n.op, r)
}

// parser is a recursive-descent parser over the grammar
//
//	expr    := term (("+" | "-") term)*
//	term    := unary (("*" | "/") unary)*
//	unary   := ("+" | "-") unary | primary
//	primary := NUMBER | "(" expr ")"
type parser struct {
	tokens   []token
	pos      int
	depth    int
	maxDepth int
}

// parse builds the tree for a whole expression
func parse(s string, maxDepth int) (node, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	p := &parser{tokens: tokens, maxDepth: maxDepth}
	if p.peek().kind == tokenEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}

	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %s", tok.kind)}
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return errTooDeep
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokenPlus && op != tokenMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) term() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokenStar && op != tokenSlash {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) unary() (node, error) {
	op := p.peek().kind
	if op != tokenPlus && op != tokenMinus {
		return p.primary()
	}
	p.next()

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &unaryNode{op: op, operand: operand}, nil
}

func (p *parser) primary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		v, err := parseNumber(tok.text, tok.pos)
		if err != nil {
			return nil, err
		}
		return &numberNode{value: v}, nil

	case tokenLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: fmt.Sprintf("expected ')', found %s", closing.kind)}
		}
		return inner, nil

	default:
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %s", tok.kind)}
	}
}
