// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package template

import "fmt"

type parser struct {
	lex  *lexer
	cur  token
	err  error
}

func parse(src string) (node, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, fmt.Errorf("template: unexpected trailing token %q", p.cur.text)
	}
	return n, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) expect(k tokenKind) error {
	if p.cur.kind != k {
		return fmt.Errorf("template: unexpected token %q", p.cur.text)
	}
	return p.advance()
}

func (p *parser) parseOr() (node, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		x = binOp{op: tokOr, x: x, y: y}
	}
	return x, nil
}

func (p *parser) parseAnd() (node, error) {
	x, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		x = binOp{op: tokAnd, x: x, y: y}
	}
	return x, nil
}

func (p *parser) parseNot() (node, error) {
	if p.cur.kind == tokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return unaryOp{op: '!', x: x}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[tokenKind]bool{
	tokEq: true, tokNe: true, tokLt: true, tokLe: true, tokGt: true, tokGe: true,
}

func (p *parser) parseComparison() (node, error) {
	x, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for comparisonOps[p.cur.kind] {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		x = binOp{op: op, x: x, y: y}
	}
	return x, nil
}

func (p *parser) parseAdd() (node, error) {
	x, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		x = binOp{op: op, x: x, y: y}
	}
	return x, nil
}

func (p *parser) parseMul() (node, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash || p.cur.kind == tokSlashSlash || p.cur.kind == tokPercent {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = binOp{op: op, x: x, y: y}
	}
	return x, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.cur.kind == tokMinus {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryOp{op: '-', x: x}, nil
	}
	return p.parsePipe()
}

func (p *parser) parsePipe() (node, error) {
	x, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPipe {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokIdent || p.cur.text != "length" {
			return nil, fmt.Errorf("template: only the 'length' filter is supported")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		x = length{base: x}
	}
	return x, nil
}

// parsePostfix parses a primary followed by any chain of .attr,
// [index] or [lo:hi] suffixes.
func (p *parser) parsePostfix() (node, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.kind {
		case tokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.kind != tokIdent {
				return nil, fmt.Errorf("template: expected attribute name after '.'")
			}
			name := p.cur.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			x = attr{base: x, name: name}
		case tokLBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			x, err = p.parseIndexOrSlice(x)
			if err != nil {
				return nil, err
			}
		default:
			return x, nil
		}
	}
}

// parseIndexOrSlice parses the contents of "[...]" after the opening
// bracket has already been consumed, and consumes the closing bracket.
func (p *parser) parseIndexOrSlice(base node) (node, error) {
	var lo node
	var err error
	if p.cur.kind != tokColon {
		lo, err = p.parseAdd()
		if err != nil {
			return nil, err
		}
	}
	if p.cur.kind == tokColon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var hi node
		if p.cur.kind != tokRBracket {
			hi, err = p.parseAdd()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expect(tokRBracket); err != nil {
			return nil, err
		}
		return index{base: base, lo: lo, hi: hi, isSlice: true}, nil
	}
	if err := p.expect(tokRBracket); err != nil {
		return nil, err
	}
	return index{base: base, lo: lo, isSlice: false}, nil
}

func (p *parser) parsePrimary() (node, error) {
	switch p.cur.kind {
	case tokInt:
		v := p.cur.ival
		if err := p.advance(); err != nil {
			return nil, err
		}
		return intLit(v), nil
	case tokString:
		v := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return stringLit(v), nil
	case tokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return boolLit(true), nil
	case tokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return boolLit(false), nil
	case tokNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return nullLit{}, nil
	case tokIdent:
		v := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ident(v), nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return x, nil
	}
	return nil, fmt.Errorf("template: unexpected token %q", p.cur.text)
}
