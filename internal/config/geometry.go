package config

import (
	"fmt"
	"strconv"
)

// ParseGeometry parses an X geometry string of the form [=][W[xH]][{+-}X[{+-}Y]].
// Parts missing from s keep their value from base.
func ParseGeometry(s string, base Geometry) (Geometry, error) {
	g := base
	p := geometryParser{s: s}

	if p.peek() == '=' {
		p.i++
	}

	if isDigit(p.peek()) {
		w, err := p.number()
		if err != nil {
			return base, p.errorf(err)
		}
		g.Width = w
	}

	if c := p.peek(); c == 'x' || c == 'X' {
		p.i++
		if !isDigit(p.peek()) {
			return base, p.errorf(fmt.Errorf("missing height"))
		}
		h, err := p.number()
		if err != nil {
			return base, p.errorf(err)
		}
		g.Height = h
	}

	if c := p.peek(); c == '+' || c == '-' {
		x, err := p.offset()
		if err != nil {
			return base, p.errorf(err)
		}
		g.X = x

		if c := p.peek(); c == '+' || c == '-' {
			y, err := p.offset()
			if err != nil {
				return base, p.errorf(err)
			}
			g.Y = y
		}
	}

	if p.i != len(s) || len(s) == 0 {
		return base, p.errorf(fmt.Errorf("unexpected %q", s[p.i:]))
	}

	return g, nil
}

type geometryParser struct {
	s string
	i int
}

func (p *geometryParser) peek() byte {
	if p.i >= len(p.s) {
		return 0
	}
	return p.s[p.i]
}

func (p *geometryParser) number() (int, error) {
	start := p.i
	for isDigit(p.peek()) {
		p.i++
	}
	return strconv.Atoi(p.s[start:p.i])
}

func (p *geometryParser) offset() (int, error) {
	sign := 1
	if p.peek() == '-' {
		sign = -1
	}
	p.i++
	if !isDigit(p.peek()) {
		return 0, fmt.Errorf("missing offset")
	}
	n, err := p.number()
	return sign * n, err
}

func (p *geometryParser) errorf(err error) error {
	return fmt.Errorf("%w: invalid geometry %q: %w", ErrUsage, p.s, err)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
