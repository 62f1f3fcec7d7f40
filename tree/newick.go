package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Newick serializes the subtree rooted at n, terminated by ';'. Branch
// lengths use the shortest representation that parses back to the same
// float64 and are omitted when unset.
func Newick(n *Node) string {
	var sb strings.Builder
	writeNewick(&sb, n)
	sb.WriteByte(';')

	return sb.String()
}

func writeNewick(sb *strings.Builder, n *Node) {
	if len(n.children) > 0 {
		sb.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeNewick(sb, c)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(n.label)
	if !IsUnset(n.branchLength) {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(n.branchLength, 'g', -1, 64))
	}
}

// String returns the Newick form of the subtree rooted at n.
func (n *Node) String() string { return Newick(n) }

// ParseNewick parses a Newick string such as "((a:1,b:2)c:0.5,d);".
// Whitespace between tokens is ignored and the trailing ';' is optional.
// Quoted labels and comments are not supported.
func ParseNewick(s string) (*Node, error) {
	p := &newickParser{tokens: tokenizeNewick(s)}
	if len(p.tokens) == 0 {
		return nil, fmt.Errorf("ParseNewick(%q): empty input: %w", s, ErrMalformedNewick)
	}
	root, err := p.subtree()
	if err != nil {
		return nil, fmt.Errorf("ParseNewick(%q): %w", s, err)
	}
	if p.peek() == ";" {
		p.pos++
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("ParseNewick(%q): trailing token %q: %w", s, p.peek(), ErrMalformedNewick)
	}

	return root, nil
}

// MustParseNewick is ParseNewick for literals known to be valid; it panics
// on malformed input.
func MustParseNewick(s string) *Node {
	n, err := ParseNewick(s)
	if err != nil {
		panic(err)
	}

	return n
}

const newickPunct = "(),:;"

func tokenizeNewick(s string) []string {
	var tokens []string
	start := -1
	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, s[start:end])
			start = -1
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case strings.IndexByte(newickPunct, ch) >= 0:
			flush(i)
			tokens = append(tokens, s[i:i+1])
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(s))

	return tokens
}

type newickParser struct {
	tokens []string
	pos    int
}

func (p *newickParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}

	return p.tokens[p.pos]
}

func isNewickPunct(tok string) bool {
	return len(tok) == 1 && strings.Contains(newickPunct, tok)
}

// subtree := [ '(' subtree {',' subtree} ')' ] [label] [':' length]
func (p *newickParser) subtree() (*Node, error) {
	n := New()
	if p.peek() == "(" {
		p.pos++
		for {
			child, err := p.subtree()
			if err != nil {
				return nil, err
			}
			child.SetParent(n)
			switch p.peek() {
			case ",":
				p.pos++
				continue
			case ")":
				p.pos++
			default:
				return nil, fmt.Errorf("expected ',' or ')' at token %d: %w", p.pos, ErrMalformedNewick)
			}

			break
		}
	}
	if tok := p.peek(); tok != "" && !isNewickPunct(tok) {
		n.label = tok
		p.pos++
	}
	if p.peek() == ":" {
		p.pos++
		tok := p.peek()
		length, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("bad branch length %q: %w", tok, ErrMalformedNewick)
		}
		n.branchLength = length
		p.pos++
	}

	return n, nil
}
