package dsl

import (
	"regexp"
	"strings"
)

var (
	lineBreak     = regexp.MustCompile(`\r?\n`)
	indentPattern = regexp.MustCompile(`^( *)(.*)$`)
)

// Node is one element of a parsed program: either a line with its
// indentation stripped, or a nested Block.
type Node struct {
	Line  string
	Block Tree
}

// IsBlock reports whether the node is a nested sub-block.
func (n Node) IsBlock() bool {
	return n.Block != nil
}

// Tree is an ordered sequence of nodes at one indentation level.
type Tree []Node

// SplitLines splits program text on LF or CRLF.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// Parse builds a tree from lines starting at the given indentation column.
// A line indented deeper than the current block opens a nested block right
// after its predecessor; a shallower line closes the current block and is
// picked up again by the enclosing level.
func Parse(lines []string, indent int) Tree {
	p := &parser{lines: lines}
	return p.block(indent)
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) block(indent int) Tree {
	here := Tree{}
	for p.pos < len(p.lines) {
		spaces, command := splitIndent(p.lines[p.pos])
		switch {
		case spaces == indent:
			here = append(here, Node{Line: command})
			p.pos++
		case spaces > indent:
			here = append(here, Node{Block: p.block(spaces)})
		default:
			return here
		}
	}
	return here
}

func splitIndent(line string) (int, string) {
	m := indentPattern.FindStringSubmatch(line)
	if m == nil {
		// only reachable with an embedded newline; treat it as unindented text
		return 0, line
	}
	return len(m[1]), m[2]
}

// Flatten lists the lines of the tree depth-first, undoing Parse apart from indentation.
func (t Tree) Flatten() []string {
	var out []string
	for _, n := range t {
		if n.IsBlock() {
			out = append(out, n.Block.Flatten()...)
			continue
		}
		out = append(out, n.Line)
	}
	return out
}

// String renders the tree with two spaces per nesting level.
func (t Tree) String() string {
	var sb strings.Builder
	t.write(&sb, 0)
	return sb.String()
}

func (t Tree) write(sb *strings.Builder, depth int) {
	for _, n := range t {
		if n.IsBlock() {
			n.Block.write(sb, depth+1)
			continue
		}
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Line)
		sb.WriteString("\n")
	}
}
