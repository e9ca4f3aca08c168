package syntax

import "strings"

// Print renders a function definition back to source text from its leaves.
// Layout follows the original token positions, shifted so the definition
// starts at column zero. Runs of blank lines collapse to one.
func Print(fn *FuncDef) string {
	return PrintLeaves(fn.Leaves)
}

// PrintLeaves renders an arbitrary run of leaves the same way Print does.
func PrintLeaves(leaves []*Token) string {
	var b strings.Builder
	first := true
	var base, row, col int
	for _, tok := range leaves {
		if tok.Text == "" {
			continue
		}
		if first {
			base, row, col = tok.Start.Col, tok.Start.Row, tok.Start.Col
			first = false
		}
		switch {
		case tok.Start.Row > row:
			gap := tok.Start.Row - row
			if gap > 2 {
				gap = 2
			}
			b.WriteString(strings.Repeat("\n", gap))
			if indent := tok.Start.Col - base; indent > 0 {
				b.WriteString(strings.Repeat(" ", indent))
			}
		case tok.Start.Col > col:
			b.WriteString(strings.Repeat(" ", tok.Start.Col-col))
		}
		b.WriteString(tok.Text)
		row, col = tok.End.Row, tok.End.Col
	}
	if first {
		return ""
	}
	b.WriteByte('\n')
	return b.String()
}
