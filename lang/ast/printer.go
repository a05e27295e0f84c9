package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer pretty-prints a list of statements as an indented tree, one node
// per line, for use by the `lox parse` and `lox resolve` developer
// commands.
type Printer struct {
	// Output is the writer printed nodes are written to.
	Output io.Writer

	// Resolved, when non-nil, is consulted for every Variable/Assign/
	// This/Super expression printed; its result (if ok) is appended to the
	// node's line as "@depth N", or "@global" when there is no entry. Other
	// nodes are printed without annotation.
	Resolved func(exprID int) (depth int, ok bool)
}

// Print walks stmts and writes an indented description of each node to
// p.Output.
func (p *Printer) Print(stmts []Stmt) error {
	pp := &printer{w: p.Output, resolved: p.Resolved}
	for _, s := range stmts {
		Walk(pp, s)
	}
	return pp.err
}

type printer struct {
	w        io.Writer
	depth    int
	err      error
	resolved func(exprID int) (int, bool)
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if p.err != nil {
		return nil
	}
	if dir == VisitExit {
		p.depth--
		return p
	}

	label := describe(n)
	switch n.(type) {
	case *Variable, *Assign, *This, *Super:
		if p.resolved == nil {
			break
		}
		if d, ok := p.resolved(n.(Expr).ID()); ok {
			label += fmt.Sprintf(" @depth %d", d)
		} else {
			label += " @global"
		}
	}

	_, err := fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.depth), label)
	if err != nil {
		p.err = err
		return nil
	}
	p.depth++
	return p
}

func describe(n Node) string {
	switch n := n.(type) {
	case *Assign:
		return "assign " + n.Name.Lexeme
	case *Binary:
		return "binary " + n.Op.Lexeme
	case *Call:
		return "call"
	case *Get:
		return "get ." + n.Name.Lexeme
	case *Grouping:
		return "group"
	case *Literal:
		return fmt.Sprintf("literal %v", n.Value)
	case *Logical:
		return "logical " + n.Op.Lexeme
	case *Set:
		return "set ." + n.Name.Lexeme
	case *Super:
		return "super ." + n.Method.Lexeme
	case *This:
		return "this"
	case *Unary:
		return "unary " + n.Op.Lexeme
	case *Variable:
		return "var-ref " + n.Name.Lexeme

	case *Block:
		return "block"
	case *Class:
		lbl := "class " + n.Name.Lexeme
		if n.Superclass != nil {
			lbl += " < " + n.Superclass.Name.Lexeme
		}
		return lbl
	case *Expression:
		return "expr-stmt"
	case *Function:
		return "fun " + n.Name.Lexeme
	case *If:
		return "if"
	case *Print:
		return "print"
	case *Return:
		return "return"
	case *Var:
		return "var " + n.Name.Lexeme
	case *While:
		return "while"
	default:
		return fmt.Sprintf("%T", n)
	}
}
