// Package resolver performs the static analysis pass between parsing and
// interpretation: it walks the program once to compute, for every variable
// reference, how many enclosing scopes separate it from its declaration,
// and rejects a handful of Lox programs that are syntactically valid but
// never meaningfully executable (a bare top-level return, `this` outside a
// class, and so on).
//
// The walk is a direct recursive type switch over the statement and
// expression nodes; it does not use ast.Walk/ast.Visitor.
package resolver

import (
	"github.com/loxlang/lox/lang/ast"
	"github.com/loxlang/lox/lang/token"
)

// ResolveFunc is called once for every Variable, Assign, This or Super
// expression that resolves to a non-global binding, reporting the number of
// scopes between the expression's own scope and the one that declares the
// name.
type ResolveFunc func(exprID int, depth int)

// ErrHandler is called once for every static error found while resolving.
type ErrHandler func(tok token.Token, msg string)

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classClass
	classSubclass
)

// Resolver performs the single static-analysis pass described above.
type Resolver struct {
	resolve ResolveFunc
	errFn   ErrHandler

	scopes []map[string]bool

	currentFunction functionKind
	currentClass    classKind
}

// New creates a Resolver. resolve is invoked for every non-global binding
// found; errFn is invoked for every static error.
func New(resolve ResolveFunc, errFn ErrHandler) *Resolver {
	return &Resolver{resolve: resolve, errFn: errFn}
}

// Resolve walks stmts, a whole program (or REPL input batch), resolving
// every expression it contains. It may be called more than once on the
// same Resolver for successive REPL inputs sharing the outer (global)
// scope, since the global scope is never pushed onto r.scopes.
func (r *Resolver) Resolve(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

// ====================
// scopes
// ====================

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, map[string]bool{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.error(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

func (r *Resolver) defineSynthetic(name string) {
	r.scopes[len(r.scopes)-1][name] = true
}

// resolveLocal walks the scope stack from innermost outward, reporting the
// first scope that contains name, if any; an unresolved name is left to
// the interpreter's globals.
func (r *Resolver) resolveLocal(exprID int, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.resolve(exprID, len(r.scopes)-1-i)
			return
		}
	}
}

func (r *Resolver) error(tok token.Token, msg string) {
	if r.errFn != nil {
		r.errFn(tok, msg)
	}
}

// ====================
// statements
// ====================

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Block:
		r.beginScope()
		r.Resolve(s.Stmts)
		r.endScope()

	case *ast.Class:
		r.resolveClass(s)

	case *ast.Expression:
		r.resolveExpr(s.Expr)

	case *ast.Function:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, fnFunction)

	case *ast.If:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.Print:
		r.resolveExpr(s.Expr)

	case *ast.Return:
		if r.currentFunction == fnNone {
			r.error(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == fnInitializer {
				r.error(s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}

	case *ast.Var:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)

	case *ast.While:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Body)
	}
}

func (r *Resolver) resolveClass(s *ast.Class) {
	enclosingClass := r.currentClass
	r.currentClass = classClass

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.error(s.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpr(s.Superclass)

		r.beginScope()
		r.defineSynthetic("super")
	}

	r.beginScope()
	r.defineSynthetic("this")

	for _, m := range s.Methods {
		kind := fnMethod
		if m.IsInitializer() {
			kind = fnInitializer
		}
		r.resolveFunction(m, kind)
	}

	r.endScope() // this

	if s.Superclass != nil {
		r.endScope() // super
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(fn *ast.Function, kind functionKind) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, p := range fn.Params {
		r.declare(p)
		r.define(p)
	}
	r.Resolve(fn.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

// ====================
// expressions
// ====================

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e.ID(), e.Name.Lexeme)

	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}

	case *ast.Get:
		r.resolveExpr(e.Object)

	case *ast.Grouping:
		r.resolveExpr(e.Inner)

	case *ast.Literal:
		// nothing to resolve

	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)

	case *ast.Super:
		if r.currentClass == classNone {
			r.error(e.Keyword, "Can't use 'super' outside of a class.")
		} else if r.currentClass != classSubclass {
			r.error(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e.ID(), "super")

	case *ast.This:
		if r.currentClass == classNone {
			r.error(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e.ID(), "this")

	case *ast.Unary:
		r.resolveExpr(e.Right)

	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.error(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e.ID(), e.Name.Lexeme)
	}
}
