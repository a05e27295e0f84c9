package interp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/loxlang/lox/lang/ast"
	"github.com/loxlang/lox/lang/token"
)

// Interpreter drives evaluation of a resolved program. It owns two
// environments: globals, an unchanging root scope holding native bindings
// and top-level definitions, and environment, the current scope. Its
// resolution side-table (populated by a *resolver.Resolver via Resolve) is
// consulted on every Variable/Assign/This/Super lookup.
//
// An Interpreter is not safe for concurrent use; the REPL reuses one across
// successive lines so that top-level definitions persist.
type Interpreter struct {
	globals     *Environment
	environment *Environment
	locals      map[int]int

	// Stdout receives Print statement output. If nil, os.Stdout is used.
	Stdout io.Writer
}

// New creates an Interpreter with its native globals (currently just
// clock/0) already bound.
func New() *Interpreter {
	globals := NewEnvironment()
	it := &Interpreter{globals: globals, environment: globals, locals: map[int]int{}}
	globals.Define("clock", NewNative("clock", 0, func(*Interpreter, []Value) (Value, error) {
		return Number(nowSeconds()), nil
	}))
	return it
}

// Resolve records that the expression identified by exprID resolves to a
// binding depth scopes up from its own lexical scope. It is passed directly
// as a resolver.ResolveFunc.
func (it *Interpreter) Resolve(exprID int, depth int) {
	it.locals[exprID] = depth
}

// LookupDepth reports the depth previously recorded for exprID by Resolve,
// for the `lox resolve` developer command's annotated tree printer.
func (it *Interpreter) LookupDepth(exprID int) (int, bool) {
	depth, ok := it.locals[exprID]
	return depth, ok
}

// Run executes stmts (a whole program, or one REPL input batch) in the
// interpreter's current top-level environment. It returns the first runtime
// error encountered, if any; per spec.md §7, subsequent top-level
// statements in the same batch are not executed after one fails, but the
// interpreter itself (globals, locals, environment) survives for the next
// call.
func (it *Interpreter) Run(ctx context.Context, stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := it.execute(s); err != nil {
			return err
		}
	}
	return nil
}

// ====================
// statements
// ====================

func (it *Interpreter) execute(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.Block:
		return it.executeBlock(s.Stmts, NewChildEnvironment(it.environment))

	case *ast.Class:
		return it.executeClass(s)

	case *ast.Expression:
		_, err := it.eval(s.Expr)
		return err

	case *ast.Function:
		fn := NewFunction(s, it.environment, false)
		it.environment.Define(s.Name.Lexeme, fn)
		return nil

	case *ast.If:
		cond, err := it.eval(s.Cond)
		if err != nil {
			return err
		}
		if Truthy(cond) {
			return it.execute(s.Then)
		}
		if s.Else != nil {
			return it.execute(s.Else)
		}
		return nil

	case *ast.Print:
		v, err := it.eval(s.Expr)
		if err != nil {
			return err
		}
		it.print(v.String())
		return nil

	case *ast.Return:
		var v Value = Nil{}
		if s.Value != nil {
			var err error
			v, err = it.eval(s.Value)
			if err != nil {
				return err
			}
		}
		return returnSignal{value: v}

	case *ast.Var:
		var v Value = Nil{}
		if s.Initializer != nil {
			var err error
			v, err = it.eval(s.Initializer)
			if err != nil {
				return err
			}
		}
		it.environment.Define(s.Name.Lexeme, v)
		return nil

	case *ast.While:
		for {
			cond, err := it.eval(s.Cond)
			if err != nil {
				return err
			}
			if !Truthy(cond) {
				return nil
			}
			if err := it.execute(s.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

// executeBlock runs stmts in env, always restoring the interpreter's prior
// environment on the way out, even when a statement returns an error (a
// runtime error or a non-local returnSignal).
func (it *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) error {
	previous := it.environment
	it.environment = env
	defer func() { it.environment = previous }()

	for _, s := range stmts {
		if err := it.execute(s); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interpreter) executeClass(s *ast.Class) error {
	var superclass *Class
	if s.Superclass != nil {
		sv, err := it.eval(s.Superclass)
		if err != nil {
			return err
		}
		sc, ok := sv.(*Class)
		if !ok {
			return withLine(runtimeErrorf("Superclass must be a class."), s.Superclass.Line())
		}
		superclass = sc
	}

	it.environment.Define(s.Name.Lexeme, Nil{})

	env := it.environment
	if superclass != nil {
		env = NewChildEnvironment(it.environment)
		env.Define("super", superclass)
	}

	methods := map[string]*Function{}
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = NewFunction(m, env, m.IsInitializer())
	}

	class := NewClass(s.Name.Lexeme, superclass, methods)
	return it.environment.Assign(s.Name.Lexeme, class)
}

// ====================
// expressions
// ====================

func (it *Interpreter) eval(e ast.Expr) (Value, error) {
	switch e := e.(type) {
	case *ast.Assign:
		v, err := it.eval(e.Value)
		if err != nil {
			return nil, err
		}
		if depth, ok := it.locals[e.ID()]; ok {
			it.environment.AssignAt(depth, e.Name.Lexeme, v)
		} else if err := it.globals.Assign(e.Name.Lexeme, v); err != nil {
			return nil, withLine(err, e.Line())
		}
		return v, nil

	case *ast.Binary:
		return it.evalBinary(e)

	case *ast.Call:
		return it.evalCall(e)

	case *ast.Get:
		obj, err := it.eval(e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, withLine(runtimeErrorf("Only instances have properties."), e.Line())
		}
		v, err := inst.Get(e.Name.Lexeme)
		return v, withLine(err, e.Line())

	case *ast.Grouping:
		return it.eval(e.Inner)

	case *ast.Literal:
		return literalValue(e.Value), nil

	case *ast.Logical:
		left, err := it.eval(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Op.Kind == token.OR {
			if Truthy(left) {
				return left, nil
			}
		} else if !Truthy(left) {
			return left, nil
		}
		return it.eval(e.Right)

	case *ast.Set:
		obj, err := it.eval(e.Object)
		if err != nil {
			return nil, err
		}
		inst, ok := obj.(*Instance)
		if !ok {
			return nil, withLine(runtimeErrorf("Only instances have fields."), e.Line())
		}
		v, err := it.eval(e.Value)
		if err != nil {
			return nil, err
		}
		inst.Set(e.Name.Lexeme, v)
		return v, nil

	case *ast.Super:
		return it.evalSuper(e)

	case *ast.This:
		return it.lookUpVariable(e.Keyword, e.ID())

	case *ast.Unary:
		return it.evalUnary(e)

	case *ast.Variable:
		return it.lookUpVariable(e.Name, e.ID())
	}
	return nil, fmt.Errorf("interp: unhandled expression type %T", e)
}

func literalValue(v any) Value {
	switch v := v.(type) {
	case nil:
		return Nil{}
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case string:
		return String(v)
	default:
		return Nil{}
	}
}

func (it *Interpreter) lookUpVariable(name token.Token, exprID int) (Value, error) {
	if depth, ok := it.locals[exprID]; ok {
		return it.environment.GetAt(depth, name.Lexeme), nil
	}
	v, err := it.globals.Get(name.Lexeme)
	return v, withLine(err, name.Line)
}

func (it *Interpreter) evalUnary(e *ast.Unary) (Value, error) {
	right, err := it.eval(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op.Kind {
	case token.BANG:
		return Bool(!Truthy(right)), nil
	case token.MINUS:
		n, ok := right.(Number)
		if !ok {
			return nil, withLine(runtimeErrorf("Operand must be a number."), e.Line())
		}
		return -n, nil
	}
	return nil, fmt.Errorf("interp: unhandled unary operator %v", e.Op.Kind)
}

func (it *Interpreter) evalBinary(e *ast.Binary) (Value, error) {
	left, err := it.eval(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := it.eval(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.PLUS:
		if ln, ok := left.(Number); ok {
			if rn, ok := right.(Number); ok {
				return ln + rn, nil
			}
		}
		if ls, ok := left.(String); ok {
			if rs, ok := right.(String); ok {
				return ls + rs, nil
			}
		}
		return nil, withLine(runtimeErrorf("Operands must be two numbers or two strings."), e.Line())

	case token.MINUS:
		ln, rn, err := it.numberOperands(left, right, e.Line())
		if err != nil {
			return nil, err
		}
		return ln - rn, nil

	case token.STAR:
		ln, rn, err := it.numberOperands(left, right, e.Line())
		if err != nil {
			return nil, err
		}
		return ln * rn, nil

	case token.SLASH:
		ln, rn, err := it.numberOperands(left, right, e.Line())
		if err != nil {
			return nil, err
		}
		return ln / rn, nil

	case token.GT:
		ln, rn, err := it.numberOperands(left, right, e.Line())
		if err != nil {
			return nil, err
		}
		return Bool(ln > rn), nil

	case token.GT_EQ:
		ln, rn, err := it.numberOperands(left, right, e.Line())
		if err != nil {
			return nil, err
		}
		return Bool(ln >= rn), nil

	case token.LT:
		ln, rn, err := it.numberOperands(left, right, e.Line())
		if err != nil {
			return nil, err
		}
		return Bool(ln < rn), nil

	case token.LT_EQ:
		ln, rn, err := it.numberOperands(left, right, e.Line())
		if err != nil {
			return nil, err
		}
		return Bool(ln <= rn), nil

	case token.EQ_EQ:
		return Bool(Equal(left, right)), nil

	case token.BANG_EQ:
		return Bool(!Equal(left, right)), nil
	}
	return nil, fmt.Errorf("interp: unhandled binary operator %v", e.Op.Kind)
}

func (it *Interpreter) numberOperands(left, right Value, line int) (Number, Number, error) {
	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		return 0, 0, withLine(runtimeErrorf("Operands must be numbers."), line)
	}
	return ln, rn, nil
}

func (it *Interpreter) evalCall(e *ast.Call) (Value, error) {
	callee, err := it.eval(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		v, err := it.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, withLine(runtimeErrorf("Can only call functions and classes."), e.Paren.Line)
	}
	if len(args) != fn.Arity() {
		return nil, withLine(
			runtimeErrorf("Expected %d arguments but got %d.", fn.Arity(), len(args)),
			e.Paren.Line,
		)
	}
	return fn.Call(it, args)
}

func (it *Interpreter) evalSuper(e *ast.Super) (Value, error) {
	depth := it.locals[e.ID()] // resolver guarantees an entry whenever Super is reachable
	super := it.environment.GetAt(depth, "super").(*Class)
	instance := it.environment.GetAt(depth-1, "this").(*Instance)

	method, ok := super.findMethod(e.Method.Lexeme)
	if !ok {
		return nil, withLine(undefinedProperty(e.Method.Lexeme), e.Line())
	}
	return method.bind(instance), nil
}

func (it *Interpreter) print(s string) {
	w := it.Stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w, s)
}
