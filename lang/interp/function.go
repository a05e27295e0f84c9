package interp

import "github.com/loxlang/lox/lang/ast"

// Function is a user-defined Lox function or method: a declaration paired
// with the environment it closed over at definition time.
type Function struct {
	decl          *ast.Function
	closure       *Environment
	isInitializer bool
}

// NewFunction constructs a Function closing over env. isInitializer is true
// only for a class's "init" method.
func NewFunction(decl *ast.Function, env *Environment, isInitializer bool) *Function {
	return &Function{decl: decl, closure: env, isInitializer: isInitializer}
}

// String implements Value.
func (f *Function) String() string { return "<fn " + f.decl.Name.Lexeme + ">" }

// Arity implements Callable.
func (f *Function) Arity() int { return len(f.decl.Params) }

// Call implements Callable: it creates a fresh environment parented on the
// closure, binds each parameter, and executes the body as a block. An
// initializer always yields `this`, with or without a return. For any other
// function, a non-local return unwinds here and supplies the call's result;
// absent one, the result is nil.
func (f *Function) Call(it *Interpreter, args []Value) (Value, error) {
	env := NewChildEnvironment(f.closure)
	for i, p := range f.decl.Params {
		env.Define(p.Lexeme, args[i])
	}

	err := it.executeBlock(f.decl.Body, env)
	if ret, ok := err.(returnSignal); ok {
		if f.isInitializer {
			return f.closure.GetAt(0, "this"), nil
		}
		return ret.value, nil
	}
	if err != nil {
		return nil, err
	}

	if f.isInitializer {
		return f.closure.GetAt(0, "this"), nil
	}
	return Nil{}, nil
}

// bind returns a new Function identical to f except that its closure is a
// fresh environment, parented on f's own closure, defining "this" as
// instance. This is how a method looked up on an instance becomes callable
// with "this" bound.
func (f *Function) bind(instance *Instance) *Function {
	env := NewChildEnvironment(f.closure)
	env.Define("this", instance)
	return NewFunction(f.decl, env, f.isInitializer)
}

var _ Callable = (*Function)(nil)
