package interp_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/lox/lang/interp"
	"github.com/loxlang/lox/lang/parser"
	"github.com/loxlang/lox/lang/resolver"
	"github.com/loxlang/lox/lang/scanner"
	"github.com/loxlang/lox/lang/token"
)

// run scans, parses, resolves and executes src, returning everything it
// printed and the first runtime error encountered, if any. It fails the
// test outright on any scan/parse/static error, since those aren't what
// these tests are about.
func run(t *testing.T, src string) (string, error) {
	t.Helper()

	var staticErrs []string
	toks := scanner.New("test", []byte(src), func(line int, msg string) {
		staticErrs = append(staticErrs, msg)
	}).ScanTokens()
	stmts := parser.Parse(toks, func(tok token.Token, msg string) {
		staticErrs = append(staticErrs, msg)
	})

	it := interp.New()
	r := resolver.New(it.Resolve, func(tok token.Token, msg string) {
		staticErrs = append(staticErrs, msg)
	})
	r.Resolve(stmts)
	require.Empty(t, staticErrs)

	var buf bytes.Buffer
	it.Stdout = &buf
	err := it.Run(context.Background(), stmts)
	return buf.String(), err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `print 2 + 3 * 4 - 1;`)
	require.NoError(t, err)
	assert.Equal(t, "13\n", out)
}

func TestIntegralNumberPrintsWithoutTrailingZero(t *testing.T) {
	out, err := run(t, `print 6 / 2;`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	assert.Equal(t, "foobar\n", out)
}

func TestMixedTypeAdditionIsRuntimeError(t *testing.T) {
	_, err := run(t, `print "foo" + 1;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestClosureCapturesEnclosingBinding(t *testing.T) {
	// The classic closure-capture test: makeCounter's inner function closes
	// over the 'count' binding from the scope active when it was defined,
	// and keeps updating it after makeCounter has returned.
	src := `
fun makeCounter() {
  var count = 0;
  fun increment() {
    count = count + 1;
    return count;
  }
  return increment;
}

var counter = makeCounter();
print counter();
print counter();
print counter();
`
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestClassesInheritanceAndSuper(t *testing.T) {
	src := `
class Animal {
  speak() {
    return "...";
  }
  describe() {
    print "A creature says: " + this.speak();
  }
}

class Dog < Animal {
  speak() {
    return "Woof, and also: " + super.speak();
  }
}

Dog().describe();
`
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "A creature says: Woof, and also: ...\n", out)
}

func TestInitializerAlwaysReturnsInstanceEvenWithBareReturn(t *testing.T) {
	src := `
class Foo {
  init() {
    this.done = true;
    return;
  }
}

var f = Foo();
print f.done;
`
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestFibonacciRecursion(t *testing.T) {
	src := `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(10);
`
	out, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestTruthiness(t *testing.T) {
	out, err := run(t, `print !!0; print !!""; print !!false; print !!nil;`)
	require.NoError(t, err)
	assert.Equal(t, "true\ntrue\nfalse\nfalse\n", out)
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, err := run(t, `print nope;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'nope'.")
}

func TestCallingNonCallableIsRuntimeError(t *testing.T) {
	_, err := run(t, `var x = 1; x();`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can only call functions and classes.")
}

func TestCallingWithWrongArityIsRuntimeError(t *testing.T) {
	_, err := run(t, `fun f(a, b) { return a + b; } f(1);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected 2 arguments but got 1.")
}

func TestGettingPropertyOnNonInstanceIsRuntimeError(t *testing.T) {
	_, err := run(t, `var x = 1; print x.foo;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Only instances have properties.")
}

func TestSuperclassMustBeClass(t *testing.T) {
	_, err := run(t, `var NotAClass = 1; class Sub < NotAClass {}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Superclass must be a class.")
}

func TestRuntimeErrorStopsRemainingTopLevelStatementsInBatch(t *testing.T) {
	out, err := run(t, `print "before"; print nope; print "after";`)
	require.Error(t, err)
	assert.Equal(t, "before\n", out)
}

func TestEqualityAcrossTypes(t *testing.T) {
	out, err := run(t, `print nil == nil; print nil == false; print 1 == "1"; print 1 == 1.0;`)
	require.NoError(t, err)
	assert.Equal(t, "true\nfalse\nfalse\ntrue\n", out)
}
