package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/lox/lang/ast"
	"github.com/loxlang/lox/lang/parser"
	"github.com/loxlang/lox/lang/resolver"
	"github.com/loxlang/lox/lang/scanner"
	"github.com/loxlang/lox/lang/token"
)

func parseSrc(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	var scanErrs, parseErrs int
	toks := scanner.New("test", []byte(src), func(int, string) { scanErrs++ }).ScanTokens()
	stmts := parser.Parse(toks, func(token.Token, string) { parseErrs++ })
	require.Zero(t, scanErrs)
	require.Zero(t, parseErrs)
	return stmts
}

func resolveSrc(t *testing.T, src string) (map[int]int, []string) {
	t.Helper()
	stmts := parseSrc(t, src)
	depths := map[int]int{}
	var msgs []string
	r := resolver.New(
		func(id, depth int) { depths[id] = depth },
		func(tok token.Token, msg string) { msgs = append(msgs, msg) },
	)
	r.Resolve(stmts)
	return depths, msgs
}

func TestResolveClosureCapturesOuterBlockDepth(t *testing.T) {
	src := `
var a = "global";
{
  var a = "block";
  fun show() {
    print a;
  }
  show();
}
`
	stmts := parseSrc(t, src)
	depths := map[int]int{}
	var msgs []string
	r := resolver.New(
		func(id, depth int) { depths[id] = depth },
		func(tok token.Token, msg string) { msgs = append(msgs, msg) },
	)
	r.Resolve(stmts)
	assert.Empty(t, msgs)

	block := stmts[1].(*ast.Block)
	show := block.Stmts[1].(*ast.Function)
	varRef := show.Body[0].(*ast.Print).Expr.(*ast.Variable)
	require.Contains(t, depths, varRef.ID())
	assert.Equal(t, 1, depths[varRef.ID()])
}

func TestTopLevelReturnIsRejected(t *testing.T) {
	_, msgs := resolveSrc(t, `return 1;`)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Can't return from top-level code.", msgs[0])
}

func TestReturnValueFromInitializerIsRejected(t *testing.T) {
	src := `
class Foo {
  init() {
    return 1;
  }
}
`
	_, msgs := resolveSrc(t, src)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Can't return a value from an initializer.", msgs[0])
}

func TestBareReturnFromInitializerIsAllowed(t *testing.T) {
	src := `
class Foo {
  init() {
    return;
  }
}
`
	_, msgs := resolveSrc(t, src)
	assert.Empty(t, msgs)
}

func TestThisOutsideClassIsRejected(t *testing.T) {
	_, msgs := resolveSrc(t, `print this;`)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Can't use 'this' outside of a class.", msgs[0])
}

func TestSuperOutsideClassIsRejected(t *testing.T) {
	_, msgs := resolveSrc(t, `print super.foo;`)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Can't use 'super' outside of a class.", msgs[0])
}

func TestSuperWithoutSuperclassIsRejected(t *testing.T) {
	src := `
class Foo {
  bar() {
    super.baz();
  }
}
`
	_, msgs := resolveSrc(t, src)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Can't use 'super' in a class with no superclass.", msgs[0])
}

func TestClassCannotInheritFromItself(t *testing.T) {
	_, msgs := resolveSrc(t, `class Foo < Foo {}`)
	require.Len(t, msgs, 1)
	assert.Equal(t, "A class can't inherit from itself.", msgs[0])
}

func TestRedeclarationInSameScopeIsRejected(t *testing.T) {
	src := `
{
  var a = 1;
  var a = 2;
}
`
	_, msgs := resolveSrc(t, src)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Already a variable with this name in this scope.", msgs[0])
}

func TestRedeclarationAtGlobalScopeIsAllowed(t *testing.T) {
	_, msgs := resolveSrc(t, "var a = 1;\nvar a = 2;\n")
	assert.Empty(t, msgs)
}

func TestSelfReferencingInitializerIsRejected(t *testing.T) {
	src := `
{
  var a = "outer";
  {
    var a = a;
  }
}
`
	_, msgs := resolveSrc(t, src)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Can't read local variable in its own initializer.", msgs[0])
}

func TestGlobalReferencesAreLeftUnresolved(t *testing.T) {
	depths, msgs := resolveSrc(t, "var a = 1;\nprint a;\n")
	assert.Empty(t, msgs)
	assert.Empty(t, depths)
}

func TestLocalReferenceResolvesToItsDeclaringScope(t *testing.T) {
	src := `
{
  var a = 1;
  {
    print a;
  }
}
`
	stmts := parseSrc(t, src)
	depths := map[int]int{}
	r := resolver.New(func(id, depth int) { depths[id] = depth }, nil)
	r.Resolve(stmts)

	outer := stmts[0].(*ast.Block)
	inner := outer.Stmts[1].(*ast.Block)
	printStmt := inner.Stmts[0].(*ast.Print)
	varRef := printStmt.Expr.(*ast.Variable)

	require.Contains(t, depths, varRef.ID())
	assert.Equal(t, 1, depths[varRef.ID()])
}
