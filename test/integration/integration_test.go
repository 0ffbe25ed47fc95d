package integration_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/flux-lang/flux/compiler"
	"github.com/flux-lang/flux/vm"
)

// ---------------------------------------------------------------------------
// Integration test helpers
// ---------------------------------------------------------------------------

// run compiles and executes source, returning everything it printed.
func run(t *testing.T, source string) string {
	t.Helper()
	prog, err := compiler.CompileSource(source)
	if err != nil {
		t.Fatalf("compile error: %v\nsource: %s", err, source)
	}
	var out bytes.Buffer
	if _, err := vm.New(vm.WithOutput(&out)).Run(prog); err != nil {
		t.Fatalf("runtime error: %v\nsource: %s", err, source)
	}
	return out.String()
}

// runResult compiles and executes source, returning the program result.
func runResult(t *testing.T, source string) vm.Value {
	t.Helper()
	prog, err := compiler.CompileSource(source)
	if err != nil {
		t.Fatalf("compile error: %v\nsource: %s", err, source)
	}
	result, err := vm.New().Run(prog)
	if err != nil {
		t.Fatalf("runtime error: %v\nsource: %s", err, source)
	}
	return result
}

// runError compiles and executes source, expecting a runtime error.
func runError(t *testing.T, source string) *vm.RuntimeError {
	t.Helper()
	prog, err := compiler.CompileSource(source)
	if err != nil {
		t.Fatalf("compile error: %v\nsource: %s", err, source)
	}
	_, err = vm.New().Run(prog)
	if err == nil {
		t.Fatalf("no runtime error\nsource: %s", source)
	}
	var rerr *vm.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("error type = %T, want *vm.RuntimeError", err)
	}
	return rerr
}

// ---------------------------------------------------------------------------
// Variables and arithmetic
// ---------------------------------------------------------------------------

func TestLetAndAssign(t *testing.T) {
	got := run(t, `
let x = 2
x assign x * 10
print x
`)
	if got != "20\n" {
		t.Errorf("output = %q, want %q", got, "20\n")
	}
}

func TestAssignUndeclaredDefinesFresh(t *testing.T) {
	got := run(t, "y assign 1\nprint y")
	if got != "1\n" {
		t.Errorf("output = %q, want %q", got, "1\n")
	}
}

func TestArithmeticMix(t *testing.T) {
	got := run(t, `
print 7 / 2
print 10 rem 3
print -7 rem 3
print 2 ** 10
print 2 ** -1
`)
	want := "3.5\n1\n2\n1024\n0.5\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDivisionByZero(t *testing.T) {
	rerr := runError(t, "print 10 / 0")
	if rerr.Kind != vm.ErrDivisionByZero {
		t.Errorf("kind = %v, want DivisionByZero", rerr.Kind)
	}
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

func TestIfElseChains(t *testing.T) {
	got := run(t, `
func classify(n) {
	if (n < 0) { return "neg" }
	else {
		if (n == 0) { return "zero" }
		else { return "pos" }
	}
}
print classify(-3)
print classify(0)
print classify(8)
`)
	if got != "neg\nzero\npos\n" {
		t.Errorf("output = %q, want %q", got, "neg\nzero\npos\n")
	}
}

func TestWhileLoop(t *testing.T) {
	got := run(t, `
let n = 1
while (n < 100) {
	n assign n * 2
}
print n
`)
	if got != "128\n" {
		t.Errorf("output = %q, want %q", got, "128\n")
	}
}

func TestForLoopWithStep(t *testing.T) {
	got := run(t, `
let sum = 0
for (let i = 0 to 10 step 2) {
	sum assign sum + i
}
print sum
`)
	if got != "30\n" {
		t.Errorf("output = %q, want %q", got, "30\n")
	}
}

func TestBreakAndContinue(t *testing.T) {
	got := run(t, `
let sum = 0
for (let i = 1 to 100) {
	if (i rem 2 == 0) { continue }
	if (i > 9) { break }
	sum assign sum + i
}
print sum
`)
	// 1 + 3 + 5 + 7 + 9
	if got != "25\n" {
		t.Errorf("output = %q, want %q", got, "25\n")
	}
}

func TestLogicalOperatorsReturnOperands(t *testing.T) {
	got := run(t, `
print 0 or "fallback"
print "left" and "right"
print 0 and "never"
print not 0
`)
	want := "fallback\nright\n0\ntrue\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Functions and closures
// ---------------------------------------------------------------------------

func TestRecursion(t *testing.T) {
	got := run(t, `
func factorial(n) {
	if (n <= 1) { return 1 }
	return n * factorial(n - 1)
}
print factorial(5)
`)
	if got != "120\n" {
		t.Errorf("output = %q, want %q", got, "120\n")
	}
}

func TestFibonacci(t *testing.T) {
	got := run(t, `
func fib(n) {
	if (n < 2) { return n }
	return fib(n - 1) + fib(n - 2)
}
print fib(10)
`)
	if got != "55\n" {
		t.Errorf("output = %q, want %q", got, "55\n")
	}
}

func TestClosureCounter(t *testing.T) {
	got := run(t, `
func makeCounter() {
	let count = 0
	return func () {
		count assign count + 1
		return count
	}
}
let tick = makeCounter()
print tick()
print tick()
print tick()
`)
	if got != "1\n2\n3\n" {
		t.Errorf("output = %q, want %q", got, "1\n2\n3\n")
	}
}

func TestClosureIsolation(t *testing.T) {
	got := run(t, `
func makeCounter() {
	let count = 0
	return func () {
		count assign count + 1
		return count
	}
}
let a = makeCounter()
let b = makeCounter()
a()
a()
print a()
print b()
`)
	if got != "3\n1\n" {
		t.Errorf("output = %q, want %q", got, "3\n1\n")
	}
}

func TestLambdaAsArgument(t *testing.T) {
	got := run(t, `
func apply(f, x) { return f(x) }
print apply(func (n) { return n * n }, 9)
`)
	if got != "81\n" {
		t.Errorf("output = %q, want %q", got, "81\n")
	}
}

func TestWrongArgumentCount(t *testing.T) {
	rerr := runError(t, `
func pair(a, b) { return a + b }
pair(1)
`)
	if rerr.Kind != vm.ErrInvalidOperation {
		t.Errorf("kind = %v, want InvalidOperation", rerr.Kind)
	}
}

func TestImplicitReturnIsNone(t *testing.T) {
	got := run(t, `
func quiet() { let x = 1 }
print quiet()
`)
	if got != "none\n" {
		t.Errorf("output = %q, want %q", got, "none\n")
	}
}

// ---------------------------------------------------------------------------
// Arrays and mappings
// ---------------------------------------------------------------------------

func TestArrayBasics(t *testing.T) {
	got := run(t, `
let arr = [10, 20, 30]
arr[1] assign 42
print arr[1]
print size(arr)
print arr
`)
	want := "42\n3\n[10, 42, 30]\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestArrayOutOfBounds(t *testing.T) {
	rerr := runError(t, `
let arr = [1, 2, 3]
print arr[5]
`)
	if rerr.Kind != vm.ErrInvalidOperation {
		t.Errorf("kind = %v, want InvalidOperation", rerr.Kind)
	}
}

func TestAppendSugar(t *testing.T) {
	got := run(t, `
let arr = [1]
arr append 2
arr append to 3
print arr
`)
	if got != "[1, 2, 3]\n" {
		t.Errorf("output = %q, want %q", got, "[1, 2, 3]\n")
	}
}

func TestMapBasics(t *testing.T) {
	got := run(t, `
let ages = {"ada": 36, "alan": 41}
ages["grace"] assign 85
print ages["grace"]
print size(ages)
print ages
`)
	want := "85\n3\n{\"ada\": 36, \"alan\": 41, \"grace\": 85}\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestMissingMapKey(t *testing.T) {
	rerr := runError(t, `
let m = {"a": 1}
print m["b"]
`)
	if rerr.Kind != vm.ErrUndefinedVariable {
		t.Errorf("kind = %v, want UndefinedVariable", rerr.Kind)
	}
}

func TestMapStoredFunctionCall(t *testing.T) {
	got := run(t, `
let ops = {"double": func (n) { return n * 2 }}
print ops["double"](21)
`)
	if got != "42\n" {
		t.Errorf("output = %q, want %q", got, "42\n")
	}
}

func TestMultiDimensionalAssignment(t *testing.T) {
	got := run(t, `
let grid = [[1, 2], [3, 4]]
grid[1][0] assign 99
print grid[1][0]
print grid
`)
	want := "99\n[[1, 2], [99, 4]]\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNestedMapAutoVivification(t *testing.T) {
	got := run(t, `
let cfg = {}
cfg["server"]["port"] assign 8080
print cfg["server"]["port"]
`)
	if got != "8080\n" {
		t.Errorf("output = %q, want %q", got, "8080\n")
	}
}

func TestStringIndexing(t *testing.T) {
	got := run(t, `
let s = "hello"
print s[1]
`)
	if got != "e\n" {
		t.Errorf("output = %q, want %q", got, "e\n")
	}
}

// ---------------------------------------------------------------------------
// Builtins and printing
// ---------------------------------------------------------------------------

func TestBuiltins(t *testing.T) {
	got := run(t, `
print to_string(42) + "!"
print to_number("3") + 1
print to_number("2.5") + 1
print split("a,b,c", ",")
print substring("hello world", 6, 11)
`)
	want := "42!\n4\n3.5\n[\"a\", \"b\", \"c\"]\nworld\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPrintFormatting(t *testing.T) {
	got := run(t, `
print none
print true
print 3.0
print 2.5
print "raw string"
print [1, "two", [3]]
`)
	want := "none\ntrue\n3\n2.5\nraw string\n[1, \"two\", [3]]\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNoneLiteral(t *testing.T) {
	got := run(t, `
let x = none
print x
print x == none
func quiet() { let y = 1 }
print quiet() == none
`)
	want := "none\ntrue\ntrue\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestStringConcatenation(t *testing.T) {
	got := run(t, `
let name = "flux"
print "hello, " + name
`)
	if got != "hello, flux\n" {
		t.Errorf("output = %q, want %q", got, "hello, flux\n")
	}
}

// ---------------------------------------------------------------------------
// Program results
// ---------------------------------------------------------------------------

func TestResultIsLastValue(t *testing.T) {
	result := runResult(t, "let x = 6 * 7")
	if result.Kind() != vm.KindInt || result.Int() != 42 {
		t.Errorf("result = %v, want 42", result)
	}
}

func TestErrorMessageNamesInstruction(t *testing.T) {
	rerr := runError(t, "print missing")
	msg := rerr.Error()
	if !strings.Contains(msg, "missing") || !strings.Contains(msg, "LOAD_VAR") {
		t.Errorf("error = %q, want variable name and instruction mnemonic", msg)
	}
}
