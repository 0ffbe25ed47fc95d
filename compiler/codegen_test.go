package compiler

import (
	"strings"
	"testing"

	"github.com/flux-lang/flux/vm"
)

func compile(t *testing.T, src string) *vm.Program {
	t.Helper()
	p, err := CompileSource(src)
	if err != nil {
		t.Fatalf("CompileSource(%q): %v", src, err)
	}
	return p
}

func TestCompileArithmetic(t *testing.T) {
	p := compile(t, "let x = 5 + 3 * 2")

	want := []vm.Instruction{
		{Op: vm.OpLoadConst, Arg: 0},
		{Op: vm.OpLoadConst, Arg: 1},
		{Op: vm.OpLoadConst, Arg: 2},
		{Op: vm.OpMultiply},
		{Op: vm.OpAdd},
		{Op: vm.OpStoreVar, Name: "x"},
		{Op: vm.OpHalt},
	}
	if len(p.Code) != len(want) {
		t.Fatalf("len(code) = %d, want %d\n%s", len(p.Code), len(want), vm.Disassemble(p))
	}
	for i, ins := range want {
		if p.Code[i] != ins {
			t.Errorf("code[%d] = %v, want %v", i, p.Code[i], ins)
		}
	}
	if p.Consts[0].Int() != 5 || p.Consts[1].Int() != 3 || p.Consts[2].Int() != 2 {
		t.Errorf("consts = %v, want [5 3 2]", p.Consts)
	}
}

func TestConstantDedup(t *testing.T) {
	p := compile(t, "let a = 1 + 1")
	if len(p.Consts) != 1 {
		t.Errorf("len(consts) = %d, want 1 (repeated 1 shares a slot)", len(p.Consts))
	}

	// Kind matters: 1 and 1.0 never share a pool entry.
	p = compile(t, "let a = 1 + 1.0")
	if len(p.Consts) != 2 {
		t.Errorf("len(consts) = %d, want 2 (int 1 and float 1.0 stay distinct)", len(p.Consts))
	}
}

func TestBooleansAvoidConstantPool(t *testing.T) {
	p := compile(t, "let a = true\nlet b = false")
	if len(p.Consts) != 0 {
		t.Errorf("len(consts) = %d, want 0", len(p.Consts))
	}
	if p.Code[0].Op != vm.OpLoadTrue {
		t.Errorf("code[0].Op = %v, want LOAD_TRUE", p.Code[0].Op)
	}
}

func TestNoneLiteralLoadsConstant(t *testing.T) {
	p := compile(t, "print none")
	if p.Code[0].Op != vm.OpLoadConst {
		t.Fatalf("code[0].Op = %v, want LOAD_CONST", p.Code[0].Op)
	}
	if !p.Consts[p.Code[0].Arg].IsNone() {
		t.Errorf("const %d = %v, want none", p.Code[0].Arg, p.Consts[p.Code[0].Arg])
	}
	for _, ins := range p.Code {
		if ins.Op == vm.OpLoadVar {
			t.Errorf("none compiled to a variable load:\n%s", vm.Disassemble(p))
		}
	}
}

// checkPatched fails if any jump still carries the backpatch sentinel.
func checkPatched(t *testing.T, code []vm.Instruction, consts []vm.Value) {
	t.Helper()
	for i, ins := range code {
		switch ins.Op {
		case vm.OpJump, vm.OpJumpIfTrue, vm.OpJumpIfFalse:
			if ins.Arg < 0 || ins.Arg > len(code) {
				t.Errorf("code[%d] = %v: jump target out of range", i, ins)
			}
		}
	}
	for _, c := range consts {
		if c.Kind() == vm.KindBlueprint {
			fn := c.Blueprint()
			checkPatched(t, fn.Code, fn.Consts)
		}
	}
}

func TestJumpsFullyPatched(t *testing.T) {
	src := `
let total = 0
for (let i = 0 to 20) {
	if (i rem 2 == 0) { continue }
	if (i > 15) { break }
	while (total < 100) {
		total assign total + i
		break
	}
}
func weird(n) {
	if (n > 0) { return n }
	return 0 - n
}
`
	p := compile(t, src)
	checkPatched(t, p.Code, p.Consts)
}

func TestForLoopShape(t *testing.T) {
	p := compile(t, "for (let i = 0 to 3) { continue }")

	// Find the continue jump (first JUMP after the conditional exit) and
	// the increment sequence it must target.
	var exitJump, continueJump = -1, -1
	for i, ins := range p.Code {
		if ins.Op == vm.OpJumpIfTrue && exitJump == -1 {
			exitJump = i
		} else if ins.Op == vm.OpJump && exitJump != -1 && continueJump == -1 {
			continueJump = i
		}
	}
	if exitJump == -1 || continueJump == -1 {
		t.Fatalf("loop jumps not found:\n%s", vm.Disassemble(p))
	}
	incr := p.Code[continueJump].Arg
	if incr >= len(p.Code) || p.Code[incr].Op != vm.OpLoadVar || p.Code[incr].Name != "i" {
		t.Errorf("continue targets %d (%v), want the increment load of i", incr, p.Code[incr])
	}
	exit := p.Code[exitJump].Arg
	if exit != len(p.Code)-1 {
		t.Errorf("loop exit = %d, want %d (the halt)", exit, len(p.Code)-1)
	}
}

func TestFunctionGetsOwnPool(t *testing.T) {
	p := compile(t, `
let x = 10
func f(a) {
	return a + 10
}
`)
	var bp *vm.Blueprint
	for _, c := range p.Consts {
		if c.Kind() == vm.KindBlueprint {
			bp = c.Blueprint()
		}
	}
	if bp == nil {
		t.Fatalf("no blueprint constant:\n%s", vm.Disassemble(p))
	}
	if bp.Name != "f" || len(bp.Params) != 1 {
		t.Errorf("blueprint = %s(%d params), want f(1 param)", bp.Name, len(bp.Params))
	}
	// 10 appears in both scopes but each pool holds its own copy.
	if len(bp.Consts) == 0 || bp.Consts[0].Int() != 10 {
		t.Errorf("function consts = %v, want own copy of 10", bp.Consts)
	}
	if n := len(bp.Code); n < 2 || bp.Code[n-1].Op != vm.OpReturn {
		t.Errorf("function body does not end in RETURN:\n%v", bp.Code)
	}
}

func TestFallThroughReturnsNone(t *testing.T) {
	p := compile(t, "func noop() { print 1 }")
	var bp *vm.Blueprint
	for _, c := range p.Consts {
		if c.Kind() == vm.KindBlueprint {
			bp = c.Blueprint()
		}
	}
	if bp == nil {
		t.Fatal("no blueprint constant")
	}
	n := len(bp.Code)
	if n < 2 || bp.Code[n-1].Op != vm.OpReturn || bp.Code[n-2].Op != vm.OpLoadConst {
		t.Fatalf("tail = %v, want LOAD_CONST none; RETURN", bp.Code[n-2:])
	}
	if !bp.Consts[bp.Code[n-2].Arg].IsNone() {
		t.Errorf("fall-through constant is not none")
	}
}

func TestSizeSpecialForm(t *testing.T) {
	p := compile(t, `let n = size("hello")`)
	found := false
	for _, ins := range p.Code {
		if ins.Op == vm.OpGetSize {
			found = true
		}
		if ins.Op == vm.OpCallFunc {
			t.Errorf("size(x) compiled to CALL_FUNC, want GET_SIZE")
		}
	}
	if !found {
		t.Errorf("GET_SIZE not emitted:\n%s", vm.Disassemble(p))
	}
}

func TestMapKeyedCallOpcode(t *testing.T) {
	p := compile(t, `handlers["go"](1, 2)`)
	found := false
	for _, ins := range p.Code {
		if ins.Op == vm.OpMapCall {
			found = true
			if ins.Arg != 2 {
				t.Errorf("MAP_CALL arg = %d, want 2", ins.Arg)
			}
		}
	}
	if !found {
		t.Errorf("MAP_CALL not emitted:\n%s", vm.Disassemble(p))
	}
}

func TestMultiDimensionalAccess(t *testing.T) {
	p := compile(t, "grid[0][1] assign 5\nlet v = grid[0][1]")
	var gotSet, gotGet bool
	for _, ins := range p.Code {
		switch ins.Op {
		case vm.OpMultiSet:
			gotSet = true
			if ins.Arg != 2 {
				t.Errorf("MULTI_SET arg = %d, want 2", ins.Arg)
			}
		case vm.OpMultiGet:
			gotGet = true
			if ins.Arg != 2 {
				t.Errorf("MULTI_GET arg = %d, want 2", ins.Arg)
			}
		}
	}
	if !gotSet || !gotGet {
		t.Errorf("multi-dimensional opcodes missing:\n%s", vm.Disassemble(p))
	}
}

func TestSingleIndexUsesPlainOpcodes(t *testing.T) {
	p := compile(t, "arr[0] assign 1\nlet v = arr[0]")
	for _, ins := range p.Code {
		if ins.Op == vm.OpMultiGet || ins.Op == vm.OpMultiSet {
			t.Errorf("single index compiled to multi-dimensional opcode:\n%s", vm.Disassemble(p))
		}
	}
}

func TestBreakOutsideLoopFails(t *testing.T) {
	if _, err := CompileSource("break"); err == nil {
		t.Errorf("break outside a loop compiled, want error")
	}
	if _, err := CompileSource("continue"); err == nil {
		t.Errorf("continue outside a loop compiled, want error")
	}
}

func TestFreeVarsRecorded(t *testing.T) {
	p := compile(t, `
let base = 100
func add(n) { return base + n }
`)
	var bp *vm.Blueprint
	for _, c := range p.Consts {
		if c.Kind() == vm.KindBlueprint {
			bp = c.Blueprint()
		}
	}
	if bp == nil {
		t.Fatal("no blueprint constant")
	}
	if len(bp.FreeVars) != 1 || bp.FreeVars[0] != "base" {
		t.Errorf("free vars = %v, want [base]", bp.FreeVars)
	}
}

func TestDisassembleOutput(t *testing.T) {
	p := compile(t, "let x = 1")
	out := vm.Disassemble(p)
	if !strings.Contains(out, "LOAD_CONST") || !strings.Contains(out, "STORE_VAR x") {
		t.Errorf("disassembly missing expected mnemonics:\n%s", out)
	}
}
