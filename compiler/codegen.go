package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flux-lang/flux/vm"
)

// ---------------------------------------------------------------------------
// Codegen: lowers the AST to bytecode
// ---------------------------------------------------------------------------

// unpatched marks a jump whose target is filled in by backpatching.
const unpatched = -1

// Codegen emits a flat instruction stream plus a constant pool for one
// compilation unit. Nested function bodies each get their own Codegen,
// so closures never share a pool with their enclosing scope.
type Codegen struct {
	code   []vm.Instruction
	consts []vm.Value
	loops  []*loopCtx
	errors []string
}

// loopCtx collects the jumps a loop must patch once its extent is known.
type loopCtx struct {
	breaks    []int
	continues []int
}

// Compile lowers a parsed program into an executable bytecode program.
// It never fails on a valid tree; unsupported operator tokens are the
// only compile-time failure.
func Compile(prog *Program) (*vm.Program, error) {
	c := &Codegen{}
	for _, stmt := range prog.Stmts {
		c.genStmt(stmt)
	}
	c.emit(vm.Instruction{Op: vm.OpHalt})
	if len(c.errors) > 0 {
		return nil, errors.New(strings.Join(c.errors, "\n"))
	}
	return &vm.Program{Code: c.code, Consts: c.consts}, nil
}

// CompileSource lexes, parses and compiles FluxScript source text.
func CompileSource(src string) (*vm.Program, error) {
	p := NewParser(src)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errors.New(strings.Join(errs, "\n"))
	}
	return Compile(prog)
}

func (c *Codegen) errorf(pos Position, format string, args ...interface{}) {
	msg := fmt.Sprintf("line %d: %s", pos.Line, fmt.Sprintf(format, args...))
	c.errors = append(c.errors, msg)
}

// emit appends an instruction and returns its index.
func (c *Codegen) emit(ins vm.Instruction) int {
	c.code = append(c.code, ins)
	return len(c.code) - 1
}

// emitJump appends a jump with an unpatched target.
func (c *Codegen) emitJump(op vm.Opcode) int {
	return c.emit(vm.Instruction{Op: op, Arg: unpatched})
}

// patch overwrites a jump's target with an absolute instruction index.
func (c *Codegen) patch(at, target int) {
	c.code[at].Arg = target
}

// addConst interns a primitive constant, deduplicating by kind and
// equality. Blueprints are exempt: every definition site gets its own
// pool entry.
func (c *Codegen) addConst(v vm.Value) int {
	if v.Kind() != vm.KindBlueprint {
		for i, existing := range c.consts {
			if existing.Kind() == v.Kind() && existing.Equal(v) {
				return i
			}
		}
	}
	c.consts = append(c.consts, v)
	return len(c.consts) - 1
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (c *Codegen) genStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *LetStmt:
		c.genExpr(s.Value)
		// STORE_VAR leaves the value on the stack: declarations are
		// expressions.
		c.emit(vm.Instruction{Op: vm.OpStoreVar, Name: s.Name})

	case *AssignStmt:
		c.genExpr(s.Value)
		c.emit(vm.Instruction{Op: vm.OpReassignVar, Name: s.Name})

	case *IndexAssignStmt:
		c.genIndexAssign(s)

	case *IfStmt:
		c.genExpr(s.Cond)
		elseJump := c.emitJump(vm.OpJumpIfFalse)
		c.genBlock(s.Then)
		if s.Else != nil {
			endJump := c.emitJump(vm.OpJump)
			c.patch(elseJump, len(c.code))
			c.genBlock(s.Else)
			c.patch(endJump, len(c.code))
		} else {
			c.patch(elseJump, len(c.code))
		}

	case *WhileStmt:
		condStart := len(c.code)
		c.genExpr(s.Cond)
		exitJump := c.emitJump(vm.OpJumpIfFalse)
		c.pushLoop()
		c.genBlock(s.Body)
		loop := c.popLoop()
		c.emit(vm.Instruction{Op: vm.OpJump, Arg: condStart})
		exit := len(c.code)
		c.patch(exitJump, exit)
		loop.patchAll(c, exit, condStart)

	case *ForStmt:
		c.genFor(s)

	case *BreakStmt:
		if len(c.loops) == 0 {
			c.errorf(s.PosVal, "break outside of a loop")
			return
		}
		at := c.emitJump(vm.OpJump)
		top := c.loops[len(c.loops)-1]
		top.breaks = append(top.breaks, at)

	case *ContinueStmt:
		if len(c.loops) == 0 {
			c.errorf(s.PosVal, "continue outside of a loop")
			return
		}
		at := c.emitJump(vm.OpJump)
		top := c.loops[len(c.loops)-1]
		top.continues = append(top.continues, at)

	case *FuncStmt:
		bp := c.compileFunction(s.Name, s.Params, s.Body)
		idx := c.addConst(vm.FromBlueprint(bp))
		c.emit(vm.Instruction{Op: vm.OpDefineFunc, Name: s.Name, Arg: idx})

	case *ReturnStmt:
		c.genExpr(s.Value)
		c.emit(vm.Instruction{Op: vm.OpReturn})

	case *PrintStmt:
		c.genExpr(s.Value)
		c.emit(vm.Instruction{Op: vm.OpPrint})

	case *ExprStmt:
		c.genExpr(s.X)

	case *BlockStmt:
		c.genBlock(s)

	default:
		c.errorf(stmt.Pos(), "cannot compile statement %T", stmt)
	}
}

func (c *Codegen) genBlock(block *BlockStmt) {
	for _, stmt := range block.Stmts {
		c.genStmt(stmt)
	}
}

// genFor desugars a counting loop: store the initializer, test the
// bound, run the body, increment, jump back. continue targets the
// increment, break the exit.
func (c *Codegen) genFor(s *ForStmt) {
	c.genExpr(s.Start)
	c.emit(vm.Instruction{Op: vm.OpStoreVar, Name: s.Name})

	condStart := len(c.code)
	c.emit(vm.Instruction{Op: vm.OpLoadVar, Name: s.Name})
	c.genExpr(s.End)
	c.emit(vm.Instruction{Op: vm.OpGreater})
	exitJump := c.emitJump(vm.OpJumpIfTrue)

	c.pushLoop()
	c.genBlock(s.Body)
	loop := c.popLoop()

	incrStart := len(c.code)
	c.emit(vm.Instruction{Op: vm.OpLoadVar, Name: s.Name})
	if s.Step != nil {
		c.genExpr(s.Step)
	} else {
		c.emit(vm.Instruction{Op: vm.OpLoadConst, Arg: c.addConst(vm.FromInt(1))})
	}
	c.emit(vm.Instruction{Op: vm.OpAdd})
	c.emit(vm.Instruction{Op: vm.OpReassignVar, Name: s.Name})
	c.emit(vm.Instruction{Op: vm.OpJump, Arg: condStart})

	exit := len(c.code)
	c.patch(exitJump, exit)
	loop.patchAll(c, exit, incrStart)
}

func (c *Codegen) pushLoop() {
	c.loops = append(c.loops, &loopCtx{})
}

func (c *Codegen) popLoop() *loopCtx {
	top := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	return top
}

// patchAll resolves a loop's pending jumps: breaks to the exit address,
// continues to the re-entry address.
func (l *loopCtx) patchAll(c *Codegen, exit, reentry int) {
	for _, at := range l.breaks {
		c.patch(at, exit)
	}
	for _, at := range l.continues {
		c.patch(at, reentry)
	}
}

// compileFunction lowers a function body with a fresh, independent
// Codegen so it gets its own instruction stream and constant pool. A
// body that falls through without a return gets an explicit return of
// none appended.
func (c *Codegen) compileFunction(name string, params []string, body *BlockStmt) *vm.Blueprint {
	sub := &Codegen{}
	sub.genBlock(body)
	if n := len(sub.code); n == 0 || sub.code[n-1].Op != vm.OpReturn {
		sub.emit(vm.Instruction{Op: vm.OpLoadConst, Arg: sub.addConst(vm.None)})
		sub.emit(vm.Instruction{Op: vm.OpReturn})
	}
	c.errors = append(c.errors, sub.errors...)
	return &vm.Blueprint{
		Name:     name,
		Params:   params,
		FreeVars: freeVars(body, params),
		Code:     sub.code,
		Consts:   sub.consts,
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

var binaryOps = map[string]vm.Opcode{
	"+":   vm.OpAdd,
	"-":   vm.OpSubtract,
	"*":   vm.OpMultiply,
	"/":   vm.OpDivide,
	"%":   vm.OpModulo,
	"rem": vm.OpModulo,
	"**":  vm.OpPower,
	"==":  vm.OpEqual,
	"!=":  vm.OpNotEqual,
	"<":   vm.OpLess,
	"<=":  vm.OpLessEqual,
	">":   vm.OpGreater,
	">=":  vm.OpGreaterEqual,
	"and": vm.OpAnd,
	"or":  vm.OpOr,
}

func (c *Codegen) genExpr(expr Expr) {
	switch e := expr.(type) {
	case *IntLit:
		c.emit(vm.Instruction{Op: vm.OpLoadConst, Arg: c.addConst(vm.FromInt(e.Value))})

	case *FloatLit:
		c.emit(vm.Instruction{Op: vm.OpLoadConst, Arg: c.addConst(vm.FromFloat(e.Value))})

	case *StringLit:
		c.emit(vm.Instruction{Op: vm.OpLoadConst, Arg: c.addConst(vm.FromString(e.Value))})

	case *BoolLit:
		// Dedicated opcodes keep booleans out of the constant pool.
		if e.Value {
			c.emit(vm.Instruction{Op: vm.OpLoadTrue})
		} else {
			c.emit(vm.Instruction{Op: vm.OpLoadFalse})
		}

	case *NoneLit:
		c.emit(vm.Instruction{Op: vm.OpLoadConst, Arg: c.addConst(vm.None)})

	case *Ident:
		c.emit(vm.Instruction{Op: vm.OpLoadVar, Name: e.Name})

	case *BinaryExpr:
		// Both operands are always evaluated; and/or do not
		// short-circuit at the bytecode level.
		c.genExpr(e.X)
		c.genExpr(e.Y)
		op, ok := binaryOps[e.Op]
		if !ok {
			c.errorf(e.PosVal, "UnsupportedOperator: unknown binary operator %q", e.Op)
			return
		}
		c.emit(vm.Instruction{Op: op})

	case *UnaryExpr:
		c.genExpr(e.X)
		switch e.Op {
		case "-":
			c.emit(vm.Instruction{Op: vm.OpNegate})
		case "not":
			c.emit(vm.Instruction{Op: vm.OpNot})
		default:
			c.errorf(e.PosVal, "UnsupportedOperator: unknown unary operator %q", e.Op)
		}

	case *CallExpr:
		c.genCall(e)

	case *IndexExpr:
		base, indices := flattenIndexChain(e)
		c.genExpr(base)
		for _, idx := range indices {
			c.genExpr(idx)
		}
		if len(indices) > 1 {
			c.emit(vm.Instruction{Op: vm.OpMultiGet, Arg: len(indices)})
		} else {
			c.emit(vm.Instruction{Op: vm.OpIndexGet})
		}

	case *ArrayLit:
		for _, elem := range e.Elems {
			c.genExpr(elem)
		}
		c.emit(vm.Instruction{Op: vm.OpBuildArray, Arg: len(e.Elems)})

	case *MapLit:
		for _, pair := range e.Pairs {
			c.genExpr(pair.Key)
			c.genExpr(pair.Value)
		}
		c.emit(vm.Instruction{Op: vm.OpBuildMap, Arg: len(e.Pairs)})

	case *FuncLit:
		bp := c.compileFunction("", e.Params, e.Body)
		idx := c.addConst(vm.FromBlueprint(bp))
		c.emit(vm.Instruction{Op: vm.OpLoadLambda, Arg: idx})

	default:
		c.errorf(expr.Pos(), "cannot compile expression %T", expr)
	}
}

// genCall lowers a function call. A callee fetched by key from a map
// uses the map-call variant; size(x) lowers to the size opcode.
func (c *Codegen) genCall(e *CallExpr) {
	if ident, ok := e.Callee.(*Ident); ok && ident.Name == "size" && len(e.Args) == 1 {
		c.genExpr(e.Args[0])
		c.emit(vm.Instruction{Op: vm.OpGetSize})
		return
	}

	if idx, ok := e.Callee.(*IndexExpr); ok {
		c.genExpr(idx.Container)
		c.genExpr(idx.Index)
		for _, arg := range e.Args {
			c.genExpr(arg)
		}
		c.emit(vm.Instruction{Op: vm.OpMapCall, Arg: len(e.Args)})
		return
	}

	c.genExpr(e.Callee)
	for _, arg := range e.Args {
		c.genExpr(arg)
	}
	c.emit(vm.Instruction{Op: vm.OpCallFunc, Arg: len(e.Args)})
}

// genIndexAssign lowers target[i]...[k] assign value.
func (c *Codegen) genIndexAssign(s *IndexAssignStmt) {
	base, indices := flattenIndexChain(s.Target)
	c.genExpr(base)
	for _, idx := range indices {
		c.genExpr(idx)
	}
	c.genExpr(s.Value)
	if len(indices) > 1 {
		c.emit(vm.Instruction{Op: vm.OpMultiSet, Arg: len(indices)})
	} else {
		c.emit(vm.Instruction{Op: vm.OpIndexSet})
	}
}

// flattenIndexChain unrolls nested index expressions into the base
// expression plus the index list in application order.
func flattenIndexChain(e *IndexExpr) (Expr, []Expr) {
	var indices []Expr
	var walk func(x Expr) Expr
	walk = func(x Expr) Expr {
		if ie, ok := x.(*IndexExpr); ok {
			base := walk(ie.Container)
			indices = append(indices, ie.Index)
			return base
		}
		return x
	}
	base := walk(e)
	return base, indices
}
