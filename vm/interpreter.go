package vm

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Interpreter: stack-based VM for FluxScript bytecode
// ---------------------------------------------------------------------------

// maxAutoGrow bounds how far an array may auto-extend during a
// multi-dimensional assignment.
const maxAutoGrow = 1000

// VM executes compiled programs. A VM is strictly single-threaded:
// closures created by one VM must never be invoked from another.
type VM struct {
	out     io.Writer
	trace   io.Writer
	globals *Frame
}

// Option configures a VM.
type Option func(*VM)

// WithOutput redirects the print statement's output stream.
func WithOutput(w io.Writer) Option {
	return func(v *VM) { v.out = w }
}

// WithTrace enables per-instruction tracing to w: opcode, operand stack
// and locals are written before each instruction executes. Diagnostic
// only; it never affects program results.
func WithTrace(w io.Writer) Option {
	return func(v *VM) { v.trace = w }
}

// New creates a VM. Output defaults to standard output.
func New(opts ...Option) *VM {
	v := &VM{out: os.Stdout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// newGlobalFrame builds a root frame with the built-ins pre-registered.
func newGlobalFrame(p *Program) *Frame {
	f := newFrame(p.Code, p.Consts, nil, nil)
	for _, b := range Builtins() {
		f.locals[b.Name] = FromBuiltin(b)
	}
	return f
}

// Run executes a program against a fresh global frame and returns its
// result. Any runtime error is fatal: execution halts and no result is
// produced.
func (vm *VM) Run(p *Program) (Value, error) {
	vm.globals = newGlobalFrame(p)
	return vm.execute(vm.globals)
}

// Eval executes a program while retaining global bindings from previous
// Eval calls on the same VM. The REPL uses this to accumulate state
// across inputs.
func (vm *VM) Eval(p *Program) (Value, error) {
	if vm.globals == nil {
		vm.globals = newGlobalFrame(p)
	} else {
		vm.globals.code = p.Code
		vm.globals.consts = p.Consts
		vm.globals.ip = 0
		vm.globals.stack = vm.globals.stack[:0]
	}
	return vm.execute(vm.globals)
}

// Globals returns the global bindings after a run, excluding built-ins.
func (vm *VM) Globals() map[string]Value {
	out := make(map[string]Value)
	if vm.globals == nil {
		return out
	}
	for name, v := range vm.globals.locals {
		if v.Kind() == KindBuiltin {
			continue
		}
		out[name] = v
	}
	return out
}

// execute is the interpreter loop. Calls push frames onto an explicit
// chain (cur plus parent links) rather than recursing on the host
// stack, so guest recursion depth is decoupled from host stack depth.
func (vm *VM) execute(root *Frame) (Value, error) {
	cur := root
	for {
		if cur.ip >= len(cur.code) {
			// Fell off the end of a stream. Function bodies always end
			// with RETURN, so this only happens for empty programs.
			if cur.parent == nil {
				return None, nil
			}
			cur.writeback()
			parent := cur.parent
			parent.push(None)
			cur = parent
			continue
		}

		pos := cur.ip
		ins := cur.code[pos]
		cur.ip++

		if vm.trace != nil {
			vm.traceStep(cur, pos, ins)
		}

		switch ins.Op {

		// --- Constants and literals ---

		case OpLoadConst:
			if ins.Arg < 0 || ins.Arg >= len(cur.consts) {
				return None, newError(ErrInvalidOperation, ins.Op, pos, "constant index %d out of range", ins.Arg)
			}
			cur.push(cur.consts[ins.Arg])

		case OpLoadTrue:
			cur.push(FromBool(true))

		case OpLoadFalse:
			cur.push(FromBool(false))

		// --- Variables ---

		case OpLoadVar:
			v, ok := cur.lookup(ins.Name)
			if !ok {
				return None, newError(ErrUndefinedVariable, ins.Op, pos, "variable '%s' is not defined", ins.Name)
			}
			cur.push(v)

		case OpStoreVar:
			v, ok := cur.pop()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			cur.locals[ins.Name] = v
			cur.push(v)

		case OpReassignVar:
			v, ok := cur.pop()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			// Rebinds the innermost owner, or defines fresh in this
			// frame's locals when no enclosing scope owns the name.
			cur.assign(ins.Name, v)

		// --- Arithmetic ---

		case OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo, OpPower:
			b, okb := cur.pop()
			a, oka := cur.pop()
			if !oka || !okb {
				return None, vm.underflow(ins.Op, pos)
			}
			res, err := arithmetic(ins.Op, a, b)
			if err != nil {
				return None, locate(err, ins.Op, pos)
			}
			cur.push(res)

		case OpNegate:
			v, ok := cur.pop()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			switch v.Kind() {
			case KindInt:
				cur.push(FromInt(-v.Int()))
			case KindFloat:
				cur.push(FromFloat(-v.Float()))
			default:
				return None, newError(ErrInvalidOperation, ins.Op, pos, "cannot negate %s", v.Kind())
			}

		// --- Comparison ---

		case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
			b, okb := cur.pop()
			a, oka := cur.pop()
			if !oka || !okb {
				return None, vm.underflow(ins.Op, pos)
			}
			res, err := compare(ins.Op, a, b)
			if err != nil {
				return None, locate(err, ins.Op, pos)
			}
			cur.push(res)

		// --- Logical ---
		// and/or are eager: both operands are already evaluated. They
		// return an operand rather than a boolean, selected by the left
		// operand's truthiness.

		case OpAnd:
			b, okb := cur.pop()
			a, oka := cur.pop()
			if !oka || !okb {
				return None, vm.underflow(ins.Op, pos)
			}
			if a.IsTruthy() {
				cur.push(b)
			} else {
				cur.push(a)
			}

		case OpOr:
			b, okb := cur.pop()
			a, oka := cur.pop()
			if !oka || !okb {
				return None, vm.underflow(ins.Op, pos)
			}
			if a.IsTruthy() {
				cur.push(a)
			} else {
				cur.push(b)
			}

		case OpNot:
			v, ok := cur.pop()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			cur.push(FromBool(!v.IsTruthy()))

		// --- Control flow ---

		case OpJump:
			if ins.Arg < 0 || ins.Arg > len(cur.code) {
				return None, newError(ErrInvalidOperation, ins.Op, pos, "jump target %d out of range", ins.Arg)
			}
			cur.ip = ins.Arg

		case OpJumpIfFalse:
			v, ok := cur.pop()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			if !v.IsTruthy() {
				cur.ip = ins.Arg
			}

		case OpJumpIfTrue:
			v, ok := cur.pop()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			if v.IsTruthy() {
				cur.ip = ins.Arg
			}

		// --- Functions ---

		case OpDefineFunc:
			if ins.Arg < 0 || ins.Arg >= len(cur.consts) || cur.consts[ins.Arg].Kind() != KindBlueprint {
				return None, newError(ErrInvalidOperation, ins.Op, pos, "constant %d is not a function blueprint", ins.Arg)
			}
			cl := &Closure{Fn: cur.consts[ins.Arg].Blueprint(), Env: cur.capture()}
			cur.locals[ins.Name] = FromClosure(cl)

		case OpLoadLambda:
			if ins.Arg < 0 || ins.Arg >= len(cur.consts) || cur.consts[ins.Arg].Kind() != KindBlueprint {
				return None, newError(ErrInvalidOperation, ins.Op, pos, "constant %d is not a function blueprint", ins.Arg)
			}
			cl := &Closure{Fn: cur.consts[ins.Arg].Blueprint(), Env: cur.capture()}
			cur.push(FromClosure(cl))

		case OpCallFunc:
			args, ok := popArgs(cur, ins.Arg)
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			callee, ok := cur.pop()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			next, err := vm.call(cur, callee, args, ins.Op, pos)
			if err != nil {
				return None, err
			}
			if next != nil {
				cur = next
			}

		case OpMapCall:
			args, ok := popArgs(cur, ins.Arg)
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			key, okk := cur.pop()
			recv, okr := cur.pop()
			if !okk || !okr {
				return None, vm.underflow(ins.Op, pos)
			}
			if recv.Kind() != KindMap {
				return None, newError(ErrInvalidOperation, ins.Op, pos, "cannot call a member of %s", recv.Kind())
			}
			callee, found := recv.Map().Get(key)
			if !found {
				return None, newError(ErrUndefinedVariable, ins.Op, pos, "key %s not found in map", FormatValue(key))
			}
			next, err := vm.call(cur, callee, args, ins.Op, pos)
			if err != nil {
				return None, err
			}
			if next != nil {
				cur = next
			}

		case OpReturn:
			v, ok := cur.pop()
			if !ok {
				v = None
			}
			if cur.parent == nil {
				return v, nil
			}
			cur.writeback()
			parent := cur.parent
			parent.push(v)
			cur = parent

		// --- Containers ---

		case OpBuildArray:
			elems, ok := popArgs(cur, ins.Arg)
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			cur.push(FromArray(NewArray(elems...)))

		case OpBuildMap:
			items, ok := popArgs(cur, 2*ins.Arg)
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			m := NewMap()
			for i := 0; i < len(items); i += 2 {
				if !m.Set(items[i], items[i+1]) {
					return None, newError(ErrInvalidOperation, ins.Op, pos, "unhashable map key of kind %s", items[i].Kind())
				}
			}
			cur.push(FromMap(m))

		case OpIndexGet:
			idx, oki := cur.pop()
			container, okc := cur.pop()
			if !oki || !okc {
				return None, vm.underflow(ins.Op, pos)
			}
			v, err := indexGet(container, idx)
			if err != nil {
				return None, locate(err, ins.Op, pos)
			}
			cur.push(v)

		case OpIndexSet:
			val, okv := cur.pop()
			idx, oki := cur.pop()
			container, okc := cur.pop()
			if !okv || !oki || !okc {
				return None, vm.underflow(ins.Op, pos)
			}
			if err := indexSet(container, idx, val); err != nil {
				return None, locate(err, ins.Op, pos)
			}

		case OpMultiGet:
			idxs, ok := popArgs(cur, ins.Arg)
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			container, okc := cur.pop()
			if !okc {
				return None, vm.underflow(ins.Op, pos)
			}
			v := container
			var err error
			for _, idx := range idxs {
				v, err = indexGet(v, idx)
				if err != nil {
					return None, locate(err, ins.Op, pos)
				}
			}
			cur.push(v)

		case OpMultiSet:
			val, okv := cur.pop()
			if !okv {
				return None, vm.underflow(ins.Op, pos)
			}
			idxs, ok := popArgs(cur, ins.Arg)
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			container, okc := cur.pop()
			if !okc {
				return None, vm.underflow(ins.Op, pos)
			}
			if err := multiSet(container, idxs, val); err != nil {
				return None, locate(err, ins.Op, pos)
			}

		case OpGetSize:
			v, ok := cur.pop()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			n, err := sizeOf(v)
			if err != nil {
				return None, locate(err, ins.Op, pos)
			}
			cur.push(FromInt(n))

		// --- Stack and I/O ---

		case OpPrint:
			v, ok := cur.pop()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			fmt.Fprintln(vm.out, FormatValue(v))

		case OpPop:
			if _, ok := cur.pop(); !ok {
				return None, vm.underflow(ins.Op, pos)
			}

		case OpDup:
			v, ok := cur.peek()
			if !ok {
				return None, vm.underflow(ins.Op, pos)
			}
			cur.push(v)

		case OpHalt:
			if v, ok := cur.peek(); ok {
				return v, nil
			}
			if cur.parent == nil {
				return vm.globalBindings(cur), nil
			}
			return None, nil

		default:
			return None, newError(ErrInvalidOperation, ins.Op, pos, "unknown opcode %d", ins.Op)
		}
	}
}

// call dispatches a callee. Built-ins are invoked directly and their
// result pushed onto the calling frame; closures get a new frame, which
// is returned so the loop switches to it.
func (vm *VM) call(cur *Frame, callee Value, args []Value, op Opcode, pos int) (*Frame, error) {
	switch callee.Kind() {
	case KindBuiltin:
		res, err := callee.Builtin().Call(args)
		if err != nil {
			return nil, locate(err, op, pos)
		}
		cur.push(res)
		return nil, nil

	case KindClosure:
		cl := callee.Closure()
		if len(args) != len(cl.Fn.Params) {
			name := cl.Fn.Name
			if name == "" {
				name = "<lambda>"
			}
			return nil, newError(ErrInvalidOperation, op, pos,
				"function %s expects %d arguments, got %d", name, len(cl.Fn.Params), len(args))
		}
		frame := newFrame(cl.Fn.Code, cl.Fn.Consts, cl, cur)
		for k, v := range cl.Env {
			frame.locals[k] = v
		}
		for i, p := range cl.Fn.Params {
			frame.locals[p] = args[i]
		}
		// Named closures can call themselves without being captured.
		if cl.Fn.Name != "" {
			if _, bound := frame.locals[cl.Fn.Name]; !bound {
				frame.locals[cl.Fn.Name] = callee
			}
		}
		return frame, nil
	}
	return nil, newError(ErrInvalidOperation, op, pos, "%s is not callable", callee.Kind())
}

// globalBindings packages the global frame's user bindings as a map
// value; the HALT result when the operand stack is empty.
func (vm *VM) globalBindings(f *Frame) Value {
	names := make([]string, 0, len(f.locals))
	for name, v := range f.locals {
		if v.Kind() == KindBuiltin {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	m := NewMap()
	for _, name := range names {
		m.Set(FromString(name), f.locals[name])
	}
	return FromMap(m)
}

// popArgs pops n values and returns them in push order.
func popArgs(f *Frame, n int) ([]Value, bool) {
	if n < 0 || len(f.stack) < n {
		return nil, false
	}
	args := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i], _ = f.pop()
	}
	return args, true
}

func (vm *VM) underflow(op Opcode, pos int) error {
	return newError(ErrStackUnderflow, op, pos, "operand stack is empty")
}

// locate stamps opcode and position onto an error raised below the
// dispatch loop (builtins, shared helpers).
func locate(err error, op Opcode, pos int) error {
	if re, ok := err.(*RuntimeError); ok && re.Pos < 0 {
		re.Op = op
		re.Pos = pos
	}
	return err
}

func (vm *VM) traceStep(f *Frame, pos int, ins Instruction) {
	stack := make([]string, len(f.stack))
	for i, v := range f.stack {
		stack[i] = FormatValue(v)
	}
	names := make([]string, 0, len(f.locals))
	for name := range f.locals {
		if f.locals[name].Kind() == KindBuiltin {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	locals := make([]string, len(names))
	for i, name := range names {
		locals[i] = name + "=" + FormatValue(f.locals[name])
	}
	fmt.Fprintf(vm.trace, "%04d %-18s stack=[%s] locals={%s}\n",
		pos, ins, strings.Join(stack, ", "), strings.Join(locals, ", "))
}

// ---------------------------------------------------------------------------
// Operator semantics
// ---------------------------------------------------------------------------

func arithmetic(op Opcode, a, b Value) (Value, error) {
	switch op {
	case OpAdd:
		switch {
		case a.Kind() == KindInt && b.Kind() == KindInt:
			return FromInt(a.Int() + b.Int()), nil
		case a.IsNumber() && b.IsNumber():
			return FromFloat(a.AsFloat() + b.AsFloat()), nil
		case a.Kind() == KindString && b.Kind() == KindString:
			return FromString(a.Str() + b.Str()), nil
		case a.Kind() == KindArray && b.Kind() == KindArray:
			elems := make([]Value, 0, len(a.Array().Elems)+len(b.Array().Elems))
			elems = append(elems, a.Array().Elems...)
			elems = append(elems, b.Array().Elems...)
			return FromArray(NewArray(elems...)), nil
		}
		return None, invalidf("cannot add %s and %s", a.Kind(), b.Kind())

	case OpSubtract:
		switch {
		case a.Kind() == KindInt && b.Kind() == KindInt:
			return FromInt(a.Int() - b.Int()), nil
		case a.IsNumber() && b.IsNumber():
			return FromFloat(a.AsFloat() - b.AsFloat()), nil
		}
		return None, invalidf("cannot subtract %s from %s", b.Kind(), a.Kind())

	case OpMultiply:
		switch {
		case a.Kind() == KindInt && b.Kind() == KindInt:
			return FromInt(a.Int() * b.Int()), nil
		case a.IsNumber() && b.IsNumber():
			return FromFloat(a.AsFloat() * b.AsFloat()), nil
		}
		return None, invalidf("cannot multiply %s and %s", a.Kind(), b.Kind())

	case OpDivide:
		if !a.IsNumber() || !b.IsNumber() {
			return None, invalidf("cannot divide %s by %s", a.Kind(), b.Kind())
		}
		if b.AsFloat() == 0 {
			return None, &RuntimeError{Kind: ErrDivisionByZero, Pos: -1, Msg: "division by zero"}
		}
		// Division always yields a float, even for two integers.
		return FromFloat(a.AsFloat() / b.AsFloat()), nil

	case OpModulo:
		if !a.IsNumber() || !b.IsNumber() {
			return None, invalidf("cannot take %s modulo %s", a.Kind(), b.Kind())
		}
		if b.AsFloat() == 0 {
			return None, &RuntimeError{Kind: ErrModuloByZero, Pos: -1, Msg: "modulo by zero"}
		}
		if a.Kind() == KindInt && b.Kind() == KindInt {
			// Result takes the sign of the divisor.
			r := a.Int() % b.Int()
			if r != 0 && (r < 0) != (b.Int() < 0) {
				r += b.Int()
			}
			return FromInt(r), nil
		}
		r := math.Mod(a.AsFloat(), b.AsFloat())
		if r != 0 && (r < 0) != (b.AsFloat() < 0) {
			r += b.AsFloat()
		}
		return FromFloat(r), nil

	case OpPower:
		if !a.IsNumber() || !b.IsNumber() {
			return None, invalidf("cannot raise %s to %s", a.Kind(), b.Kind())
		}
		if a.Kind() == KindInt && b.Kind() == KindInt && b.Int() >= 0 {
			return FromInt(ipow(a.Int(), b.Int())), nil
		}
		return FromFloat(math.Pow(a.AsFloat(), b.AsFloat())), nil
	}
	return None, invalidf("unexpected arithmetic opcode %s", op)
}

// ipow is integer exponentiation by squaring.
func ipow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func compare(op Opcode, a, b Value) (Value, error) {
	switch op {
	case OpEqual:
		return FromBool(a.Equal(b)), nil
	case OpNotEqual:
		return FromBool(!a.Equal(b)), nil
	}

	// Ordered comparisons work on numbers (cross-kind) and strings.
	var less, equal bool
	switch {
	case a.IsNumber() && b.IsNumber():
		less = a.AsFloat() < b.AsFloat()
		equal = a.AsFloat() == b.AsFloat()
	case a.Kind() == KindString && b.Kind() == KindString:
		less = a.Str() < b.Str()
		equal = a.Str() == b.Str()
	default:
		return None, invalidf("cannot compare %s and %s", a.Kind(), b.Kind())
	}

	switch op {
	case OpLess:
		return FromBool(less), nil
	case OpLessEqual:
		return FromBool(less || equal), nil
	case OpGreater:
		return FromBool(!less && !equal), nil
	case OpGreaterEqual:
		return FromBool(!less), nil
	}
	return None, invalidf("unexpected comparison opcode %s", op)
}

// ---------------------------------------------------------------------------
// Indexing
// ---------------------------------------------------------------------------

func indexGet(container, idx Value) (Value, error) {
	switch container.Kind() {
	case KindArray:
		if idx.Kind() != KindInt {
			return None, invalidf("array index must be an integer, got %s", idx.Kind())
		}
		elems := container.Array().Elems
		i := idx.Int()
		if i < 0 || i >= int64(len(elems)) {
			return None, invalidf("array index %d out of range (size %d)", i, len(elems))
		}
		return elems[i], nil

	case KindMap:
		v, ok := container.Map().Get(idx)
		if !ok {
			return None, &RuntimeError{
				Kind: ErrUndefinedVariable, Pos: -1,
				Msg: fmt.Sprintf("key %s not found in map", FormatValue(idx)),
			}
		}
		return v, nil

	case KindString:
		if idx.Kind() != KindInt {
			return None, invalidf("string index must be an integer, got %s", idx.Kind())
		}
		runes := []rune(container.Str())
		i := idx.Int()
		if i < 0 || i >= int64(len(runes)) {
			return None, invalidf("string index %d out of range (length %d)", i, len(runes))
		}
		return FromString(string(runes[i])), nil
	}
	return None, invalidf("cannot index into %s", container.Kind())
}

func indexSet(container, idx, val Value) error {
	switch container.Kind() {
	case KindArray:
		if idx.Kind() != KindInt {
			return invalidf("array index must be an integer, got %s", idx.Kind())
		}
		elems := container.Array().Elems
		i := idx.Int()
		if i < 0 || i >= int64(len(elems)) {
			return invalidf("array index %d out of range (size %d)", i, len(elems))
		}
		elems[i] = val
		return nil

	case KindMap:
		if !container.Map().Set(idx, val) {
			return invalidf("unhashable map key of kind %s", idx.Kind())
		}
		return nil
	}
	return invalidf("cannot assign into %s", container.Kind())
}

// multiSet walks a chain of indices, auto-vivifying intermediate
// containers: a missing map key materializes a nested map, and an array
// index just past the end grows the array (bounded by maxAutoGrow).
func multiSet(container Value, idxs []Value, val Value) error {
	cur := container
	for _, idx := range idxs[:len(idxs)-1] {
		next, err := stepInto(cur, idx)
		if err != nil {
			return err
		}
		cur = next
	}

	last := idxs[len(idxs)-1]
	if cur.Kind() == KindArray && last.Kind() == KindInt {
		if err := growTo(cur.Array(), last.Int()); err != nil {
			return err
		}
	}
	return indexSet(cur, last, val)
}

// stepInto resolves one intermediate index during a multi-dimensional
// assignment, creating containers as needed.
func stepInto(container, idx Value) (Value, error) {
	switch container.Kind() {
	case KindMap:
		if v, ok := container.Map().Get(idx); ok {
			return v, nil
		}
		nested := FromMap(NewMap())
		if !container.Map().Set(idx, nested) {
			return None, invalidf("unhashable map key of kind %s", idx.Kind())
		}
		return nested, nil

	case KindArray:
		if idx.Kind() != KindInt {
			return None, invalidf("array index must be an integer, got %s", idx.Kind())
		}
		arr := container.Array()
		if err := growTo(arr, idx.Int()); err != nil {
			return None, err
		}
		i := idx.Int()
		if i < 0 {
			return None, invalidf("array index %d out of range (size %d)", i, len(arr.Elems))
		}
		if arr.Elems[i].IsNone() {
			arr.Elems[i] = FromMap(NewMap())
		}
		return arr.Elems[i], nil
	}
	return None, invalidf("cannot index into %s", container.Kind())
}

// growTo extends an array with none up to index i, within the guard.
func growTo(arr *Array, i int64) error {
	if i < int64(len(arr.Elems)) {
		return nil
	}
	if i >= maxAutoGrow {
		return invalidf("array index %d exceeds auto-grow limit %d", i, maxAutoGrow)
	}
	for int64(len(arr.Elems)) <= i {
		arr.Elems = append(arr.Elems, None)
	}
	return nil
}
