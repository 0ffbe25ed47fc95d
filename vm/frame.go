package vm

// ---------------------------------------------------------------------------
// Frame: per-invocation execution state
// ---------------------------------------------------------------------------

// Frame holds one function invocation's private state: the instruction
// stream and constant pool it executes, an instruction pointer, an
// operand stack, a local-variable mapping, the owning closure (nil for
// the global frame), and a link to the calling frame.
type Frame struct {
	code    []Instruction
	consts  []Value
	ip      int
	stack   []Value
	locals  map[string]Value
	closure *Closure
	parent  *Frame
}

func newFrame(code []Instruction, consts []Value, closure *Closure, parent *Frame) *Frame {
	return &Frame{
		code:    code,
		consts:  consts,
		locals:  make(map[string]Value),
		closure: closure,
		parent:  parent,
	}
}

func (f *Frame) push(v Value) {
	f.stack = append(f.stack, v)
}

// pop removes and returns the top of the operand stack. The second
// result is false on underflow.
func (f *Frame) pop() (Value, bool) {
	if len(f.stack) == 0 {
		return None, false
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, true
}

// peek returns the top of the operand stack without removing it.
func (f *Frame) peek() (Value, bool) {
	if len(f.stack) == 0 {
		return None, false
	}
	return f.stack[len(f.stack)-1], true
}

// lookup resolves a name through the scope chain: this frame's locals,
// then the owning closure's captured environment, then the parent frame
// recursively.
func (f *Frame) lookup(name string) (Value, bool) {
	for fr := f; fr != nil; fr = fr.parent {
		if v, ok := fr.locals[name]; ok {
			return v, true
		}
		if fr.closure != nil {
			if v, ok := fr.closure.Env[name]; ok {
				return v, true
			}
		}
	}
	return None, false
}

// assign rebinds name in the innermost scope that already owns it, or
// defines it in this frame's locals when no enclosing scope does.
func (f *Frame) assign(name string, v Value) {
	for fr := f; fr != nil; fr = fr.parent {
		if _, ok := fr.locals[name]; ok {
			fr.locals[name] = v
			return
		}
		if fr.closure != nil {
			if _, ok := fr.closure.Env[name]; ok {
				fr.closure.Env[name] = v
				return
			}
		}
	}
	f.locals[name] = v
}

// capture snapshots the frame's visible bindings for a new closure:
// the owning closure's environment overlaid by this frame's locals
// (locals win on collision). The snapshot is an independent mapping.
func (f *Frame) capture() map[string]Value {
	env := make(map[string]Value)
	if f.closure != nil {
		for k, v := range f.closure.Env {
			env[k] = v
		}
	}
	for k, v := range f.locals {
		env[k] = v
	}
	return env
}

// writeback copies mutated locals into the owning closure's captured
// environment for every name the environment already holds. This is how
// captured state (a counter closure, say) survives across calls.
func (f *Frame) writeback() {
	if f.closure == nil {
		return
	}
	for name, v := range f.locals {
		if _, ok := f.closure.Env[name]; ok {
			f.closure.Env[name] = v
		}
	}
}
