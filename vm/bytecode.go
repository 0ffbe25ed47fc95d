package vm

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Bytecode: opcodes and instructions
// ---------------------------------------------------------------------------

// Opcode identifies a VM instruction.
type Opcode uint8

const (
	// Constants and literals
	OpLoadConst Opcode = iota // Arg: constant pool index
	OpLoadTrue
	OpLoadFalse

	// Variables
	OpLoadVar     // Name: variable to read
	OpStoreVar    // Name: variable to declare; value stays on the stack
	OpReassignVar // Name: variable to rebind; value is consumed

	// Arithmetic
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpNegate

	// Comparison
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual

	// Logical (eager, operand-returning)
	OpAnd
	OpOr
	OpNot

	// Control flow; Arg is an absolute instruction index
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue

	// Functions
	OpDefineFunc // Name: function name, Arg: blueprint constant index
	OpLoadLambda // Arg: blueprint constant index
	OpCallFunc   // Arg: argument count
	OpMapCall    // Arg: argument count; callee fetched by key from a map
	OpReturn

	// Containers
	OpBuildArray // Arg: element count
	OpBuildMap   // Arg: pair count
	OpIndexGet
	OpIndexSet
	OpMultiGet // Arg: dimension count
	OpMultiSet // Arg: dimension count
	OpGetSize

	// Stack and I/O
	OpPrint
	OpPop
	OpDup
	OpHalt

	opcodeCount // sentinel, keep last
)

// OpcodeInfo describes an opcode's mnemonic and operand shape.
type OpcodeInfo struct {
	Name    string
	HasArg  bool
	HasName bool
}

var opcodeTable = [opcodeCount]OpcodeInfo{
	OpLoadConst:    {Name: "LOAD_CONST", HasArg: true},
	OpLoadTrue:     {Name: "LOAD_TRUE"},
	OpLoadFalse:    {Name: "LOAD_FALSE"},
	OpLoadVar:      {Name: "LOAD_VAR", HasName: true},
	OpStoreVar:     {Name: "STORE_VAR", HasName: true},
	OpReassignVar:  {Name: "REASSIGN_VAR", HasName: true},
	OpAdd:          {Name: "ADD"},
	OpSubtract:     {Name: "SUBTRACT"},
	OpMultiply:     {Name: "MULTIPLY"},
	OpDivide:       {Name: "DIVIDE"},
	OpModulo:       {Name: "MODULO"},
	OpPower:        {Name: "POWER"},
	OpNegate:       {Name: "NEGATE"},
	OpEqual:        {Name: "EQUAL"},
	OpNotEqual:     {Name: "NOT_EQUAL"},
	OpLess:         {Name: "LESS_THAN"},
	OpLessEqual:    {Name: "LESS_EQUAL"},
	OpGreater:      {Name: "GREATER_THAN"},
	OpGreaterEqual: {Name: "GREATER_EQUAL"},
	OpAnd:          {Name: "AND"},
	OpOr:           {Name: "OR"},
	OpNot:          {Name: "NOT"},
	OpJump:         {Name: "JUMP", HasArg: true},
	OpJumpIfFalse:  {Name: "JUMP_IF_FALSE", HasArg: true},
	OpJumpIfTrue:   {Name: "JUMP_IF_TRUE", HasArg: true},
	OpDefineFunc:   {Name: "DEFINE_FUNC", HasArg: true, HasName: true},
	OpLoadLambda:   {Name: "LOAD_LAMBDA", HasArg: true},
	OpCallFunc:     {Name: "CALL_FUNC", HasArg: true},
	OpMapCall:      {Name: "MAP_CALL", HasArg: true},
	OpReturn:       {Name: "RETURN"},
	OpBuildArray:   {Name: "BUILD_ARRAY", HasArg: true},
	OpBuildMap:     {Name: "BUILD_MAP", HasArg: true},
	OpIndexGet:     {Name: "INDEX_GET"},
	OpIndexSet:     {Name: "INDEX_SET"},
	OpMultiGet:     {Name: "MULTI_GET", HasArg: true},
	OpMultiSet:     {Name: "MULTI_SET", HasArg: true},
	OpGetSize:      {Name: "GET_SIZE"},
	OpPrint:        {Name: "PRINT"},
	OpPop:          {Name: "POP"},
	OpDup:          {Name: "DUP"},
	OpHalt:         {Name: "HALT"},
}

// Info returns the opcode's metadata.
func (op Opcode) Info() OpcodeInfo {
	if op < opcodeCount {
		return opcodeTable[op]
	}
	return OpcodeInfo{Name: fmt.Sprintf("OP_%d", op)}
}

func (op Opcode) String() string { return op.Info().Name }

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool { return op < opcodeCount }

// Instruction is one VM instruction: an opcode plus its operands. Arg
// carries a constant index, jump target, or count depending on the
// opcode; Name carries a variable or function name.
type Instruction struct {
	Op   Opcode
	Arg  int
	Name string
}

func (ins Instruction) String() string {
	info := ins.Op.Info()
	switch {
	case info.HasArg && info.HasName:
		return fmt.Sprintf("%s %s %d", info.Name, ins.Name, ins.Arg)
	case info.HasName:
		return fmt.Sprintf("%s %s", info.Name, ins.Name)
	case info.HasArg:
		return fmt.Sprintf("%s %d", info.Name, ins.Arg)
	default:
		return info.Name
	}
}

// Program is a compiled unit: a flat instruction sequence plus its
// constant pool. Both are immutable once compilation returns.
type Program struct {
	Code   []Instruction
	Consts []Value
}

// Disassemble renders a program as a human-readable listing, recursing
// into blueprint constants.
func Disassemble(p *Program) string {
	var b strings.Builder
	disassemble(&b, p.Code, p.Consts, "")
	return b.String()
}

func disassemble(b *strings.Builder, code []Instruction, consts []Value, indent string) {
	for i, ins := range code {
		fmt.Fprintf(b, "%s%04d  %s", indent, i, ins)
		if ins.Op == OpLoadConst && ins.Arg >= 0 && ins.Arg < len(consts) {
			fmt.Fprintf(b, "  ; %s", FormatValue(consts[ins.Arg]))
		}
		b.WriteByte('\n')
	}
	for i, c := range consts {
		if c.Kind() != KindBlueprint {
			continue
		}
		fn := c.Blueprint()
		name := fn.Name
		if name == "" {
			name = "<lambda>"
		}
		fmt.Fprintf(b, "%sconst %d: %s(%s)\n", indent, i, name, strings.Join(fn.Params, ", "))
		disassemble(b, fn.Code, fn.Consts, indent+"    ")
	}
}
