package compiler

// ---------------------------------------------------------------------------
// AST: syntax tree for FluxScript
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	node() // marker method
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// Program is the root node: the top-level statement sequence.
type Program struct {
	Stmts []Stmt
}

func (n *Program) Pos() Position {
	if len(n.Stmts) > 0 {
		return n.Stmts[0].Pos()
	}
	return Position{Line: 1, Column: 1}
}
func (n *Program) node() {}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// LetStmt declares a variable: let name = value.
type LetStmt struct {
	PosVal Position
	Name   string
	Value  Expr
}

// AssignStmt rebinds an existing variable: name assign value.
type AssignStmt struct {
	PosVal Position
	Name   string
	Value  Expr
}

// IndexAssignStmt assigns through one or more index operations:
// target[i]...[k] assign value.
type IndexAssignStmt struct {
	PosVal Position
	Target *IndexExpr
	Value  Expr
}

// IfStmt is a conditional with an optional else branch.
type IfStmt struct {
	PosVal Position
	Cond   Expr
	Then   *BlockStmt
	Else   *BlockStmt // nil when absent
}

// WhileStmt loops while the condition is truthy.
type WhileStmt struct {
	PosVal Position
	Cond   Expr
	Body   *BlockStmt
}

// ForStmt is a counting loop: for (let name = start to end [step s]).
type ForStmt struct {
	PosVal Position
	Name   string
	Start  Expr
	End    Expr
	Step   Expr // nil means step 1
	Body   *BlockStmt
}

// BreakStmt exits the innermost loop.
type BreakStmt struct {
	PosVal Position
}

// ContinueStmt advances the innermost loop to its next iteration.
type ContinueStmt struct {
	PosVal Position
}

// FuncStmt defines a named function.
type FuncStmt struct {
	PosVal Position
	Name   string
	Params []string
	Body   *BlockStmt
}

// ReturnStmt returns a value from the enclosing function.
type ReturnStmt struct {
	PosVal Position
	Value  Expr
}

// PrintStmt writes a value to standard output.
type PrintStmt struct {
	PosVal Position
	Value  Expr
}

// ExprStmt is an expression evaluated for its value at statement level.
type ExprStmt struct {
	X Expr
}

// BlockStmt is a braced statement sequence.
type BlockStmt struct {
	PosVal Position
	Stmts  []Stmt
}

func (n *LetStmt) Pos() Position         { return n.PosVal }
func (n *AssignStmt) Pos() Position      { return n.PosVal }
func (n *IndexAssignStmt) Pos() Position { return n.PosVal }
func (n *IfStmt) Pos() Position         { return n.PosVal }
func (n *WhileStmt) Pos() Position      { return n.PosVal }
func (n *ForStmt) Pos() Position        { return n.PosVal }
func (n *BreakStmt) Pos() Position      { return n.PosVal }
func (n *ContinueStmt) Pos() Position   { return n.PosVal }
func (n *FuncStmt) Pos() Position       { return n.PosVal }
func (n *ReturnStmt) Pos() Position     { return n.PosVal }
func (n *PrintStmt) Pos() Position      { return n.PosVal }
func (n *ExprStmt) Pos() Position       { return n.X.Pos() }
func (n *BlockStmt) Pos() Position      { return n.PosVal }

func (n *LetStmt) node()         {}
func (n *AssignStmt) node()      {}
func (n *IndexAssignStmt) node() {}
func (n *IfStmt) node()         {}
func (n *WhileStmt) node()      {}
func (n *ForStmt) node()        {}
func (n *BreakStmt) node()      {}
func (n *ContinueStmt) node()   {}
func (n *FuncStmt) node()       {}
func (n *ReturnStmt) node()     {}
func (n *PrintStmt) node()      {}
func (n *ExprStmt) node()       {}
func (n *BlockStmt) node()      {}

func (n *LetStmt) stmt()         {}
func (n *AssignStmt) stmt()      {}
func (n *IndexAssignStmt) stmt() {}
func (n *IfStmt) stmt()         {}
func (n *WhileStmt) stmt()      {}
func (n *ForStmt) stmt()        {}
func (n *BreakStmt) stmt()      {}
func (n *ContinueStmt) stmt()   {}
func (n *FuncStmt) stmt()       {}
func (n *ReturnStmt) stmt()     {}
func (n *PrintStmt) stmt()      {}
func (n *ExprStmt) stmt()       {}
func (n *BlockStmt) stmt()      {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// IntLit is an integer literal.
type IntLit struct {
	PosVal Position
	Value  int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	PosVal Position
	Value  float64
}

// StringLit is a string literal.
type StringLit struct {
	PosVal Position
	Value  string
}

// BoolLit is a boolean literal.
type BoolLit struct {
	PosVal Position
	Value  bool
}

// NoneLit is the 'none' literal.
type NoneLit struct {
	PosVal Position
}

// Ident is a variable reference.
type Ident struct {
	PosVal Position
	Name   string
}

// BinaryExpr is a binary operation. Op holds the operator token's
// textual form ("+", "and", "==", ...), which drives opcode dispatch.
type BinaryExpr struct {
	PosVal Position
	Op     string
	X, Y   Expr
}

// UnaryExpr is a unary operation ("-" or "not").
type UnaryExpr struct {
	PosVal Position
	Op     string
	X      Expr
}

// CallExpr is a function call.
type CallExpr struct {
	PosVal Position
	Callee Expr
	Args   []Expr
}

// IndexExpr is a single index operation; chained indexing nests these.
type IndexExpr struct {
	PosVal    Position
	Container Expr
	Index     Expr
}

// ArrayLit is an array literal.
type ArrayLit struct {
	PosVal Position
	Elems  []Expr
}

// MapEntry is one key/value pair of a map literal.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLit is a map literal; pair order is preserved.
type MapLit struct {
	PosVal Position
	Pairs  []MapEntry
}

// FuncLit is an anonymous function expression.
type FuncLit struct {
	PosVal Position
	Params []string
	Body   *BlockStmt
}

func (n *IntLit) Pos() Position     { return n.PosVal }
func (n *FloatLit) Pos() Position   { return n.PosVal }
func (n *StringLit) Pos() Position  { return n.PosVal }
func (n *BoolLit) Pos() Position    { return n.PosVal }
func (n *NoneLit) Pos() Position    { return n.PosVal }
func (n *Ident) Pos() Position      { return n.PosVal }
func (n *BinaryExpr) Pos() Position { return n.PosVal }
func (n *UnaryExpr) Pos() Position  { return n.PosVal }
func (n *CallExpr) Pos() Position   { return n.PosVal }
func (n *IndexExpr) Pos() Position  { return n.PosVal }
func (n *ArrayLit) Pos() Position   { return n.PosVal }
func (n *MapLit) Pos() Position     { return n.PosVal }
func (n *FuncLit) Pos() Position    { return n.PosVal }

func (n *IntLit) node()     {}
func (n *FloatLit) node()   {}
func (n *StringLit) node()  {}
func (n *BoolLit) node()    {}
func (n *NoneLit) node()    {}
func (n *Ident) node()      {}
func (n *BinaryExpr) node() {}
func (n *UnaryExpr) node()  {}
func (n *CallExpr) node()   {}
func (n *IndexExpr) node()  {}
func (n *ArrayLit) node()   {}
func (n *MapLit) node()     {}
func (n *FuncLit) node()    {}

func (n *IntLit) expr()     {}
func (n *FloatLit) expr()   {}
func (n *StringLit) expr()  {}
func (n *BoolLit) expr()    {}
func (n *NoneLit) expr()    {}
func (n *Ident) expr()      {}
func (n *BinaryExpr) expr() {}
func (n *UnaryExpr) expr()  {}
func (n *CallExpr) expr()   {}
func (n *IndexExpr) expr()  {}
func (n *ArrayLit) expr()   {}
func (n *MapLit) expr()     {}
func (n *FuncLit) expr()    {}
