package compiler

import "testing"

// parse is a test helper that fails on any parse error.
func parse(t *testing.T, input string) *Program {
	t.Helper()
	p := NewParser(input)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return prog
}

func TestParseLet(t *testing.T) {
	prog := parse(t, "let x = 5 + 3")
	if len(prog.Stmts) != 1 {
		t.Fatalf("len(stmts) = %d, want 1", len(prog.Stmts))
	}
	let, ok := prog.Stmts[0].(*LetStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *LetStmt", prog.Stmts[0])
	}
	if let.Name != "x" {
		t.Errorf("name = %q, want x", let.Name)
	}
	bin, ok := let.Value.(*BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Errorf("value = %T, want binary +", let.Value)
	}
}

func TestParsePrecedence(t *testing.T) {
	prog := parse(t, "let x = 5 + 3 * 2")
	let := prog.Stmts[0].(*LetStmt)
	add := let.Value.(*BinaryExpr)
	if add.Op != "+" {
		t.Fatalf("top op = %q, want +", add.Op)
	}
	mul, ok := add.Y.(*BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Errorf("right = %T, want binary *", add.Y)
	}
}

func TestParseAssignStatement(t *testing.T) {
	prog := parse(t, "x assign 10")
	assign, ok := prog.Stmts[0].(*AssignStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *AssignStmt", prog.Stmts[0])
	}
	if assign.Name != "x" {
		t.Errorf("name = %q, want x", assign.Name)
	}
}

func TestParseIndexAssign(t *testing.T) {
	prog := parse(t, "grid[1][2] assign 9")
	ia, ok := prog.Stmts[0].(*IndexAssignStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *IndexAssignStmt", prog.Stmts[0])
	}
	inner, ok := ia.Target.Container.(*IndexExpr)
	if !ok {
		t.Fatalf("target container = %T, want nested *IndexExpr", ia.Target.Container)
	}
	if _, ok := inner.Container.(*Ident); !ok {
		t.Errorf("base = %T, want *Ident", inner.Container)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parse(t, "if (x > 0) { print x } else { print 0 }")
	ifs, ok := prog.Stmts[0].(*IfStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *IfStmt", prog.Stmts[0])
	}
	if ifs.Else == nil {
		t.Errorf("else branch missing")
	}
}

func TestParseForLoop(t *testing.T) {
	prog := parse(t, "for (let i = 0 to 10 step 2) { print i }")
	f, ok := prog.Stmts[0].(*ForStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *ForStmt", prog.Stmts[0])
	}
	if f.Name != "i" {
		t.Errorf("loop variable = %q, want i", f.Name)
	}
	if f.Step == nil {
		t.Errorf("step missing")
	}
}

func TestParseFuncDefinition(t *testing.T) {
	prog := parse(t, "func add(a, b) { return a + b }")
	fn, ok := prog.Stmts[0].(*FuncStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *FuncStmt", prog.Stmts[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Errorf("func = %s(%d params), want add(2 params)", fn.Name, len(fn.Params))
	}
}

func TestParseLambdaExpression(t *testing.T) {
	prog := parse(t, "let double = func (x) { return x * 2 }")
	let := prog.Stmts[0].(*LetStmt)
	if _, ok := let.Value.(*FuncLit); !ok {
		t.Errorf("value = %T, want *FuncLit", let.Value)
	}
}

func TestParseAppendSugar(t *testing.T) {
	prog := parse(t, "arr append 5")
	es, ok := prog.Stmts[0].(*ExprStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *ExprStmt", prog.Stmts[0])
	}
	call, ok := es.X.(*CallExpr)
	if !ok {
		t.Fatalf("expr = %T, want *CallExpr", es.X)
	}
	callee, ok := call.Callee.(*Ident)
	if !ok || callee.Name != "__append" {
		t.Errorf("callee = %v, want __append", call.Callee)
	}
	if len(call.Args) != 2 {
		t.Errorf("len(args) = %d, want 2", len(call.Args))
	}
}

func TestParseNoneLiteral(t *testing.T) {
	prog := parse(t, "let x = none")
	let := prog.Stmts[0].(*LetStmt)
	if _, ok := let.Value.(*NoneLit); !ok {
		t.Errorf("value = %T, want *NoneLit", let.Value)
	}
}

func TestParseMapLiteral(t *testing.T) {
	prog := parse(t, `let m = {"a": 1, 2: "b"}`)
	let := prog.Stmts[0].(*LetStmt)
	m, ok := let.Value.(*MapLit)
	if !ok {
		t.Fatalf("value = %T, want *MapLit", let.Value)
	}
	if len(m.Pairs) != 2 {
		t.Errorf("len(pairs) = %d, want 2", len(m.Pairs))
	}
}

func TestParseMapKeyedCall(t *testing.T) {
	prog := parse(t, `handlers["go"](1)`)
	es := prog.Stmts[0].(*ExprStmt)
	call, ok := es.X.(*CallExpr)
	if !ok {
		t.Fatalf("expr = %T, want *CallExpr", es.X)
	}
	if _, ok := call.Callee.(*IndexExpr); !ok {
		t.Errorf("callee = %T, want *IndexExpr", call.Callee)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"let = 5",
		"if x > 0 { }",
		"for (i = 0 to 10) { }",
		"func (",
		"let x = ",
	}
	for _, input := range tests {
		p := NewParser(input)
		p.ParseProgram()
		if len(p.Errors()) == 0 {
			t.Errorf("input %q: no parse errors, want at least one", input)
		}
	}
}

func TestParseRecoversAfterError(t *testing.T) {
	p := NewParser("let = 5\nlet y = 2")
	prog := p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("no parse errors, want at least one")
	}
	found := false
	for _, stmt := range prog.Stmts {
		if let, ok := stmt.(*LetStmt); ok && let.Name == "y" {
			found = true
		}
	}
	if !found {
		t.Errorf("statement after error was not recovered")
	}
}
