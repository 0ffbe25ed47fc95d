package compiler

import "sort"

// ---------------------------------------------------------------------------
// Free-variable analysis
// ---------------------------------------------------------------------------

// freeVars returns the names a function body references without binding
// locally: not a parameter, not declared by let or a loop header, not a
// nested function's own name. The result is informational; the VM
// captures by snapshot, not by this list.
func freeVars(body *BlockStmt, params []string) []string {
	bound := make(map[string]bool, len(params))
	for _, p := range params {
		bound[p] = true
	}
	free := make(map[string]bool)
	collectStmts(body.Stmts, bound, free)

	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectStmts(stmts []Stmt, bound, free map[string]bool) {
	for _, stmt := range stmts {
		collectStmt(stmt, bound, free)
	}
}

func collectStmt(stmt Stmt, bound, free map[string]bool) {
	switch s := stmt.(type) {
	case *LetStmt:
		collectExpr(s.Value, bound, free)
		bound[s.Name] = true
	case *AssignStmt:
		if !bound[s.Name] {
			free[s.Name] = true
		}
		collectExpr(s.Value, bound, free)
	case *IndexAssignStmt:
		collectExpr(s.Target, bound, free)
		collectExpr(s.Value, bound, free)
	case *IfStmt:
		collectExpr(s.Cond, bound, free)
		collectStmts(s.Then.Stmts, bound, free)
		if s.Else != nil {
			collectStmts(s.Else.Stmts, bound, free)
		}
	case *WhileStmt:
		collectExpr(s.Cond, bound, free)
		collectStmts(s.Body.Stmts, bound, free)
	case *ForStmt:
		collectExpr(s.Start, bound, free)
		collectExpr(s.End, bound, free)
		if s.Step != nil {
			collectExpr(s.Step, bound, free)
		}
		bound[s.Name] = true
		collectStmts(s.Body.Stmts, bound, free)
	case *FuncStmt:
		bound[s.Name] = true
		inner := copyBound(bound)
		for _, p := range s.Params {
			inner[p] = true
		}
		collectStmts(s.Body.Stmts, inner, free)
	case *ReturnStmt:
		collectExpr(s.Value, bound, free)
	case *PrintStmt:
		collectExpr(s.Value, bound, free)
	case *ExprStmt:
		collectExpr(s.X, bound, free)
	case *BlockStmt:
		collectStmts(s.Stmts, bound, free)
	}
}

func collectExpr(expr Expr, bound, free map[string]bool) {
	switch e := expr.(type) {
	case *Ident:
		if !bound[e.Name] && !isBuiltinName(e.Name) {
			free[e.Name] = true
		}
	case *BinaryExpr:
		collectExpr(e.X, bound, free)
		collectExpr(e.Y, bound, free)
	case *UnaryExpr:
		collectExpr(e.X, bound, free)
	case *CallExpr:
		collectExpr(e.Callee, bound, free)
		for _, arg := range e.Args {
			collectExpr(arg, bound, free)
		}
	case *IndexExpr:
		collectExpr(e.Container, bound, free)
		collectExpr(e.Index, bound, free)
	case *ArrayLit:
		for _, elem := range e.Elems {
			collectExpr(elem, bound, free)
		}
	case *MapLit:
		for _, pair := range e.Pairs {
			collectExpr(pair.Key, bound, free)
			collectExpr(pair.Value, bound, free)
		}
	case *FuncLit:
		inner := copyBound(bound)
		for _, p := range e.Params {
			inner[p] = true
		}
		collectStmts(e.Body.Stmts, inner, free)
	}
}

func copyBound(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var builtinNames = map[string]bool{
	"to_string": true,
	"to_number": true,
	"split":     true,
	"substring": true,
	"__append":  true,
	"size":      true,
}

func isBuiltinName(name string) bool {
	return builtinNames[name]
}
