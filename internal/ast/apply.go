package ast

import (
	"errors"
	"fmt"
)

// ErrBadReplacement is returned by Apply when a hook replaces a node with
// one that cannot stand in its place, such as a statement where an
// expression is required.
var ErrBadReplacement = errors.New("bad replacement node")

// Hook receives every node after its children have been rebuilt and returns
// the node that takes its place (possibly n itself).
type Hook func(n Node) Node

// Apply rebuilds the tree rooted at root bottom-up, passing each node to hook
// once all of its children have been passed. Because a parent is handed to
// the hook only after its children were replaced, a replacement produced for
// a child can itself be matched when the parent is visited.
//
// The tree is updated in place; the returned node is the new root.
func Apply(root Node, hook Hook) (Node, error) {
	a := &applier{hook: hook}
	out := a.node(root)
	if a.err != nil {
		return root, a.err
	}
	return out, nil
}

type applier struct {
	hook Hook
	err  error
}

func (a *applier) fail(old, repl Node, want string) {
	if a.err != nil {
		return
	}
	got := "nil"
	if repl != nil {
		got = repl.Kind().String()
	}
	a.err = fmt.Errorf("%w: %s at %d:%d replaced by %s, want %s",
		ErrBadReplacement, old.Kind(), old.Start().Line, old.Start().Column, got, want)
}

func (a *applier) expr(e Expr) Expr {
	if e == nil {
		return nil
	}
	r := a.node(e)
	out, ok := r.(Expr)
	if !ok || out == nil {
		a.fail(e, r, "expression")
		return e
	}
	return out
}

func (a *applier) exprs(es []Expr) []Expr {
	for i, e := range es {
		es[i] = a.expr(e)
	}
	return es
}

func (a *applier) stmts(ss []Stmt) []Stmt {
	for i, s := range ss {
		if s == nil {
			continue
		}
		r := a.node(s)
		out, ok := r.(Stmt)
		if !ok || out == nil {
			a.fail(s, r, "statement")
			continue
		}
		ss[i] = out
	}
	return ss
}

func (a *applier) assignName(n *AssignName) *AssignName {
	if n == nil {
		return nil
	}
	r := a.node(n)
	out, ok := r.(*AssignName)
	if !ok || out == nil {
		a.fail(n, r, "AssignName")
		return n
	}
	return out
}

func (a *applier) arg(n *Arg) *Arg {
	if n == nil {
		return nil
	}
	r := a.node(n)
	out, ok := r.(*Arg)
	if !ok || out == nil {
		a.fail(n, r, "Arg")
		return n
	}
	return out
}

func (a *applier) args(as []*Arg) []*Arg {
	for i, n := range as {
		as[i] = a.arg(n)
	}
	return as
}

func (a *applier) arguments(n *Arguments) *Arguments {
	if n == nil {
		return nil
	}
	r := a.node(n)
	out, ok := r.(*Arguments)
	if !ok || out == nil {
		a.fail(n, r, "Arguments")
		return n
	}
	return out
}

func (a *applier) keywords(ks []*Keyword) []*Keyword {
	for i, k := range ks {
		r := a.node(k)
		out, ok := r.(*Keyword)
		if !ok || out == nil {
			a.fail(k, r, "Keyword")
			continue
		}
		ks[i] = out
	}
	return ks
}

func (a *applier) aliases(as []*Alias) []*Alias {
	for i, n := range as {
		r := a.node(n)
		out, ok := r.(*Alias)
		if !ok || out == nil {
			a.fail(n, r, "Alias")
			continue
		}
		as[i] = out
	}
	return as
}

func (a *applier) comprehensions(cs []*Comprehension) []*Comprehension {
	for i, n := range cs {
		r := a.node(n)
		out, ok := r.(*Comprehension)
		if !ok || out == nil {
			a.fail(n, r, "Comprehension")
			continue
		}
		cs[i] = out
	}
	return cs
}

func (a *applier) joinedStr(n *JoinedStr) *JoinedStr {
	if n == nil {
		return nil
	}
	r := a.node(n)
	out, ok := r.(*JoinedStr)
	if !ok || out == nil {
		a.fail(n, r, "JoinedStr")
		return n
	}
	return out
}

// node rebuilds the children of n, then hands n to the hook.
func (a *applier) node(n Node) Node {
	switch n := n.(type) {
	case *Module:
		n.Body = a.stmts(n.Body)
	case *FunctionDef:
		n.Decorators = a.exprs(n.Decorators)
		n.Args = a.arguments(n.Args)
		n.Returns = a.expr(n.Returns)
		n.Body = a.stmts(n.Body)
	case *ClassDef:
		n.Decorators = a.exprs(n.Decorators)
		n.Bases = a.exprs(n.Bases)
		n.Keywords = a.keywords(n.Keywords)
		n.Body = a.stmts(n.Body)
	case *Return:
		n.Value = a.expr(n.Value)
	case *Delete:
		n.Targets = a.exprs(n.Targets)
	case *Assign:
		n.Targets = a.exprs(n.Targets)
		n.Value = a.expr(n.Value)
	case *AugAssign:
		n.Target = a.expr(n.Target)
		n.Value = a.expr(n.Value)
	case *AnnAssign:
		n.Target = a.expr(n.Target)
		n.Annotation = a.expr(n.Annotation)
		n.Value = a.expr(n.Value)
	case *For:
		n.Target = a.expr(n.Target)
		n.Iter = a.expr(n.Iter)
		n.Body = a.stmts(n.Body)
		n.Orelse = a.stmts(n.Orelse)
	case *While:
		n.Test = a.expr(n.Test)
		n.Body = a.stmts(n.Body)
		n.Orelse = a.stmts(n.Orelse)
	case *If:
		n.Test = a.expr(n.Test)
		n.Body = a.stmts(n.Body)
		n.Orelse = a.stmts(n.Orelse)
	case *With:
		for i, item := range n.Items {
			r := a.node(item)
			out, ok := r.(*WithItem)
			if !ok || out == nil {
				a.fail(item, r, "WithItem")
				continue
			}
			n.Items[i] = out
		}
		n.Body = a.stmts(n.Body)
	case *Raise:
		n.Exc = a.expr(n.Exc)
		n.Cause = a.expr(n.Cause)
	case *Try:
		n.Body = a.stmts(n.Body)
		for i, h := range n.Handlers {
			r := a.node(h)
			out, ok := r.(*ExceptHandler)
			if !ok || out == nil {
				a.fail(h, r, "ExceptHandler")
				continue
			}
			n.Handlers[i] = out
		}
		n.Orelse = a.stmts(n.Orelse)
		n.Finalbody = a.stmts(n.Finalbody)
	case *Assert:
		n.Test = a.expr(n.Test)
		n.Msg = a.expr(n.Msg)
	case *Import:
		n.Names = a.aliases(n.Names)
	case *ImportFrom:
		n.Names = a.aliases(n.Names)
	case *ExprStmt:
		n.Value = a.expr(n.Value)
	case *PrintStmt:
		n.Dest = a.expr(n.Dest)
		n.Values = a.exprs(n.Values)
	case *ExecStmt:
		n.Body = a.expr(n.Body)
		n.Globals = a.expr(n.Globals)
		n.Locals = a.expr(n.Locals)
	case *BoolOp:
		n.Values = a.exprs(n.Values)
	case *NamedExpr:
		n.Target = a.assignName(n.Target)
		n.Value = a.expr(n.Value)
	case *BinOp:
		n.Left = a.expr(n.Left)
		n.Right = a.expr(n.Right)
	case *UnaryOp:
		n.Operand = a.expr(n.Operand)
	case *Lambda:
		n.Args = a.arguments(n.Args)
		n.Body = a.expr(n.Body)
	case *IfExp:
		n.Body = a.expr(n.Body)
		n.Test = a.expr(n.Test)
		n.Orelse = a.expr(n.Orelse)
	case *Dict:
		for i := range n.Values {
			n.Keys[i] = a.expr(n.Keys[i])
			n.Values[i] = a.expr(n.Values[i])
		}
	case *Set:
		n.Elts = a.exprs(n.Elts)
	case *ListComp:
		n.Elt = a.expr(n.Elt)
		n.Generators = a.comprehensions(n.Generators)
	case *SetComp:
		n.Elt = a.expr(n.Elt)
		n.Generators = a.comprehensions(n.Generators)
	case *DictComp:
		n.Key = a.expr(n.Key)
		n.Value = a.expr(n.Value)
		n.Generators = a.comprehensions(n.Generators)
	case *GeneratorExp:
		n.Elt = a.expr(n.Elt)
		n.Generators = a.comprehensions(n.Generators)
	case *Await:
		n.Value = a.expr(n.Value)
	case *Yield:
		n.Value = a.expr(n.Value)
	case *YieldFrom:
		n.Value = a.expr(n.Value)
	case *Compare:
		n.Left = a.expr(n.Left)
		n.Comparators = a.exprs(n.Comparators)
	case *Call:
		n.Func = a.expr(n.Func)
		n.Args = a.exprs(n.Args)
		n.Keywords = a.keywords(n.Keywords)
	case *JoinedStr:
		n.Values = a.exprs(n.Values)
	case *FormattedValue:
		n.Value = a.expr(n.Value)
		n.FormatSpec = a.joinedStr(n.FormatSpec)
	case *Attribute:
		n.Value = a.expr(n.Value)
	case *Subscript:
		n.Value = a.expr(n.Value)
		n.Slice = a.expr(n.Slice)
	case *Starred:
		n.Value = a.expr(n.Value)
	case *List:
		n.Elts = a.exprs(n.Elts)
	case *Tuple:
		n.Elts = a.exprs(n.Elts)
	case *Slice:
		n.Lower = a.expr(n.Lower)
		n.Upper = a.expr(n.Upper)
		n.Step = a.expr(n.Step)
	case *Repr:
		n.Value = a.expr(n.Value)
	case *Comprehension:
		n.Target = a.expr(n.Target)
		n.Iter = a.expr(n.Iter)
		n.Ifs = a.exprs(n.Ifs)
	case *ExceptHandler:
		n.Type = a.expr(n.Type)
		n.Name = a.assignName(n.Name)
		n.Body = a.stmts(n.Body)
	case *Keyword:
		n.Value = a.expr(n.Value)
	case *Arguments:
		n.PosOnly = a.args(n.PosOnly)
		n.Args = a.args(n.Args)
		n.Defaults = a.exprs(n.Defaults)
		n.Vararg = a.arg(n.Vararg)
		n.KwOnly = a.args(n.KwOnly)
		n.KwDefaults = a.exprs(n.KwDefaults)
		n.Kwarg = a.arg(n.Kwarg)
	case *Arg:
		n.Name = a.assignName(n.Name)
		n.Annotation = a.expr(n.Annotation)
	case *WithItem:
		n.Context = a.expr(n.Context)
		n.Vars = a.expr(n.Vars)
	}
	if a.hook == nil {
		return n
	}
	return a.hook(n)
}
