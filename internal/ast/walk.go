package ast

// Children returns the direct children of n in source order. Absent optional
// children are skipped.
func Children(n Node) []Node {
	var c collector
	switch n := n.(type) {
	case *Module:
		c.stmts(n.Body)
	case *FunctionDef:
		c.exprs(n.Decorators)
		c.arguments(n.Args)
		c.expr(n.Returns)
		c.stmts(n.Body)
	case *ClassDef:
		c.exprs(n.Decorators)
		c.exprs(n.Bases)
		c.keywords(n.Keywords)
		c.stmts(n.Body)
	case *Return:
		c.expr(n.Value)
	case *Delete:
		c.exprs(n.Targets)
	case *Assign:
		c.exprs(n.Targets)
		c.expr(n.Value)
	case *AugAssign:
		c.expr(n.Target)
		c.expr(n.Value)
	case *AnnAssign:
		c.expr(n.Target)
		c.expr(n.Annotation)
		c.expr(n.Value)
	case *For:
		c.expr(n.Target)
		c.expr(n.Iter)
		c.stmts(n.Body)
		c.stmts(n.Orelse)
	case *While:
		c.expr(n.Test)
		c.stmts(n.Body)
		c.stmts(n.Orelse)
	case *If:
		c.expr(n.Test)
		c.stmts(n.Body)
		c.stmts(n.Orelse)
	case *With:
		for _, item := range n.Items {
			c.add(item)
		}
		c.stmts(n.Body)
	case *Raise:
		c.expr(n.Exc)
		c.expr(n.Cause)
	case *Try:
		c.stmts(n.Body)
		for _, h := range n.Handlers {
			c.add(h)
		}
		c.stmts(n.Orelse)
		c.stmts(n.Finalbody)
	case *Assert:
		c.expr(n.Test)
		c.expr(n.Msg)
	case *Import:
		c.aliases(n.Names)
	case *ImportFrom:
		c.aliases(n.Names)
	case *ExprStmt:
		c.expr(n.Value)
	case *PrintStmt:
		c.expr(n.Dest)
		c.exprs(n.Values)
	case *ExecStmt:
		c.expr(n.Body)
		c.expr(n.Globals)
		c.expr(n.Locals)
	case *BoolOp:
		c.exprs(n.Values)
	case *NamedExpr:
		c.assignName(n.Target)
		c.expr(n.Value)
	case *BinOp:
		c.expr(n.Left)
		c.expr(n.Right)
	case *UnaryOp:
		c.expr(n.Operand)
	case *Lambda:
		c.arguments(n.Args)
		c.expr(n.Body)
	case *IfExp:
		c.expr(n.Body)
		c.expr(n.Test)
		c.expr(n.Orelse)
	case *Dict:
		for i := range n.Values {
			c.expr(n.Keys[i])
			c.expr(n.Values[i])
		}
	case *Set:
		c.exprs(n.Elts)
	case *ListComp:
		c.expr(n.Elt)
		c.comprehensions(n.Generators)
	case *SetComp:
		c.expr(n.Elt)
		c.comprehensions(n.Generators)
	case *DictComp:
		c.expr(n.Key)
		c.expr(n.Value)
		c.comprehensions(n.Generators)
	case *GeneratorExp:
		c.expr(n.Elt)
		c.comprehensions(n.Generators)
	case *Await:
		c.expr(n.Value)
	case *Yield:
		c.expr(n.Value)
	case *YieldFrom:
		c.expr(n.Value)
	case *Compare:
		c.expr(n.Left)
		c.exprs(n.Comparators)
	case *Call:
		c.expr(n.Func)
		c.exprs(n.Args)
		c.keywords(n.Keywords)
	case *JoinedStr:
		c.exprs(n.Values)
	case *FormattedValue:
		c.expr(n.Value)
		if n.FormatSpec != nil {
			c.add(n.FormatSpec)
		}
	case *Attribute:
		c.expr(n.Value)
	case *Subscript:
		c.expr(n.Value)
		c.expr(n.Slice)
	case *Starred:
		c.expr(n.Value)
	case *List:
		c.exprs(n.Elts)
	case *Tuple:
		c.exprs(n.Elts)
	case *Slice:
		c.expr(n.Lower)
		c.expr(n.Upper)
		c.expr(n.Step)
	case *Repr:
		c.expr(n.Value)
	case *Comprehension:
		c.expr(n.Target)
		c.expr(n.Iter)
		c.exprs(n.Ifs)
	case *ExceptHandler:
		c.expr(n.Type)
		c.assignName(n.Name)
		c.stmts(n.Body)
	case *Keyword:
		c.expr(n.Value)
	case *Arguments:
		for _, a := range n.PosOnly {
			c.add(a)
		}
		for _, a := range n.Args {
			c.add(a)
		}
		c.exprs(n.Defaults)
		c.arg(n.Vararg)
		for _, a := range n.KwOnly {
			c.add(a)
		}
		c.exprs(n.KwDefaults)
		c.arg(n.Kwarg)
	case *Arg:
		c.assignName(n.Name)
		c.expr(n.Annotation)
	case *WithItem:
		c.expr(n.Context)
		c.expr(n.Vars)
	}
	return c.nodes
}

// Inspect traverses the tree rooted at n in pre-order, calling f for every
// node. Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, child := range Children(n) {
		Inspect(child, f)
	}
}

// Walk returns every node of the tree rooted at n in pre-order, n included.
func Walk(n Node) []Node {
	var nodes []Node
	Inspect(n, func(node Node) bool {
		nodes = append(nodes, node)
		return true
	})
	return nodes
}

// Parents maps every node reachable from root to its parent. The root has no
// entry.
func Parents(root Node) map[Node]Node {
	parents := make(map[Node]Node)
	var visit func(Node)
	visit = func(n Node) {
		for _, child := range Children(n) {
			parents[child] = n
			visit(child)
		}
	}
	visit(root)
	return parents
}

// EnclosingScope returns the nearest function, lambda or class around n, or
// nil at module level.
func EnclosingScope(parents map[Node]Node, n Node) Node {
	for p := parents[n]; p != nil; p = parents[p] {
		switch p.(type) {
		case *FunctionDef, *Lambda, *ClassDef:
			return p
		}
	}
	return nil
}

type collector struct {
	nodes []Node
}

func (c *collector) add(n Node) { c.nodes = append(c.nodes, n) }

func (c *collector) expr(e Expr) {
	if e != nil {
		c.add(e)
	}
}

func (c *collector) exprs(es []Expr) {
	for _, e := range es {
		c.expr(e)
	}
}

func (c *collector) stmts(ss []Stmt) {
	for _, s := range ss {
		if s != nil {
			c.add(s)
		}
	}
}

func (c *collector) assignName(n *AssignName) {
	if n != nil {
		c.add(n)
	}
}

func (c *collector) arg(a *Arg) {
	if a != nil {
		c.add(a)
	}
}

func (c *collector) arguments(a *Arguments) {
	if a != nil {
		c.add(a)
	}
}

func (c *collector) keywords(ks []*Keyword) {
	for _, k := range ks {
		c.add(k)
	}
}

func (c *collector) aliases(as []*Alias) {
	for _, a := range as {
		c.add(a)
	}
}

func (c *collector) comprehensions(cs []*Comprehension) {
	for _, g := range cs {
		c.add(g)
	}
}
