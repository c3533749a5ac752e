// Package ast defines the syntax tree of the Python programs pygolf shrinks,
// together with the generic traversals the rules and optimizers rely on.
//
// Trees are rebuilt from text at the start of every phase and are never
// carried across phases, so nodes are plain pointers. Parent links are not
// stored in the nodes; Parents computes them for a whole tree on demand.
package ast

// Pos is the location of the first character of a node in its source text.
// Nodes synthesized by rules carry the position of the node they replace.
type Pos struct {
	Offset int // byte offset, starting at 0
	Line   int // line number, starting at 1
	Column int // column number in bytes, starting at 1
}

// Start returns the position itself; it lets every node expose its Pos
// through the Node interface by embedding.
func (p Pos) Start() Pos { return p }

// IsValid reports whether the position came from source text.
func (p Pos) IsValid() bool { return p.Line > 0 }

// Node is implemented by every tree node.
type Node interface {
	Kind() Kind
	Start() Pos
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Module is the root of every tree.
type Module struct {
	Pos
	Body []Stmt
}

// ----------------------------------------------------------------------------
// Statements

type FunctionDef struct {
	Pos
	Name       string
	Args       *Arguments
	Body       []Stmt
	Decorators []Expr
	Returns    Expr
	Async      bool
}

type ClassDef struct {
	Pos
	Name       string
	Bases      []Expr
	Keywords   []*Keyword
	Body       []Stmt
	Decorators []Expr
}

type Return struct {
	Pos
	Value Expr
}

type Delete struct {
	Pos
	Targets []Expr
}

// Assign is `t1 = t2 = ... = value`.
type Assign struct {
	Pos
	Targets []Expr
	Value   Expr
}

// AugAssign is `target op= value`; Op is the binary operator without '='.
type AugAssign struct {
	Pos
	Target Expr
	Op     string
	Value  Expr
}

type AnnAssign struct {
	Pos
	Target     Expr
	Annotation Expr
	Value      Expr
}

type For struct {
	Pos
	Target Expr
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
	Async  bool
}

type While struct {
	Pos
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

type If struct {
	Pos
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

type With struct {
	Pos
	Items []*WithItem
	Body  []Stmt
	Async bool
}

type Raise struct {
	Pos
	Exc   Expr
	Cause Expr
}

type Try struct {
	Pos
	Body      []Stmt
	Handlers  []*ExceptHandler
	Orelse    []Stmt
	Finalbody []Stmt
}

type Assert struct {
	Pos
	Test Expr
	Msg  Expr
}

type Import struct {
	Pos
	Names []*Alias
}

// ImportFrom is `from ...module import names`; Level counts leading dots.
type ImportFrom struct {
	Pos
	Module string
	Level  int
	Names  []*Alias
}

type Global struct {
	Pos
	Names []string
}

type Nonlocal struct {
	Pos
	Names []string
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Pos
	Value Expr
}

type Pass struct{ Pos }

type Break struct{ Pos }

type Continue struct{ Pos }

// PrintStmt is the statement form of print from the previous language
// generation.
type PrintStmt struct {
	Pos
	Dest   Expr
	Values []Expr
}

// ExecStmt is the statement form of exec from the previous language
// generation.
type ExecStmt struct {
	Pos
	Body    Expr
	Globals Expr
	Locals  Expr
}

// ----------------------------------------------------------------------------
// Expressions

// BoolOp is a chain of `and` or `or`.
type BoolOp struct {
	Pos
	Op     string
	Values []Expr
}

// NamedExpr is `target := value`.
type NamedExpr struct {
	Pos
	Target *AssignName
	Value  Expr
}

type BinOp struct {
	Pos
	Left  Expr
	Op    string
	Right Expr
}

// UnaryOp is one of `-x`, `+x`, `~x`, `not x`.
type UnaryOp struct {
	Pos
	Op      string
	Operand Expr
}

type Lambda struct {
	Pos
	Args *Arguments
	Body Expr
}

// IfExp is `body if test else orelse`.
type IfExp struct {
	Pos
	Test   Expr
	Body   Expr
	Orelse Expr
}

// Dict holds parallel keys and values; a nil key marks a `**value` entry.
type Dict struct {
	Pos
	Keys   []Expr
	Values []Expr
}

type Set struct {
	Pos
	Elts []Expr
}

type ListComp struct {
	Pos
	Elt        Expr
	Generators []*Comprehension
}

type SetComp struct {
	Pos
	Elt        Expr
	Generators []*Comprehension
}

type DictComp struct {
	Pos
	Key        Expr
	Value      Expr
	Generators []*Comprehension
}

type GeneratorExp struct {
	Pos
	Elt        Expr
	Generators []*Comprehension
}

type Await struct {
	Pos
	Value Expr
}

type Yield struct {
	Pos
	Value Expr
}

type YieldFrom struct {
	Pos
	Value Expr
}

// Compare is `left op1 c1 op2 c2 ...`. Ops are spelled as in source, with
// "not in" and "is not" as single entries.
type Compare struct {
	Pos
	Left        Expr
	Ops         []string
	Comparators []Expr
}

// Call holds positional arguments (possibly *Starred) in Args and keyword
// arguments (possibly `**x`) in Keywords.
type Call struct {
	Pos
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

// JoinedStr is a formatted string literal. Values alternate between string
// constants and *FormattedValue substitutions.
type JoinedStr struct {
	Pos
	Values []Expr
}

// FormattedValue is one `{value!conversion:spec}` substitution.
type FormattedValue struct {
	Pos
	Value      Expr
	Conversion byte // 0, 'r', 's' or 'a'
	FormatSpec *JoinedStr
}

// ConstType distinguishes literal constants.
type ConstType int

const (
	ConstNone ConstType = iota
	ConstTrue
	ConstFalse
	ConstEllipsis
	ConstInt
	ConstFloat
	ConstImag
	ConstStr
	ConstBytes
)

// Const is a literal. Value holds the decoded contents of string and bytes
// literals and the source spelling of numbers (underscores removed).
type Const struct {
	Pos
	Type  ConstType
	Value string
}

// IsString reports whether c is a str literal.
func (c *Const) IsString() bool { return c.Type == ConstStr }

type Attribute struct {
	Pos
	Value Expr
	Attr  string
}

type Subscript struct {
	Pos
	Value Expr
	Slice Expr
}

type Starred struct {
	Pos
	Value Expr
}

// Name is a read (or delete) of a variable.
type Name struct {
	Pos
	ID string
}

// AssignName is a binding occurrence of a variable: assignment and loop
// targets, parameters, `as` targets and walrus targets.
type AssignName struct {
	Pos
	ID string
}

type List struct {
	Pos
	Elts []Expr
}

type Tuple struct {
	Pos
	Elts []Expr
}

// Slice is `lower:upper:step` inside a subscript. HasStep records a second
// colon with an empty step.
type Slice struct {
	Pos
	Lower   Expr
	Upper   Expr
	Step    Expr
	HasStep bool
}

// Repr is the back-quoted repr of the previous language generation.
type Repr struct {
	Pos
	Value Expr
}

// ----------------------------------------------------------------------------
// Helpers

type Comprehension struct {
	Pos
	Target Expr
	Iter   Expr
	Ifs    []Expr
	Async  bool
}

type ExceptHandler struct {
	Pos
	Type Expr
	Name *AssignName
	Body []Stmt
}

// Keyword is `arg=value` in a call or class header; an empty Arg is `**value`.
type Keyword struct {
	Pos
	Arg   string
	Value Expr
}

// Arguments is a parameter list. Defaults align with the tail of
// PosOnly+Args; KwDefaults aligns with KwOnly and may hold nils.
type Arguments struct {
	Pos
	PosOnly    []*Arg
	Args       []*Arg
	Vararg     *Arg
	KwOnly     []*Arg
	KwDefaults []Expr
	Kwarg      *Arg
	Defaults   []Expr
}

// Empty reports whether the list declares no parameters.
func (a *Arguments) Empty() bool {
	return len(a.PosOnly) == 0 && len(a.Args) == 0 && a.Vararg == nil && len(a.KwOnly) == 0 && a.Kwarg == nil
}

// Arg is one parameter.
type Arg struct {
	Pos
	Name       *AssignName
	Annotation Expr
}

// Alias is `name as asname` in an import.
type Alias struct {
	Pos
	Name   string
	AsName string
}

type WithItem struct {
	Pos
	Context Expr
	Vars    Expr
}

// ----------------------------------------------------------------------------
// Kind and category markers

func (*Module) Kind() Kind         { return KindModule }
func (*FunctionDef) Kind() Kind    { return KindFunctionDef }
func (*ClassDef) Kind() Kind       { return KindClassDef }
func (*Return) Kind() Kind         { return KindReturn }
func (*Delete) Kind() Kind         { return KindDelete }
func (*Assign) Kind() Kind         { return KindAssign }
func (*AugAssign) Kind() Kind      { return KindAugAssign }
func (*AnnAssign) Kind() Kind      { return KindAnnAssign }
func (*For) Kind() Kind            { return KindFor }
func (*While) Kind() Kind          { return KindWhile }
func (*If) Kind() Kind             { return KindIf }
func (*With) Kind() Kind           { return KindWith }
func (*Raise) Kind() Kind          { return KindRaise }
func (*Try) Kind() Kind            { return KindTry }
func (*Assert) Kind() Kind         { return KindAssert }
func (*Import) Kind() Kind         { return KindImport }
func (*ImportFrom) Kind() Kind     { return KindImportFrom }
func (*Global) Kind() Kind         { return KindGlobal }
func (*Nonlocal) Kind() Kind       { return KindNonlocal }
func (*ExprStmt) Kind() Kind       { return KindExprStmt }
func (*Pass) Kind() Kind           { return KindPass }
func (*Break) Kind() Kind          { return KindBreak }
func (*Continue) Kind() Kind       { return KindContinue }
func (*PrintStmt) Kind() Kind      { return KindPrintStmt }
func (*ExecStmt) Kind() Kind       { return KindExecStmt }
func (*BoolOp) Kind() Kind         { return KindBoolOp }
func (*NamedExpr) Kind() Kind      { return KindNamedExpr }
func (*BinOp) Kind() Kind          { return KindBinOp }
func (*UnaryOp) Kind() Kind        { return KindUnaryOp }
func (*Lambda) Kind() Kind         { return KindLambda }
func (*IfExp) Kind() Kind          { return KindIfExp }
func (*Dict) Kind() Kind           { return KindDict }
func (*Set) Kind() Kind            { return KindSet }
func (*ListComp) Kind() Kind       { return KindListComp }
func (*SetComp) Kind() Kind        { return KindSetComp }
func (*DictComp) Kind() Kind       { return KindDictComp }
func (*GeneratorExp) Kind() Kind   { return KindGeneratorExp }
func (*Await) Kind() Kind          { return KindAwait }
func (*Yield) Kind() Kind          { return KindYield }
func (*YieldFrom) Kind() Kind      { return KindYieldFrom }
func (*Compare) Kind() Kind        { return KindCompare }
func (*Call) Kind() Kind           { return KindCall }
func (*JoinedStr) Kind() Kind      { return KindJoinedStr }
func (*FormattedValue) Kind() Kind { return KindFormattedValue }
func (*Const) Kind() Kind          { return KindConst }
func (*Attribute) Kind() Kind      { return KindAttribute }
func (*Subscript) Kind() Kind      { return KindSubscript }
func (*Starred) Kind() Kind        { return KindStarred }
func (*Name) Kind() Kind           { return KindName }
func (*AssignName) Kind() Kind     { return KindAssignName }
func (*List) Kind() Kind           { return KindList }
func (*Tuple) Kind() Kind          { return KindTuple }
func (*Slice) Kind() Kind          { return KindSlice }
func (*Repr) Kind() Kind           { return KindRepr }
func (*Comprehension) Kind() Kind  { return KindComprehension }
func (*ExceptHandler) Kind() Kind  { return KindExceptHandler }
func (*Keyword) Kind() Kind        { return KindKeyword }
func (*Arguments) Kind() Kind      { return KindArguments }
func (*Arg) Kind() Kind            { return KindArg }
func (*Alias) Kind() Kind          { return KindAlias }
func (*WithItem) Kind() Kind       { return KindWithItem }

func (*FunctionDef) stmtNode() {}
func (*ClassDef) stmtNode()    {}
func (*Return) stmtNode()      {}
func (*Delete) stmtNode()      {}
func (*Assign) stmtNode()      {}
func (*AugAssign) stmtNode()   {}
func (*AnnAssign) stmtNode()   {}
func (*For) stmtNode()         {}
func (*While) stmtNode()       {}
func (*If) stmtNode()          {}
func (*With) stmtNode()        {}
func (*Raise) stmtNode()       {}
func (*Try) stmtNode()         {}
func (*Assert) stmtNode()      {}
func (*Import) stmtNode()      {}
func (*ImportFrom) stmtNode()  {}
func (*Global) stmtNode()      {}
func (*Nonlocal) stmtNode()    {}
func (*ExprStmt) stmtNode()    {}
func (*Pass) stmtNode()        {}
func (*Break) stmtNode()       {}
func (*Continue) stmtNode()    {}
func (*PrintStmt) stmtNode()   {}
func (*ExecStmt) stmtNode()    {}

func (*BoolOp) exprNode()         {}
func (*NamedExpr) exprNode()      {}
func (*BinOp) exprNode()          {}
func (*UnaryOp) exprNode()        {}
func (*Lambda) exprNode()         {}
func (*IfExp) exprNode()          {}
func (*Dict) exprNode()           {}
func (*Set) exprNode()            {}
func (*ListComp) exprNode()       {}
func (*SetComp) exprNode()        {}
func (*DictComp) exprNode()       {}
func (*GeneratorExp) exprNode()   {}
func (*Await) exprNode()          {}
func (*Yield) exprNode()          {}
func (*YieldFrom) exprNode()      {}
func (*Compare) exprNode()        {}
func (*Call) exprNode()           {}
func (*JoinedStr) exprNode()      {}
func (*FormattedValue) exprNode() {}
func (*Const) exprNode()          {}
func (*Attribute) exprNode()      {}
func (*Subscript) exprNode()      {}
func (*Starred) exprNode()        {}
func (*Name) exprNode()           {}
func (*AssignName) exprNode()     {}
func (*List) exprNode()           {}
func (*Tuple) exprNode()          {}
func (*Slice) exprNode()          {}
func (*Repr) exprNode()           {}
