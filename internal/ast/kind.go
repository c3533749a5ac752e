package ast

import "fmt"

// Kind tags every node type of the tree. The set is closed: a switch over
// Kind (or over the concrete node types) is the only dispatch mechanism.
type Kind int

const (
	KindInvalid Kind = iota

	KindModule

	// statements
	KindFunctionDef
	KindClassDef
	KindReturn
	KindDelete
	KindAssign
	KindAugAssign
	KindAnnAssign
	KindFor
	KindWhile
	KindIf
	KindWith
	KindRaise
	KindTry
	KindAssert
	KindImport
	KindImportFrom
	KindGlobal
	KindNonlocal
	KindExprStmt
	KindPass
	KindBreak
	KindContinue

	// expressions
	KindBoolOp
	KindNamedExpr
	KindBinOp
	KindUnaryOp
	KindLambda
	KindIfExp
	KindDict
	KindSet
	KindListComp
	KindSetComp
	KindDictComp
	KindGeneratorExp
	KindAwait
	KindYield
	KindYieldFrom
	KindCompare
	KindCall
	KindJoinedStr
	KindFormattedValue
	KindConst
	KindAttribute
	KindSubscript
	KindStarred
	KindName
	KindAssignName
	KindList
	KindTuple
	KindSlice

	// helpers that are neither statements nor expressions
	KindComprehension
	KindExceptHandler
	KindKeyword
	KindArguments
	KindArg
	KindAlias
	KindWithItem

	// previous language generation, parsed only to be rejected by the printer
	KindPrintStmt
	KindExecStmt
	KindRepr

	kindCount
)

var kindNames = [...]string{
	KindInvalid:        "Invalid",
	KindModule:         "Module",
	KindFunctionDef:    "FunctionDef",
	KindClassDef:       "ClassDef",
	KindReturn:         "Return",
	KindDelete:         "Delete",
	KindAssign:         "Assign",
	KindAugAssign:      "AugAssign",
	KindAnnAssign:      "AnnAssign",
	KindFor:            "For",
	KindWhile:          "While",
	KindIf:             "If",
	KindWith:           "With",
	KindRaise:          "Raise",
	KindTry:            "Try",
	KindAssert:         "Assert",
	KindImport:         "Import",
	KindImportFrom:     "ImportFrom",
	KindGlobal:         "Global",
	KindNonlocal:       "Nonlocal",
	KindExprStmt:       "Expr",
	KindPass:           "Pass",
	KindBreak:          "Break",
	KindContinue:       "Continue",
	KindBoolOp:         "BoolOp",
	KindNamedExpr:      "NamedExpr",
	KindBinOp:          "BinOp",
	KindUnaryOp:        "UnaryOp",
	KindLambda:         "Lambda",
	KindIfExp:          "IfExp",
	KindDict:           "Dict",
	KindSet:            "Set",
	KindListComp:       "ListComp",
	KindSetComp:        "SetComp",
	KindDictComp:       "DictComp",
	KindGeneratorExp:   "GeneratorExp",
	KindAwait:          "Await",
	KindYield:          "Yield",
	KindYieldFrom:      "YieldFrom",
	KindCompare:        "Compare",
	KindCall:           "Call",
	KindJoinedStr:      "JoinedStr",
	KindFormattedValue: "FormattedValue",
	KindConst:          "Const",
	KindAttribute:      "Attribute",
	KindSubscript:      "Subscript",
	KindStarred:        "Starred",
	KindName:           "Name",
	KindAssignName:     "AssignName",
	KindList:           "List",
	KindTuple:          "Tuple",
	KindSlice:          "Slice",
	KindComprehension:  "Comprehension",
	KindExceptHandler:  "ExceptHandler",
	KindKeyword:        "Keyword",
	KindArguments:      "Arguments",
	KindArg:            "Arg",
	KindAlias:          "Alias",
	KindWithItem:       "WithItem",
	KindPrintStmt:      "Print",
	KindExecStmt:       "Exec",
	KindRepr:           "Repr",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsLegacy reports whether k belongs to the previous language generation.
func (k Kind) IsLegacy() bool {
	return k == KindPrintStmt || k == KindExecStmt || k == KindRepr
}

// IsBlock reports whether statements of kind k carry an indented body.
func (k Kind) IsBlock() bool {
	switch k {
	case KindFunctionDef, KindClassDef, KindFor, KindWhile, KindIf, KindWith, KindTry:
		return true
	}
	return false
}
