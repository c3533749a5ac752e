package rules

// Builtins lists the lowercase builtin functions calls to which may be
// routed through a short alias. super is absent: the zero-argument form
// only works when called by that name.
var Builtins = []string{
	"abs", "all", "any", "ascii", "bin", "bool", "breakpoint", "bytearray",
	"bytes", "callable", "chr", "classmethod", "compile", "complex",
	"delattr", "dict", "dir", "divmod", "enumerate", "eval", "exec",
	"filter", "float", "format", "frozenset", "getattr", "globals",
	"hasattr", "hash", "help", "hex", "id", "input", "int", "isinstance",
	"issubclass", "iter", "len", "list", "locals", "map", "max",
	"memoryview", "min", "next", "object", "oct", "open", "ord", "pow",
	"print", "property", "range", "repr", "reversed", "round", "set",
	"setattr", "slice", "sorted", "staticmethod", "str", "sum", "tuple",
	"type", "vars", "zip",
}

var builtinSet = func() map[string]bool {
	m := make(map[string]bool, len(Builtins))
	for _, b := range Builtins {
		m[b] = true
	}
	return m
}()

// IsBuiltin reports whether name is one of Builtins.
func IsBuiltin(name string) bool {
	return builtinSet[name]
}
