package ast

import (
	"io"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

// Dump writes a structural dump of the tree rooted at n to w.
func Dump(w io.Writer, n Node) {
	dumpConfig.Fdump(w, n)
}

// Sdump returns the dump of n as a string.
func Sdump(n Node) string {
	return dumpConfig.Sdump(n)
}
