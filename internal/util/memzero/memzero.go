// Package memzero wipes secret buffers once they are no longer needed.
package memzero

import "runtime"

// Zero overwrites b with zeros. The KeepAlive stops the compiler from
// treating the clear as a dead store on a buffer that is about to be dropped.
func Zero(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}
