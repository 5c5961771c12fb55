// Package goid resolves the id of the current goroutine. The runtime does
// not expose goroutine ids directly, so the id is parsed from the first line
// of the goroutine's stack header ("goroutine N [running]:"). The agent
// package uses it to detect cross-goroutine invocation of an agent.
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

var prefix = []byte("goroutine ")

// ID returns the id of the calling goroutine.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := bytes.TrimPrefix(buf[:n], prefix)
	if i := bytes.IndexByte(header, ' '); i > 0 {
		id, err := strconv.ParseUint(string(header[:i]), 10, 64)
		if err == nil {
			return id
		}
	}
	return 0
}
