//go:build !giouring
// +build !giouring

package reactor

import "fmt"

// NewUringEngine is available when built with -tags giouring.
func NewUringEngine(entries uint32) (IOEngine, error) {
	return nil, fmt.Errorf("reactor: giouring not enabled; build with -tags giouring")
}
