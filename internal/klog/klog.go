// Package klog supplies the kernel's logger: a thin indirection over
// *zap.Logger supplying internal/kikan's default logger; cmd/kikansim
// injects its own through kikan.WithLogger. The kernel itself never configures zap; a
// caller that wants real output passes its own *zap.Logger in, and the
// default is zap.NewNop so a kernel built without one stays silent rather
// than panicking on a nil logger.
package klog

import "go.uber.org/zap"

// Nop returns a logger that discards everything, the default for a Kikan
// built without an explicit WithLogger option.
func Nop() *zap.Logger {
	return zap.NewNop()
}
