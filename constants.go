package raleighsl

import "github.com/ehrlich-b/raleighsl/internal/constants"

// Re-exported tuning constants for callers outside internal/.
const (
	DefaultRunQueueCapacity = constants.DefaultRunQueueCapacity
	DefaultIdleTimeout      = constants.DefaultIdleTimeout
	DefaultQuantum          = constants.DefaultQuantum
	MaxGatherIovecs         = constants.MaxGatherIovecs
	DefaultObjectCacheSize  = constants.DefaultObjectCacheSize
)
