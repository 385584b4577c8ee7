// Package resource implements the Controller for shared resource limits.
//
// The Controller manages two resource types:
//
//   - Memory: Track and limit bytes held by block caches (non-blocking, fail-fast)
//   - IO: Rate-limit writes towards remote blob stores
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//	defer rc.ReleaseMemory(4096)
//
// # IO Rate Limiting
//
// Token bucket rate limiter for block writes:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 8 << 20,
//	})
//
//	if err := rc.AcquireIO(ctx, len(frame)); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
