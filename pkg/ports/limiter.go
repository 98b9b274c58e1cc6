package ports

import "context"

// ReleaseFunc releases one slot acquired from a DistributedLimiter.
type ReleaseFunc func(ctx context.Context) error

// DistributedLimiter bounds how many concurrent holders a key may have
// across replicas, the counting analogue of DistributedLocker's mutual
// exclusion. The host uses it to cap concurrent transactions per action
// name across every host process sharing one coordinator, not just
// within one process (see pkg/session.Guard for the in-process bound).
type DistributedLimiter interface {
	// TryAcquire attempts to take one of max concurrent slots for key.
	// It does not block: if the limit is already reached, ok is false
	// and release is nil.
	TryAcquire(ctx context.Context, key string, max int) (release ReleaseFunc, ok bool, err error)
}
