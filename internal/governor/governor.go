package governor

import "context"

// Governor combines the daily quota tracker and the concurrency pool.
// Quota is checked before a permit is requested, so over-budget callers
// never occupy a slot or add provider load.
type Governor struct {
	quota *Quota
	pool  *Semaphore
}

// New creates a governor with the given daily cap and pool size. Zero or
// negative values select the package defaults.
func New(dailyCap, poolSize int, now Clock) *Governor {
	return &Governor{
		quota: NewQuota(dailyCap, now),
		pool:  NewSemaphore(poolSize),
	}
}

// Allow charges one call against the caller's daily budget.
func (g *Governor) Allow(callerID string) error {
	return g.quota.Allow(callerID)
}

// Acquire takes a concurrency permit, blocking until one frees.
func (g *Governor) Acquire(ctx context.Context) error {
	return g.pool.Acquire(ctx)
}

// Release returns a concurrency permit.
func (g *Governor) Release() {
	g.pool.Release()
}

// Quota exposes the quota tracker for stats and tests.
func (g *Governor) Quota() *Quota {
	return g.quota
}

// Pool exposes the semaphore for stats and tests.
func (g *Governor) Pool() *Semaphore {
	return g.pool
}
