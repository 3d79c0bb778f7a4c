// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"slices"
	"sync"
)

// SyncState is the outcome of a LOC or MEET attempt.
type SyncState int

const (
	SYNC_ISSUED  = SyncState(0) // Request registered this tick.
	SYNC_WAITING = SyncState(1) // Still blocked.
	SYNC_DONE    = SyncState(2) // Lock held or barrier released.
)

// lock is the state of one LOC lock.
type lock struct {
	owner   int   // Owning core, or -1.
	queue   []int // Waiting cores, in grant order.
	pending []int // Cores that requested the lock this tick.
}

// barrier is the state of one MEET barrier.
type barrier struct {
	arrived  []bool // Cores waiting in the current round.
	released []bool // Cores released, not yet resumed.
}

// Domain is the synchronization state shared by cooperating cores.
//
// Cores register LOC requests and MEET arrivals while they step. Commit,
// called once by the host at the end of every tick, grants locks and
// releases barriers; the cores observe the result on their next step.
// Decisions depend only on the tick and the core ids, never on the
// order in which cores stepped.
//
// Locks are granted first-come first-served by request tick. Requests
// made in the same tick are ordered by ascending core id.
type Domain struct {
	mutex    sync.Mutex
	cores    int
	joined   []bool
	locks    []lock
	barriers []barrier
}

// NewDomain creates a domain for a fixed number of cores, locks and barriers.
func NewDomain(cores, locks, barriers int) (dom *Domain) {
	dom = &Domain{
		cores:    cores,
		joined:   make([]bool, cores),
		locks:    make([]lock, locks),
		barriers: make([]barrier, barriers),
	}

	for n := range dom.locks {
		dom.locks[n].owner = -1
	}

	for n := range dom.barriers {
		dom.barriers[n].arrived = make([]bool, cores)
		dom.barriers[n].released = make([]bool, cores)
	}

	return
}

// Cores returns the number of participating cores.
func (dom *Domain) Cores() int {
	return dom.cores
}

// Join registers a core with the domain.
func (dom *Domain) Join(core int) (err error) {
	dom.mutex.Lock()
	defer dom.mutex.Unlock()

	err = dom.checkCore(core)
	if err != nil {
		return
	}

	if dom.joined[core] {
		err = ErrSyncViolation{Value: core, Err: ErrCoreDuplicate}
		return
	}

	dom.joined[core] = true
	return
}

// Ready verifies that every participating core has joined.
func (dom *Domain) Ready() (err error) {
	dom.mutex.Lock()
	defer dom.mutex.Unlock()

	for core, ok := range dom.joined {
		if !ok {
			err = ErrSyncViolation{Value: core, Err: ErrCoreMissing}
			return
		}
	}

	return
}

// checkCore verifies that a core id participates in the domain.
func (dom *Domain) checkCore(core int) (err error) {
	if core < 0 || core >= dom.cores {
		err = ErrSyncViolation{Value: core, Err: ErrCoreInvalid}
	}
	return
}

// CheckLock verifies that a lock id exists.
func (dom *Domain) CheckLock(id int) (err error) {
	if id < 0 || id >= len(dom.locks) {
		err = ErrSyncViolation{Value: id, Err: ErrLockInvalid}
	}
	return
}

// CheckBarrier verifies that a barrier id exists.
func (dom *Domain) CheckBarrier(id int) (err error) {
	if id < 0 || id >= len(dom.barriers) {
		err = ErrSyncViolation{Value: id, Err: ErrBarrierInvalid}
	}
	return
}

// Lock attempts to acquire a lock for a core.
func (dom *Domain) Lock(core, id int) (state SyncState, err error) {
	err = dom.CheckLock(id)
	if err == nil {
		err = dom.checkCore(core)
	}
	if err != nil {
		return
	}

	dom.mutex.Lock()
	defer dom.mutex.Unlock()

	lk := &dom.locks[id]
	switch {
	case lk.owner == core:
		state = SYNC_DONE
	case slices.Contains(lk.queue, core) || slices.Contains(lk.pending, core):
		state = SYNC_WAITING
	default:
		lk.pending = append(lk.pending, core)
		state = SYNC_ISSUED
	}

	return
}

// Unlock releases a lock held by a core.
func (dom *Domain) Unlock(core, id int) (err error) {
	err = dom.CheckLock(id)
	if err != nil {
		return
	}

	dom.mutex.Lock()
	defer dom.mutex.Unlock()

	lk := &dom.locks[id]
	if lk.owner != core {
		err = ErrLockNotOwned
		return
	}

	lk.owner = -1
	return
}

// Owner returns the core holding a lock.
func (dom *Domain) Owner(id int) (core int, ok bool) {
	if dom.CheckLock(id) != nil {
		return
	}

	dom.mutex.Lock()
	defer dom.mutex.Unlock()

	core = dom.locks[id].owner
	ok = core >= 0
	return
}

// Meet registers or checks a core's arrival at a barrier.
func (dom *Domain) Meet(core, id int) (state SyncState, err error) {
	err = dom.CheckBarrier(id)
	if err == nil {
		err = dom.checkCore(core)
	}
	if err != nil {
		return
	}

	dom.mutex.Lock()
	defer dom.mutex.Unlock()

	br := &dom.barriers[id]
	switch {
	case br.released[core]:
		br.released[core] = false
		state = SYNC_DONE
	case br.arrived[core]:
		state = SYNC_WAITING
	default:
		br.arrived[core] = true
		state = SYNC_ISSUED
	}

	return
}

// Waiting returns the cores that have arrived at a barrier in the current round.
func (dom *Domain) Waiting(id int) (cores []int) {
	if dom.CheckBarrier(id) != nil {
		return
	}

	dom.mutex.Lock()
	defer dom.mutex.Unlock()

	for core, ok := range dom.barriers[id].arrived {
		if ok {
			cores = append(cores, core)
		}
	}

	return
}

// Commit resolves the tick: pending lock requests join their queues,
// free locks are granted, and complete barriers are released.
func (dom *Domain) Commit() {
	dom.mutex.Lock()
	defer dom.mutex.Unlock()

	for n := range dom.locks {
		lk := &dom.locks[n]
		if len(lk.pending) != 0 {
			slices.Sort(lk.pending)
			lk.queue = append(lk.queue, lk.pending...)
			lk.pending = lk.pending[:0]
		}
		if lk.owner < 0 && len(lk.queue) != 0 {
			lk.owner = lk.queue[0]
			lk.queue = lk.queue[1:]
		}
	}

	for n := range dom.barriers {
		br := &dom.barriers[n]
		count := 0
		for _, ok := range br.arrived {
			if ok {
				count++
			}
		}
		if count != dom.cores {
			continue
		}
		for core := range br.arrived {
			br.arrived[core] = false
			br.released[core] = true
		}
	}
}

// Abandon drops everything a core holds or waits for, as on a core reset.
func (dom *Domain) Abandon(core int) {
	dom.mutex.Lock()
	defer dom.mutex.Unlock()

	drop := func(id int) bool { return id == core }

	for n := range dom.locks {
		lk := &dom.locks[n]
		if lk.owner == core {
			lk.owner = -1
		}
		lk.queue = slices.DeleteFunc(lk.queue, drop)
		lk.pending = slices.DeleteFunc(lk.pending, drop)
	}

	for n := range dom.barriers {
		br := &dom.barriers[n]
		if core >= 0 && core < len(br.arrived) {
			br.arrived[core] = false
			br.released[core] = false
		}
	}
}
