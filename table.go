package pagetex

import (
	"maps"
	"slices"
)

// jobTable is the arena of jobs submitted but not yet applied, keyed by a
// monotonically increasing ID. It is owned by the control goroutine.
type jobTable struct {
	jobs map[JobID]*job
	last JobID
}

func newJobTable() jobTable {
	return jobTable{jobs: make(map[JobID]*job)}
}

// nextID reserves the next job ID. IDs start at 1.
func (t *jobTable) nextID() JobID {
	t.last++
	return t.last
}

func (t *jobTable) insert(j *job) {
	t.jobs[j.id] = j
}

// take removes and returns the job for id.
func (t *jobTable) take(id JobID) (*job, bool) {
	j, ok := t.jobs[id]
	if ok {
		delete(t.jobs, id)
	}
	return j, ok
}

func (t *jobTable) len() int {
	return len(t.jobs)
}

// ids returns the registered IDs in submission order.
func (t *jobTable) ids() []JobID {
	return slices.Sorted(maps.Keys(t.jobs))
}
