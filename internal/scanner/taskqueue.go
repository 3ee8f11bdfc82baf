package scanner

import (
	"sync"

	"github.com/sadopc/diskmap/internal/pathkey"
)

// taskQueue is the worker's internal queue, merged into per spec §4.5.1.
// It is small enough in practice that a linear scan at each merge is
// cheaper and simpler than a parallel dedup index (spec §9 "Task
// coalescing replaces deduplication").
type taskQueue struct {
	mu    sync.Mutex
	tasks []ScanTask
}

// push merges new into the queue per the coalescing rule:
//   - drop every existing task equal to new (same path, same Recursive);
//   - if new is recursive, additionally drop every existing task whose
//     path lies within the subtree new will cover (new is an ancestor of,
//     or equal to, that task's path);
//   - append new.
func (q *taskQueue) push(new ScanTask) {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.tasks[:0]
	for _, e := range q.tasks {
		if taskEqual(e, new) {
			continue
		}
		if new.Recursive {
			switch pathkey.Compare(new.Path, e.Path) {
			case pathkey.Equal, pathkey.Less:
				// new subsumes e: either the same directory or a strict
				// ancestor of it, so e's work will be redone by new.
				continue
			}
		}
		kept = append(kept, e)
	}
	q.tasks = append(kept, new)
}

// pop removes and returns the first queued task, FIFO, or (_, false) if
// the queue is empty.
func (q *taskQueue) pop() (ScanTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return ScanTask{}, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t, true
}

// len reports the number of currently queued tasks.
func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func taskEqual(a, b ScanTask) bool {
	return a.Recursive == b.Recursive && pathkey.Compare(a.Path, b.Path) == pathkey.Equal
}
