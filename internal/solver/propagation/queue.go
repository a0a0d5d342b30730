package propagation

import (
	"container/heap"

	"svw.info/nonogram/internal/domain"
)

// jobQueue is an indexed min-heap of line jobs keyed by a 64-bit priority
// (lower is more urgent). Re-pushing an enqueued job keeps the better
// priority; ties break by insertion order so draining is deterministic.
type jobQueue struct {
	heap  jobHeap
	index map[domain.LineJob]*jobItem
	seq   int64
}

type jobItem struct {
	job      domain.LineJob
	priority int64
	seq      int64
	pos      int
}

func newJobQueue() *jobQueue {
	return &jobQueue{index: make(map[domain.LineJob]*jobItem)}
}

// push enqueues job, or promotes it when the new priority is lower.
func (q *jobQueue) push(job domain.LineJob, priority int64) {
	if it, ok := q.index[job]; ok {
		if priority < it.priority {
			it.priority = priority
			heap.Fix(&q.heap, it.pos)
		}
		return
	}
	it := &jobItem{job: job, priority: priority, seq: q.seq}
	q.seq++
	q.index[job] = it
	heap.Push(&q.heap, it)
}

// pop removes and returns the most urgent job.
func (q *jobQueue) pop() (domain.LineJob, int64, bool) {
	if q.heap.Len() == 0 {
		return domain.LineJob{}, 0, false
	}
	it := heap.Pop(&q.heap).(*jobItem)
	delete(q.index, it.job)
	return it.job, it.priority, true
}

func (q *jobQueue) len() int { return q.heap.Len() }

type jobHeap []*jobItem

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h jobHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].pos = i
	h[j].pos = j
}

func (h *jobHeap) Push(x any) {
	it := x.(*jobItem)
	it.pos = len(*h)
	*h = append(*h, it)
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
