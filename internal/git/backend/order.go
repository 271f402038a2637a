package backend

import "container/heap"

// childrenFirst reorders commits so that each one precedes all of its
// parents, keeping the incoming order wherever history allows. Committer
// timestamps alone do not give this under clock skew; `git log --date-order`
// does.
func childrenFirst(commits []*Commit) []*Commit {
	index := make(map[string]int, len(commits))
	for i, c := range commits {
		index[c.Hash] = i
	}
	// pending counts the children of each commit not yet emitted.
	pending := make([]int, len(commits))
	for _, c := range commits {
		for _, p := range c.ParentHashes {
			if j, ok := index[p]; ok {
				pending[j]++
			}
		}
	}
	ready := &positionHeap{}
	for i := range commits {
		if pending[i] == 0 {
			heap.Push(ready, i)
		}
	}
	out := make([]*Commit, 0, len(commits))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		out = append(out, commits[i])
		for _, p := range commits[i].ParentHashes {
			j, ok := index[p]
			if !ok {
				continue
			}
			if pending[j]--; pending[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}
	return out
}

type positionHeap []int

func (h positionHeap) Len() int           { return len(h) }
func (h positionHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h positionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *positionHeap) Push(x any)        { *h = append(*h, x.(int)) }

func (h *positionHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
