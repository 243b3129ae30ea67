package pipeline

import (
	"runtime"
	"sync"
)

// workUnit is one contiguous range of data lines. Units carry their
// original sequence index so results can be merged back in input order.
type workUnit struct {
	Seq       int
	Lines     []string
	FirstLine int // line number of Lines[0] in the input file
}

// workResult holds the transformed lines for one unit.
type workResult struct {
	Seq   int
	Out   []string
	Stats Stats
	Diags []string
}

// runWorkers transforms units using a pool of workers. Results arrive on
// the returned channel in completion order; use orderedCollect to consume
// them in sequence order. If workers is 0, runtime.NumCPU() is used.
func (p *Pipeline) runWorkers(units <-chan workUnit, workers int) <-chan workResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan workResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for u := range units {
				results <- p.transformUnit(u)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// orderedCollect calls fn for each result in sequence-number order. It
// buffers out-of-order results in a pending map and emits them as soon as
// the next expected sequence number is available. On error the remaining
// results are drained to unblock workers, and stop is closed so the
// producer dispatches no further units.
func orderedCollect(results <-chan workResult, stop chan<- struct{}, fn func(workResult) error) error {
	pending := make(map[int]workResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				close(stop)
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
