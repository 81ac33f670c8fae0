package stress

import (
	"runtime"
	"sync"

	"github.com/aristath/sentinel-stress/internal/domain"
)

// workerPool evaluates positions on a fixed number of goroutines.
// Each job writes only its own result slot, so output order matches input order.
type workerPool struct {
	numWorkers int
}

func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &workerPool{numWorkers: numWorkers}
}

type jobItem struct {
	position domain.Position
	index    int
}

func (wp *workerPool) evaluateBatch(positions []domain.Position, evaluate func(domain.Position) positionEval) []positionEval {
	results := make([]positionEval, len(positions))
	if len(positions) == 0 {
		return results
	}

	jobs := make(chan jobItem, len(positions))

	numActualWorkers := wp.numWorkers
	if len(positions) < numActualWorkers {
		numActualWorkers = len(positions)
	}

	var wg sync.WaitGroup
	for i := 0; i < numActualWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results[job.index] = evaluate(job.position)
			}
		}()
	}

	for idx, pos := range positions {
		jobs <- jobItem{position: pos, index: idx}
	}
	close(jobs)

	wg.Wait()
	return results
}
