package concurrent

import (
	"sync"
)

// WorkerPool. fixed number of goroutines draining a job queue into a result channel.
// usage: Start, AddJob..., Close, Wait, then range over CollectResults.
type WorkerPool[T JobI, G any] struct {
	numWorkers int
	jobQueue   chan Job[T]
	results    chan JobResult[G]
	wg         sync.WaitGroup
}

func NewWorkerPool[T JobI, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job[T], jobQueueSize),
		results:    make(chan JobResult[G], jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- JobResult[G]{ID: job.ID, Result: jobFunc(job.JobItem)}
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

// AddJob. blocks when the job queue is full and every worker is busy.
func (wp *WorkerPool[T, G]) AddJob(id int, item T) {
	wp.jobQueue <- Job[T]{ID: id, JobItem: item}
}

// Close. no more jobs.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

// Wait. block until every queued job is done, then close the result channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() <-chan JobResult[G] {
	return wp.results
}

// Run. run every item on the pool and return the results indexed like items.
func Run[T JobI, G any](numWorkers int, items []T, jobFunc JobFunc[T, G]) []G {
	wp := NewWorkerPool[T, G](numWorkers, len(items))
	wp.Start(jobFunc)
	for i, it := range items {
		wp.AddJob(i, it)
	}
	wp.Close()
	wp.Wait()

	results := make([]G, len(items))
	for res := range wp.CollectResults() {
		results[res.ID] = res.Result
	}
	return results
}
