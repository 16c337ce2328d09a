// Package cleanup keeps the release jobs run on shutdown.
package cleanup

import (
	"errors"
	"log"
	"sync"
)

type Job struct {
	Name string
	F    func() error
}

var (
	mu   sync.Mutex
	jobs []*Job
)

func Register(j *Job) {
	mu.Lock()
	defer mu.Unlock()
	jobs = append(jobs, j)
}

// CleanUp runs registered jobs in reverse order of registration, so
// resources opened later are released first. Jobs run once.
func CleanUp() error {
	mu.Lock()
	pending := jobs
	jobs = nil
	mu.Unlock()

	var errs []error
	for i := len(pending) - 1; i >= 0; i-- {
		j := pending[i]
		log.Printf("Cleanup job %s started...", j.Name)
		if err := j.F(); err != nil {
			log.Printf("Job %s finished with error: %v", j.Name, err)
			errs = append(errs, errors.New(j.Name+": "+err.Error()))
			continue
		}
		log.Printf("Job %s done", j.Name)
	}
	return errors.Join(errs...)
}
