// internal/pkg/async/group.go
package async

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task is one named unit of fan-out work.
type Task struct {
	Name    string
	Execute func(ctx context.Context) (interface{}, error)
}

// Run executes all tasks concurrently, bounded by limit (0 means one
// worker per task). The first task failure cancels the siblings and Run
// returns that error wrapped with the task name; partial results are
// never returned.
func Run(ctx context.Context, limit int, tasks []Task) (map[string]interface{}, error) {
	group, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	var mu sync.Mutex
	results := make(map[string]interface{}, len(tasks))

	for _, task := range tasks {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := task.Execute(ctx)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", task.Name, err)
			}
			mu.Lock()
			results[task.Name] = data
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
