package hyp3

import (
	"context"
	"fmt"

	"github.com/sarproc/hyp3-go/pkg/models"
	"github.com/sarproc/hyp3-go/pkg/watch"
)

// Refresh returns a new snapshot of a job or batch. Jobs are re-fetched
// by ID; a batch refresh re-fetches every job and fails as a whole if any
// single fetch fails.
func (c *Client) Refresh(ctx context.Context, target models.Watchable) (models.Watchable, error) {
	return target.Refresh(ctx, c.GetJob)
}

// Watch polls a job or batch until it completes or the timeout budget in
// opts runs out, using this client to refresh it. On timeout the error is
// a *watch.TimeoutError carrying the last snapshot.
func (c *Client) Watch(ctx context.Context, target models.Watchable, opts watch.Options) (models.Watchable, error) {
	return watch.Watch(ctx, target, c.GetJob, opts)
}

// WatchJob watches a single job to completion
func (c *Client) WatchJob(ctx context.Context, job models.Job, opts watch.Options) (models.Job, error) {
	result, err := c.Watch(ctx, job, opts)
	if err != nil {
		return models.Job{}, err
	}
	refreshed, ok := result.(models.Job)
	if !ok {
		return models.Job{}, fmt.Errorf("watch returned unexpected type %T", result)
	}
	return refreshed, nil
}

// WatchBatch watches a batch of jobs to completion
func (c *Client) WatchBatch(ctx context.Context, batch models.Batch, opts watch.Options) (models.Batch, error) {
	result, err := c.Watch(ctx, batch, opts)
	if err != nil {
		return models.Batch{}, err
	}
	refreshed, ok := result.(models.Batch)
	if !ok {
		return models.Batch{}, fmt.Errorf("watch returned unexpected type %T", result)
	}
	return refreshed, nil
}
