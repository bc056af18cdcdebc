package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarproc/hyp3-go/pkg/hyp3"
	"github.com/sarproc/hyp3-go/pkg/metrics"
	"github.com/sarproc/hyp3-go/pkg/models"
	"github.com/sarproc/hyp3-go/pkg/watch"
)

var (
	watchName     string
	watchTimeout  time.Duration
	watchInterval time.Duration
	metricsAddr   string
)

var watchCmd = &cobra.Command{
	Use:   "watch [job-id...]",
	Short: "Watch jobs until they complete",
	Long: `Poll one or more jobs until every one of them reaches a terminal
state (SUCCEEDED or FAILED) or the timeout budget runs out.

Jobs can be given by ID, or selected by name with --name.

Example:
  hyp3 watch 27324a8f-c9b6-4e00-a167-a5e7f70d5c22
  hyp3 watch --name my-campaign --timeout 2h --interval 30s
  hyp3 watch --name my-campaign --metrics-addr :9723`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchName, "name", "", "watch all jobs with this name")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", watch.DefaultTimeout, "how long to wait before giving up")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", watch.DefaultInterval, "how often to refresh job status")
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && watchName == "" {
		return fmt.Errorf("provide at least one job ID or --name")
	}

	client := NewAPIClient()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var exporter *metrics.ClientExporter
	if metricsAddr != "" {
		exporter = metrics.NewClientExporter()
		client.SetMetricsRecorder(exporter)

		serveMux := http.NewServeMux()
		serveMux.Handle("/metrics", exporter)
		go func() {
			if err := http.ListenAndServe(metricsAddr, serveMux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
			}
		}()
	}

	target, err := resolveTarget(ctx, client, args)
	if err != nil {
		return err
	}

	opts := watch.Options{
		Timeout:  watchTimeout,
		Interval: watchInterval,
		Observer: func(completed, total int, remaining time.Duration) {
			fmt.Printf("\r%d/%d complete [timeout in %s]", completed, total, remaining.Round(time.Second))
			if exporter != nil {
				exporter.RecordWatchIteration(completed, total)
			}
		},
	}

	result, err := client.Watch(ctx, target, opts)
	fmt.Println()
	if err != nil {
		var timeoutErr *watch.TimeoutError
		if errors.As(err, &timeoutErr) {
			reportOutcome(timeoutErr.Last)
		}
		return err
	}

	reportOutcome(result)
	return nil
}

// resolveTarget builds the watch target from job IDs or a name search.
// A single ID becomes a Job, several become a Batch.
func resolveTarget(ctx context.Context, client *hyp3.Client, ids []string) (models.Watchable, error) {
	if watchName != "" {
		if len(ids) > 0 {
			return nil, fmt.Errorf("--name cannot be combined with job IDs")
		}
		batch, err := client.FindJobs(ctx, hyp3.SearchParams{Name: watchName})
		if err != nil {
			return nil, err
		}
		if batch.Count() == 0 {
			return nil, fmt.Errorf("no jobs found with name %q", watchName)
		}
		return batch, nil
	}

	jobs := make([]models.Job, 0, len(ids))
	for _, id := range ids {
		job, err := client.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 1 {
		return jobs[0], nil
	}
	return models.NewBatch(jobs...), nil
}

func reportOutcome(target models.Watchable) {
	switch t := target.(type) {
	case models.Job:
		fmt.Printf("%s\n", t)
	case models.Batch:
		counts := t.StatusCounts()
		fmt.Printf("%d succeeded, %d failed, %d running, %d pending\n",
			counts[models.StatusSucceeded],
			counts[models.StatusFailed],
			counts[models.StatusRunning],
			counts[models.StatusPending],
		)
	}
}
