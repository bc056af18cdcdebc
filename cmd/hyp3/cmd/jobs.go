package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sarproc/hyp3-go/pkg/hyp3"
	"github.com/sarproc/hyp3-go/pkg/models"
)

var (
	// Job list flags
	filterName   string
	filterStatus string
	filterStart  string
	filterEnd    string
)

// jobsCmd represents the jobs command
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Query jobs",
	Long:  `Commands for listing and inspecting jobs on the batch-processing API.`,
}

// jobsListCmd represents the jobs list command
var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs matching search criteria",
	Long:  `Search jobs by name, status, or submission time window and display them.`,
	RunE:  runJobsList,
}

// jobsStatusCmd represents the jobs status command
var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Get job status",
	Long:  `Retrieve the current snapshot of a specific job by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsStatus,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsStatusCmd)

	jobsListCmd.Flags().StringVar(&filterName, "name", "", "only jobs with this name")
	jobsListCmd.Flags().StringVar(&filterStatus, "status", "", "only jobs with this status (PENDING, RUNNING, SUCCEEDED, FAILED)")
	jobsListCmd.Flags().StringVar(&filterStart, "start", "", "only jobs submitted after this time (RFC3339)")
	jobsListCmd.Flags().StringVar(&filterEnd, "end", "", "only jobs submitted before this time (RFC3339)")
}

func runJobsList(cmd *cobra.Command, args []string) error {
	params, err := buildSearchParams()
	if err != nil {
		return err
	}

	client := NewAPIClient()
	batch, err := client.FindJobs(context.Background(), params)
	if err != nil {
		return err
	}

	if batch.Count() == 0 {
		fmt.Println("Found zero jobs")
		return nil
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(batch.Jobs(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Job ID", "Name", "Type", "Status", "Submitted")

	for _, job := range batch.Jobs() {
		name := job.Name
		if name == "" {
			name = "-"
		}
		table.Append(
			job.JobID,
			name,
			job.JobType,
			string(job.Status),
			job.RequestTime.Format("2006-01-02 15:04"),
		)
	}
	table.Render()

	counts := batch.StatusCounts()
	fmt.Printf("\nTotal jobs: %d (%d succeeded, %d failed, %d running, %d pending)\n",
		batch.Count(),
		counts[models.StatusSucceeded],
		counts[models.StatusFailed],
		counts[models.StatusRunning],
		counts[models.StatusPending],
	)
	return nil
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	client := NewAPIClient()
	job, err := client.GetJob(context.Background(), args[0])
	if err != nil {
		return err
	}
	displayJob(job)
	return nil
}

func buildSearchParams() (params hyp3.SearchParams, err error) {
	params.Name = filterName
	if filterStatus != "" {
		status := models.Status(filterStatus)
		if !status.Valid() {
			return params, fmt.Errorf("unrecognized status %q", filterStatus)
		}
		params.Status = status
	}
	if filterStart != "" {
		params.Start, err = time.Parse(time.RFC3339, filterStart)
		if err != nil {
			return params, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if filterEnd != "" {
		params.End, err = time.Parse(time.RFC3339, filterEnd)
		if err != nil {
			return params, fmt.Errorf("invalid --end: %w", err)
		}
	}
	return params, nil
}

func displayJob(job models.Job) {
	if IsJSONOutput() {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")

	table.Append("Job ID", job.JobID)
	if job.Name != "" {
		table.Append("Name", job.Name)
	}
	table.Append("Type", job.JobType)
	table.Append("Status", string(job.Status))
	table.Append("Submitted", job.RequestTime.Format(time.RFC3339))
	for _, file := range job.Files {
		table.Append("File", fmt.Sprintf("%s (%d bytes)", file.Filename, file.Size))
	}
	table.Render()
}
