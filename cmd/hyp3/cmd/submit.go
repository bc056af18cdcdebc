package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sarproc/hyp3-go/pkg/hyp3"
	"github.com/sarproc/hyp3-go/pkg/models"
	"github.com/sarproc/hyp3-go/pkg/retry"
)

var (
	jobName    string
	maxRetries int

	// RTC flags
	rtcDEMMatching    bool
	rtcIncludeDEM     bool
	rtcIncludeIncMap  bool
	rtcIncludeRGB     bool
	rtcIncludeScatter bool
	rtcRadiometry     string
	rtcResolution     int
	rtcScale          string
	rtcSpeckleFilter  bool

	// InSAR flags
	insarLookVectors     bool
	insarLOSDisplacement bool
	insarLooks           string
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit new jobs",
	Long:  `Commands for submitting processing jobs to the batch API.`,
}

var submitAutoRIFTCmd = &cobra.Command{
	Use:   "autorift <granule1> <granule2>",
	Short: "Submit an autoRIFT job",
	Long:  `Submit an autoRIFT job over a pair of granules (scenes).`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSubmitAutoRIFT,
}

var submitRTCCmd = &cobra.Command{
	Use:   "rtc <granule>",
	Short: "Submit an RTC job",
	Long:  `Submit a radiometric terrain correction job for a single granule.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmitRTC,
}

var submitInSARCmd = &cobra.Command{
	Use:   "insar <granule1> <granule2>",
	Short: "Submit an InSAR job",
	Long:  `Submit an interferometric SAR job over a pair of granules (scenes).`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSubmitInSAR,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.AddCommand(submitAutoRIFTCmd)
	submitCmd.AddCommand(submitRTCCmd)
	submitCmd.AddCommand(submitInSARCmd)

	submitCmd.PersistentFlags().StringVar(&jobName, "name", "", "a name for the job")
	submitCmd.PersistentFlags().IntVar(&maxRetries, "max-retries", 0, "retry transient submission failures up to this many times")

	submitRTCCmd.Flags().BoolVar(&rtcDEMMatching, "dem-matching", false, "coregister to the DEM instead of dead reckoning from orbit files")
	submitRTCCmd.Flags().BoolVar(&rtcIncludeDEM, "include-dem", false, "include the DEM file in the product package")
	submitRTCCmd.Flags().BoolVar(&rtcIncludeIncMap, "include-inc-map", false, "include the incidence angle map")
	submitRTCCmd.Flags().BoolVar(&rtcIncludeRGB, "include-rgb", false, "include a false-color RGB decomposition for dual-pol granules")
	submitRTCCmd.Flags().BoolVar(&rtcIncludeScatter, "include-scattering-area", false, "include the scattering area")
	submitRTCCmd.Flags().StringVar(&rtcRadiometry, "radiometry", "gamma0", "backscatter normalization: gamma0 or sigma0")
	submitRTCCmd.Flags().IntVar(&rtcResolution, "resolution", 30, "output pixel spacing in meters")
	submitRTCCmd.Flags().StringVar(&rtcScale, "scale", "power", "output image scale: power or amplitude")
	submitRTCCmd.Flags().BoolVar(&rtcSpeckleFilter, "speckle-filter", false, "apply an Enhanced Lee speckle filter")

	submitInSARCmd.Flags().BoolVar(&insarLookVectors, "include-look-vectors", false, "include the look vector theta and phi files")
	submitInSARCmd.Flags().BoolVar(&insarLOSDisplacement, "include-los-displacement", false, "include line-of-sight displacement values")
	submitInSARCmd.Flags().StringVar(&insarLooks, "looks", "20x4", "looks to take in range and azimuth: 20x4 or 10x2")
}

func runSubmitAutoRIFT(cmd *cobra.Command, args []string) error {
	return submitSpecs(hyp3.PrepareAutoRIFTJob(args[0], args[1], jobName))
}

func runSubmitRTC(cmd *cobra.Command, args []string) error {
	spec, err := hyp3.PrepareRTCJob(args[0], jobName, hyp3.RTCOptions{
		DEMMatching:           rtcDEMMatching,
		IncludeDEM:            rtcIncludeDEM,
		IncludeIncMap:         rtcIncludeIncMap,
		IncludeRGB:            rtcIncludeRGB,
		IncludeScatteringArea: rtcIncludeScatter,
		Radiometry:            rtcRadiometry,
		Resolution:            rtcResolution,
		Scale:                 rtcScale,
		SpeckleFilter:         rtcSpeckleFilter,
	})
	if err != nil {
		return err
	}
	return submitSpecs(spec)
}

func runSubmitInSAR(cmd *cobra.Command, args []string) error {
	spec, err := hyp3.PrepareInSARJob(args[0], args[1], jobName, hyp3.InSAROptions{
		IncludeLookVectors:     insarLookVectors,
		IncludeLOSDisplacement: insarLOSDisplacement,
		Looks:                  insarLooks,
	})
	if err != nil {
		return err
	}
	return submitSpecs(spec)
}

// submitSpecs sends the specs, optionally retrying transient transport
// failures when --max-retries is set. The client itself never retries.
func submitSpecs(specs ...hyp3.JobSpec) error {
	client := NewAPIClient()
	ctx := context.Background()

	var batch models.Batch
	submit := func() error {
		var err error
		batch, err = client.SubmitJobs(ctx, specs...)
		return err
	}

	var err error
	if maxRetries > 0 {
		config := retry.DefaultConfig()
		config.MaxRetries = maxRetries
		err = retry.Do(ctx, config, submit)
	} else {
		err = submit()
	}
	if err != nil {
		return err
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
	table.Header("Job ID", "Name", "Type", "Status")
	for _, job := range batch.Jobs() {
		name := job.Name
		if name == "" {
			name = "-"
		}
		table.Append(job.JobID, name, job.JobType, string(job.Status))
	}
	table.Render()

	fmt.Printf("\nSubmitted %d job(s)\n", batch.Count())
	return nil
}
