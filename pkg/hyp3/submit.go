package hyp3

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sarproc/hyp3-go/pkg/models"
)

// JobSpec is the canonical description used to request a new job
type JobSpec struct {
	JobType       string                 `json:"job_type"`
	Name          string                 `json:"name,omitempty"`
	JobParameters map[string]interface{} `json:"job_parameters"`
}

// SubmitJobs sends prepared job specs to the API and returns the created
// jobs as a batch, in response order.
func (c *Client) SubmitJobs(ctx context.Context, specs ...JobSpec) (models.Batch, error) {
	payload := struct {
		Jobs []JobSpec `json:"jobs"`
	}{Jobs: specs}

	data, err := c.do(ctx, http.MethodPost, "/jobs", nil, payload)
	c.record("submit_jobs", err)
	if err != nil {
		return models.Batch{}, err
	}

	var response struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return models.Batch{}, &models.ParseError{Reason: err.Error()}
	}

	batch := models.NewBatch()
	for _, record := range response.Jobs {
		job, err := models.ParseJob(record)
		if err != nil {
			return models.Batch{}, err
		}
		batch = batch.Combine(models.NewBatch(job))
	}
	return batch, nil
}

// PrepareAutoRIFTJob builds an autoRIFT job spec from a granule pair
func PrepareAutoRIFTJob(granule1, granule2, name string) JobSpec {
	return JobSpec{
		JobType: "AUTORIFT",
		Name:    name,
		JobParameters: map[string]interface{}{
			"granules": []string{granule1, granule2},
		},
	}
}

// SubmitAutoRIFTJob submits an autoRIFT job
func (c *Client) SubmitAutoRIFTJob(ctx context.Context, granule1, granule2, name string) (models.Batch, error) {
	return c.SubmitJobs(ctx, PrepareAutoRIFTJob(granule1, granule2, name))
}

// RTCOptions are the processing options of an RTC job
type RTCOptions struct {
	DEMMatching           bool   // coregister to the DEM instead of dead reckoning from orbit files
	IncludeDEM            bool   // include the DEM file in the product package
	IncludeIncMap         bool   // include the incidence angle map
	IncludeRGB            bool   // include a false-color RGB decomposition for dual-pol granules
	IncludeScatteringArea bool   // include the scattering area
	Radiometry            string // "gamma0" or "sigma0"
	Resolution            int    // output pixel spacing in meters
	Scale                 string // "power" or "amplitude"
	SpeckleFilter         bool   // apply an Enhanced Lee speckle filter
}

// DefaultRTCOptions returns the standard RTC processing options
func DefaultRTCOptions() RTCOptions {
	return RTCOptions{
		Radiometry: "gamma0",
		Resolution: 30,
		Scale:      "power",
	}
}

// PrepareRTCJob builds an RTC job spec. Options are validated; failure
// means an unsupported radiometry, resolution, or scale value.
func PrepareRTCJob(granule, name string, opts RTCOptions) (JobSpec, error) {
	if opts.Radiometry != "gamma0" && opts.Radiometry != "sigma0" {
		return JobSpec{}, fmt.Errorf("radiometry must be gamma0 or sigma0, got %q", opts.Radiometry)
	}
	if opts.Resolution != 30 {
		return JobSpec{}, fmt.Errorf("resolution must be 30, got %d", opts.Resolution)
	}
	if opts.Scale != "power" && opts.Scale != "amplitude" {
		return JobSpec{}, fmt.Errorf("scale must be power or amplitude, got %q", opts.Scale)
	}

	return JobSpec{
		JobType: "RTC_GAMMA",
		Name:    name,
		JobParameters: map[string]interface{}{
			"granules":                []string{granule},
			"dem_matching":            opts.DEMMatching,
			"include_dem":             opts.IncludeDEM,
			"include_inc_map":         opts.IncludeIncMap,
			"include_rgb":             opts.IncludeRGB,
			"include_scattering_area": opts.IncludeScatteringArea,
			"radiometry":              opts.Radiometry,
			"resolution":              opts.Resolution,
			"scale":                   opts.Scale,
			"speckle_filter":          opts.SpeckleFilter,
		},
	}, nil
}

// SubmitRTCJob submits an RTC job
func (c *Client) SubmitRTCJob(ctx context.Context, granule, name string, opts RTCOptions) (models.Batch, error) {
	spec, err := PrepareRTCJob(granule, name, opts)
	if err != nil {
		return models.Batch{}, err
	}
	return c.SubmitJobs(ctx, spec)
}

// InSAROptions are the processing options of an InSAR job
type InSAROptions struct {
	IncludeLookVectors     bool   // include the look vector theta and phi files
	IncludeLOSDisplacement bool   // include line-of-sight displacement values
	Looks                  string // "20x4" or "10x2"
}

// DefaultInSAROptions returns the standard InSAR processing options
func DefaultInSAROptions() InSAROptions {
	return InSAROptions{Looks: "20x4"}
}

// PrepareInSARJob builds an InSAR job spec from a granule pair
func PrepareInSARJob(granule1, granule2, name string, opts InSAROptions) (JobSpec, error) {
	if opts.Looks != "20x4" && opts.Looks != "10x2" {
		return JobSpec{}, fmt.Errorf("looks must be 20x4 or 10x2, got %q", opts.Looks)
	}

	return JobSpec{
		JobType: "INSAR_GAMMA",
		Name:    name,
		JobParameters: map[string]interface{}{
			"granules":                 []string{granule1, granule2},
			"include_look_vectors":     opts.IncludeLookVectors,
			"include_los_displacement": opts.IncludeLOSDisplacement,
			"looks":                    opts.Looks,
		},
	}, nil
}

// SubmitInSARJob submits an InSAR job
func (c *Client) SubmitInSARJob(ctx context.Context, granule1, granule2, name string, opts InSAROptions) (models.Batch, error) {
	spec, err := PrepareInSARJob(granule1, granule2, name, opts)
	if err != nil {
		return models.Batch{}, err
	}
	return c.SubmitJobs(ctx, spec)
}
