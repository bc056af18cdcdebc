package hyp3

import (
	"testing"
)

func granules(spec JobSpec) []string {
	return spec.JobParameters["granules"].([]string)
}

func TestPrepareAutoRIFTJob(t *testing.T) {
	spec := PrepareAutoRIFTJob("g1", "g2", "my-pair")

	if spec.JobType != "AUTORIFT" {
		t.Errorf("Unexpected job type: %s", spec.JobType)
	}
	if spec.Name != "my-pair" {
		t.Errorf("Unexpected name: %s", spec.Name)
	}
	g := granules(spec)
	if len(g) != 2 || g[0] != "g1" || g[1] != "g2" {
		t.Errorf("Unexpected granules: %v", g)
	}
}

func TestPrepareRTCJob_Defaults(t *testing.T) {
	spec, err := PrepareRTCJob("g1", "", DefaultRTCOptions())
	if err != nil {
		t.Fatalf("PrepareRTCJob failed: %v", err)
	}

	if spec.JobType != "RTC_GAMMA" {
		t.Errorf("Unexpected job type: %s", spec.JobType)
	}
	if spec.Name != "" {
		t.Errorf("Expected no name, got %q", spec.Name)
	}

	params := spec.JobParameters
	if g := granules(spec); len(g) != 1 || g[0] != "g1" {
		t.Errorf("Unexpected granules: %v", g)
	}
	if params["radiometry"] != "gamma0" || params["scale"] != "power" || params["resolution"] != 30 {
		t.Errorf("Unexpected defaults: %v", params)
	}
	// every option key is always present in the canonical shape
	for _, key := range []string{"dem_matching", "include_dem", "include_inc_map", "include_rgb", "include_scattering_area", "speckle_filter"} {
		if _, ok := params[key]; !ok {
			t.Errorf("Missing parameter %q", key)
		}
	}
}

func TestPrepareRTCJob_Validation(t *testing.T) {
	bad := DefaultRTCOptions()
	bad.Radiometry = "beta0"
	if _, err := PrepareRTCJob("g1", "", bad); err == nil {
		t.Error("Expected an error for an unsupported radiometry")
	}

	bad = DefaultRTCOptions()
	bad.Resolution = 10
	if _, err := PrepareRTCJob("g1", "", bad); err == nil {
		t.Error("Expected an error for an unsupported resolution")
	}

	bad = DefaultRTCOptions()
	bad.Scale = "linear"
	if _, err := PrepareRTCJob("g1", "", bad); err == nil {
		t.Error("Expected an error for an unsupported scale")
	}
}

func TestPrepareInSARJob(t *testing.T) {
	opts := DefaultInSAROptions()
	opts.IncludeLOSDisplacement = true

	spec, err := PrepareInSARJob("g1", "g2", "insar-pair", opts)
	if err != nil {
		t.Fatalf("PrepareInSARJob failed: %v", err)
	}

	if spec.JobType != "INSAR_GAMMA" {
		t.Errorf("Unexpected job type: %s", spec.JobType)
	}
	params := spec.JobParameters
	if params["looks"] != "20x4" {
		t.Errorf("Unexpected looks: %v", params["looks"])
	}
	if params["include_los_displacement"] != true {
		t.Error("Expected include_los_displacement to be set")
	}

	bad := DefaultInSAROptions()
	bad.Looks = "5x1"
	if _, err := PrepareInSARJob("g1", "g2", "", bad); err == nil {
		t.Error("Expected an error for unsupported looks")
	}
}
