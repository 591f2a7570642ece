package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/cruisesim/internal/cruise"
)

func sampleResult() *cruise.Result {
	return &cruise.Result{
		Samples: []cruise.Sample{
			{Time: 0, Ref: 20, Speed: 20, Control: 578, Grade: 0},
			{Time: 0.1, Ref: 20, Speed: 19.98, Control: 612.5, Grade: 0.0175},
		},
		Metrics: map[string]float64{"tracking_rms": 0.12},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	meta := RunMetadata{
		Plant:      "force",
		Dt:         0.1,
		Horizon:    60,
		Speed:      20,
		Integrator: "rk4",
		Controller: "pi",
		Profile:    "hill",
	}

	runID, err := store.Save(meta, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(runID, "force_") {
		t.Errorf("run id = %q, want force_ prefix", runID)
	}

	got, err := store.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Plant != "force" || got.Profile != "hill" || got.Dt != 0.1 {
		t.Errorf("loaded metadata = %+v", got)
	}
	if got.Metrics["tracking_rms"] != 0.12 {
		t.Errorf("metrics not persisted: %v", got.Metrics)
	}

	samples, err := store.LoadSamples(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if math.Abs(samples[1].Speed-19.98) > 1e-6 {
		t.Errorf("sample speed = %g, want 19.98", samples[1].Speed)
	}
	if math.Abs(samples[1].Grade-0.0175) > 1e-6 {
		t.Errorf("sample grade = %g, want 0.0175", samples[1].Grade)
	}
}

func TestSaveBackToBackDistinctIDs(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	a, err := store.Save(RunMetadata{Plant: "force"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Save(RunMetadata{Plant: "force"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("consecutive saves share run id %q", a)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("listed %d runs, want 2", len(runs))
	}
}

func TestList(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("fresh store lists %d runs", len(runs))
	}

	if _, err := store.Save(RunMetadata{Plant: "force"}, sampleResult()); err != nil {
		t.Fatal(err)
	}

	runs, err = store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Plant != "force" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	store := New(t.TempDir() + "/never-created")
	runs, err := store.List()
	if err != nil {
		t.Fatalf("missing base dir should list empty, got %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestExportJSON(t *testing.T) {
	meta := &RunMetadata{
		ID:         "force_42",
		Plant:      "force",
		Integrator: "rk4",
		Controller: "pi",
		Dt:         0.1,
		Horizon:    60,
		Metrics:    map[string]float64{"max_dip": 1.1},
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, sampleResult().Samples); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "force_42" || got.Integrator != "rk4" {
		t.Errorf("exported header = %+v", got)
	}
	if len(got.Samples) != 2 || got.Samples[0].Control != 578 {
		t.Errorf("exported samples = %+v", got.Samples)
	}
	if got.Metrics["max_dip"] != 1.1 {
		t.Errorf("exported metrics = %v", got.Metrics)
	}
}
