package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/cruisesim/internal/cruise"
)

type ExportData struct {
	ID         string             `json:"id"`
	Plant      string             `json:"plant"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Dt         float64            `json:"dt"`
	Horizon    float64            `json:"horizon"`
	Samples    []cruise.Sample    `json:"samples"`
	Metrics    map[string]float64 `json:"metrics"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, samples []cruise.Sample) error {
	data := ExportData{
		ID:         meta.ID,
		Plant:      meta.Plant,
		Integrator: meta.Integrator,
		Controller: meta.Controller,
		Dt:         meta.Dt,
		Horizon:    meta.Horizon,
		Samples:    samples,
		Metrics:    meta.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, meta *RunMetadata, samples []cruise.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, samples)
}
