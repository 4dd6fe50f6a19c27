package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"swing-trader/internal/regime"
)

// WeightsFile is the on-disk shape of weights.yaml: classification
// thresholds plus the per-regime strategy weight table.
type WeightsFile struct {
	Thresholds regime.DetectorConfig         `yaml:"thresholds"`
	Table      map[string]map[string]float64 `yaml:"weights"`
}

// WeightTable converts the raw YAML table into a validated regime.WeightTable.
func (w WeightsFile) WeightTable() (regime.WeightTable, error) {
	if len(w.Table) == 0 {
		return regime.DefaultWeightTable(), nil
	}
	table := make(regime.WeightTable, len(w.Table))
	for name, row := range w.Table {
		r := regime.Regime(name)
		if !r.Valid() {
			return nil, fmt.Errorf("unknown regime %q in weight table", name)
		}
		weights := make(map[string]float64, len(row))
		for strategy, weight := range row {
			weights[strategy] = weight
		}
		table[r] = weights
	}
	if err := regime.ValidateWeightTable(table, regime.RegisteredStrategies()); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadWeightsFile loads and parses weights.yaml. A missing file is created
// from the default template so operators have something to edit.
func LoadWeightsFile(path string) (WeightsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return WeightsFile{}, createTemplateWeights(path)
		}
		return WeightsFile{}, err
	}

	wf := defaultWeightsFile()
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return WeightsFile{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if _, err := wf.WeightTable(); err != nil {
		return WeightsFile{}, err
	}
	return wf, nil
}

func defaultWeightsFile() WeightsFile {
	table := regime.DefaultWeightTable()
	raw := make(map[string]map[string]float64, len(table))
	for r, row := range table {
		weights := make(map[string]float64, len(row))
		for strategy, weight := range row {
			weights[strategy] = weight
		}
		raw[string(r)] = weights
	}
	return WeightsFile{
		Thresholds: regime.DefaultDetectorConfig(),
		Table:      raw,
	}
}
