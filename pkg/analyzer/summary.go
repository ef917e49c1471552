package analyzer

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/stats"
)

// Summary describes a batch of results.
type Summary struct {
	Files     int `json:"files"`
	Spaces    int `json:"spaces"`
	Functions int `json:"functions"`
	Closures  int `json:"closures"`
	Classes   int `json:"classes"`
	Lines     int `json:"lines"`

	MeanCyclomatic   float64 `json:"mean_cyclomatic"`
	StdDevCyclomatic float64 `json:"stddev_cyclomatic"`
	P50Cyclomatic    float64 `json:"p50_cyclomatic"`
	P90Cyclomatic    float64 `json:"p90_cyclomatic"`
	MaxCyclomatic    int     `json:"max_cyclomatic"`

	MeanMaintainability float64 `json:"mean_maintainability"`
	MinMaintainability  float64 `json:"min_maintainability"`

	TotalVolume float64 `json:"total_volume"`
	Violations  int     `json:"violations"`
}

// Summarize computes batch statistics over callable spaces. File-level
// maintainability comes from each root Unit.
func Summarize(results []*Result, thresholds models.Thresholds) Summary {
	var s Summary
	var cyclomatic, maintainability []float64

	for _, res := range results {
		if res == nil || res.Root == nil {
			continue
		}
		s.Files++
		s.Lines += res.Root.Metrics.LOC.Source
		s.TotalVolume += res.Root.Metrics.Halstead.Volume
		maintainability = append(maintainability, res.Root.Metrics.MaintainabilityIndex)

		res.Root.Visit(func(sp *models.Space, _ int) bool {
			s.Spaces++
			switch sp.Kind {
			case models.SpaceFunction:
				s.Functions++
			case models.SpaceClosure:
				s.Closures++
			case models.SpaceClass, models.SpaceInterface:
				s.Classes++
			}
			if sp.Kind.IsCallable() {
				cyclomatic = append(cyclomatic, float64(sp.Metrics.Cyclomatic))
				s.MaxCyclomatic = max(s.MaxCyclomatic, sp.Metrics.Cyclomatic)
			}
			s.Violations += len(thresholds.Check(sp))
			return true
		})
	}

	s.MeanCyclomatic = stats.Mean(cyclomatic)
	s.StdDevCyclomatic = stats.StdDev(cyclomatic)
	s.P50Cyclomatic = stats.Percentile(cyclomatic, 50)
	s.P90Cyclomatic = stats.Percentile(cyclomatic, 90)
	s.MeanMaintainability = stats.Mean(maintainability)
	s.MinMaintainability = stats.Min(maintainability)
	return s
}
