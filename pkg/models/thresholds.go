package models

import "fmt"

// Thresholds defines the limits above which a space is reported.
type Thresholds struct {
	MaxCyclomatic      int     `json:"max_cyclomatic"`
	MaxNesting         int     `json:"max_nesting"`
	MaxArgs            int     `json:"max_args"`
	MinMaintainability float64 `json:"min_maintainability"`
}

// DefaultThresholds returns sensible defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxCyclomatic:      10,
		MaxNesting:         4,
		MaxArgs:            5,
		MinMaintainability: 20,
	}
}

// ViolationSeverity grades how far a metric exceeds its threshold.
type ViolationSeverity string

const (
	SeverityWarning  ViolationSeverity = "warning"
	SeverityCritical ViolationSeverity = "critical"
)

// Violation reports one metric over its threshold.
type Violation struct {
	Metric    string            `json:"metric"`
	Value     float64           `json:"value"`
	Threshold float64           `json:"threshold"`
	Severity  ViolationSeverity `json:"severity"`
	Message   string            `json:"message"`
}

// Check returns the violations for a callable space's aggregate metrics.
// A value twice over its limit is critical. Zero limits are disabled.
func (t Thresholds) Check(s *Space) []Violation {
	if !s.Kind.IsCallable() {
		return nil
	}
	m := s.Metrics
	var out []Violation
	over := func(metric string, value, limit float64) {
		if limit <= 0 || value <= limit {
			return
		}
		sev := SeverityWarning
		if value > 2*limit {
			sev = SeverityCritical
		}
		out = append(out, Violation{
			Metric:    metric,
			Value:     value,
			Threshold: limit,
			Severity:  sev,
			Message:   fmt.Sprintf("%s %s is %.0f (limit %.0f)", s.DisplayName(), metric, value, limit),
		})
	}
	over("cyclomatic", float64(m.Cyclomatic), float64(t.MaxCyclomatic))
	over("nesting", float64(m.MaxNesting), float64(t.MaxNesting))
	over("args", float64(s.Own.NArgs.Total), float64(t.MaxArgs))

	if t.MinMaintainability > 0 && m.MaintainabilityIndex < t.MinMaintainability {
		sev := SeverityWarning
		if m.MaintainabilityIndex < t.MinMaintainability/2 {
			sev = SeverityCritical
		}
		out = append(out, Violation{
			Metric:    "maintainability",
			Value:     m.MaintainabilityIndex,
			Threshold: t.MinMaintainability,
			Severity:  sev,
			Message: fmt.Sprintf("%s maintainability is %.1f (minimum %.0f)",
				s.DisplayName(), m.MaintainabilityIndex, t.MinMaintainability),
		})
	}
	return out
}
