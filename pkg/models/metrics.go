package models

import "math"

// Metrics is the bundle of measurements computed for a space.
type Metrics struct {
	Cyclomatic           int             `json:"cyclomatic"`
	Halstead             HalsteadMetrics `json:"halstead"`
	LOC                  LOC             `json:"loc"`
	MaintainabilityIndex float64         `json:"maintainability_index"`
	NOM                  NOM             `json:"nom"`
	NArgs                NArgs           `json:"nargs"`
	NExits               int             `json:"nexits"`
	MaxNesting           int             `json:"max_nesting"`
}

// LOC holds line count variants.
type LOC struct {
	Source   int `json:"sloc"`  // lines spanned
	Physical int `json:"ploc"`  // lines holding code
	Logical  int `json:"lloc"`  // statements
	Comment  int `json:"cloc"`  // lines holding comments
	Blank    int `json:"blank"` // lines holding neither
}

// Add returns the element-wise sum.
func (l LOC) Add(o LOC) LOC {
	return LOC{
		Source:   l.Source + o.Source,
		Physical: l.Physical + o.Physical,
		Logical:  l.Logical + o.Logical,
		Comment:  l.Comment + o.Comment,
		Blank:    l.Blank + o.Blank,
	}
}

// NOM counts methods.
type NOM struct {
	Functions int `json:"functions"`
	Closures  int `json:"closures"`
	Total     int `json:"total"`
}

// Add returns the element-wise sum.
func (n NOM) Add(o NOM) NOM {
	return NOM{
		Functions: n.Functions + o.Functions,
		Closures:  n.Closures + o.Closures,
		Total:     n.Total + o.Total,
	}
}

// NArgs counts function arguments.
type NArgs struct {
	Total   int     `json:"total"`
	Average float64 `json:"average"`
}

// NewNArgs builds the argument counts, averaging over methods.
func NewNArgs(total, methods int) NArgs {
	a := NArgs{Total: total}
	if methods > 0 {
		a.Average = float64(total) / float64(methods)
	}
	return a
}

// HalsteadMetrics represents Halstead software science metrics.
type HalsteadMetrics struct {
	OperatorsUnique uint32  `json:"operators_unique"` // n1: distinct operators
	OperandsUnique  uint32  `json:"operands_unique"`  // n2: distinct operands
	OperatorsTotal  uint32  `json:"operators_total"`  // N1: total operators
	OperandsTotal   uint32  `json:"operands_total"`   // N2: total operands
	Vocabulary      uint32  `json:"vocabulary"`       // n = n1 + n2
	Length          uint32  `json:"length"`           // N = N1 + N2
	Volume          float64 `json:"volume"`           // V = N * log2(n)
	Difficulty      float64 `json:"difficulty"`       // D = (n1/2) * (N2/n2)
	Effort          float64 `json:"effort"`           // E = D * V
	Time            float64 `json:"time"`             // T = E / 18 (seconds)
	Bugs            float64 `json:"bugs"`             // B = V / 3000
}

// NewHalsteadMetrics creates Halstead metrics from base counts and calculates derived values.
func NewHalsteadMetrics(operatorsUnique, operandsUnique, operatorsTotal, operandsTotal uint32) HalsteadMetrics {
	h := HalsteadMetrics{
		OperatorsUnique: operatorsUnique,
		OperandsUnique:  operandsUnique,
		OperatorsTotal:  operatorsTotal,
		OperandsTotal:   operandsTotal,
	}
	h.calculateDerived()
	return h
}

// calculateDerived computes all derived Halstead metrics from base counts.
func (h *HalsteadMetrics) calculateDerived() {
	h.Vocabulary = h.OperatorsUnique + h.OperandsUnique
	h.Length = h.OperatorsTotal + h.OperandsTotal

	// V = N * log2(n), undefined below two distinct tokens
	if h.Vocabulary >= 2 {
		h.Volume = float64(h.Length) * math.Log2(float64(h.Vocabulary))
	}

	// D = (n1/2) * (N2/n2)
	if h.OperandsUnique > 0 {
		h.Difficulty = (float64(h.OperatorsUnique) / 2.0) *
			(float64(h.OperandsTotal) / float64(h.OperandsUnique))
	}

	h.Effort = h.Volume * h.Difficulty

	// 18 mental discriminations per second
	h.Time = h.Effort / 18.0

	h.Bugs = h.Volume / 3000.0
}

const maxMaintainability = 171.0

// MaintainabilityIndex computes
// 171 - 5.2*ln(V) - 0.23*CC - 16.2*ln(LOC) + 50*sin(sqrt(2.4*CM))
// where CM is the ratio of comment lines to source lines. Non-positive V and
// LOC are replaced by 1 and the result is clamped to [0, 171].
func MaintainabilityIndex(volume float64, cyclomatic, sloc, comments int) float64 {
	v := volume
	if v <= 0 || math.IsNaN(v) {
		v = 1
	}
	loc := float64(sloc)
	if loc <= 0 {
		loc = 1
	}
	var cm float64
	if sloc > 0 {
		cm = float64(comments) / float64(sloc)
	}
	radicand := 2.4 * cm
	if radicand < 0 {
		radicand = 0
	}

	mi := maxMaintainability -
		5.2*math.Log(v) -
		0.23*float64(cyclomatic) -
		16.2*math.Log(loc) +
		50*math.Sin(math.Sqrt(radicand))

	switch {
	case math.IsNaN(mi) || mi < 0:
		return 0
	case mi > maxMaintainability:
		return maxMaintainability
	}
	return mi
}
