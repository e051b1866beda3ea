package walk

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// Paint selects how walkers encode age into the grid.
// Zero always means "unvisited", whatever the mode.
type Paint int

const (
	// PaintAge stores the age at which a cell was last touched.
	PaintAge Paint = iota
	// PaintCumulativeAge stores the running total of ages touching a cell.
	PaintCumulativeAge
	// PaintGeneration stores branch depth + 1.
	PaintGeneration
	// PaintConstant stores 1 for every visited cell.
	PaintConstant
)

var paintNames = map[Paint]string{
	PaintAge:           "age",
	PaintCumulativeAge: "cumulative-age",
	PaintGeneration:    "generation",
	PaintConstant:      "constant",
}

// String returns the canonical name of the paint mode.
func (p Paint) String() string {
	if s, ok := paintNames[p]; ok {
		return s
	}
	return fmt.Sprintf("paint(%d)", int(p))
}

// ParsePaint parses a paint mode name. Matching ignores case, and
// underscores are accepted in place of dashes.
func ParsePaint(s string) (Paint, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if norm == "cumulativeage" {
		norm = "cumulative-age"
	}
	for p, name := range paintNames {
		if name == norm {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid paint mode: %q (must be one of: age, cumulative-age, generation, constant)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Paint) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Paint) UnmarshalText(b []byte) error {
	v, err := ParsePaint(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// InitialWalkers selects the headings of the root walkers.
type InitialWalkers int

const (
	// CardinalsAndOrdinals starts eight walkers, one every 45 degrees.
	CardinalsAndOrdinals InitialWalkers = iota
	// Cardinals starts four walkers along the axes.
	Cardinals
	// Ordinals starts four walkers along the diagonals.
	Ordinals
)

var initialNames = map[InitialWalkers]string{
	CardinalsAndOrdinals: "cardinals-and-ordinals",
	Cardinals:            "cardinals",
	Ordinals:             "ordinals",
}

// String returns the canonical name of the initial walker set.
func (iw InitialWalkers) String() string {
	if s, ok := initialNames[iw]; ok {
		return s
	}
	return fmt.Sprintf("initial(%d)", int(iw))
}

// ParseInitialWalkers parses an initial walker set name.
func ParseInitialWalkers(s string) (InitialWalkers, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for iw, name := range initialNames {
		if name == norm {
			return iw, nil
		}
	}
	return 0, fmt.Errorf("invalid initial walkers: %q (must be one of: cardinals, ordinals, cardinals-and-ordinals)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (iw InitialWalkers) MarshalText() ([]byte, error) { return []byte(iw.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (iw *InitialWalkers) UnmarshalText(b []byte) error {
	v, err := ParseInitialWalkers(string(b))
	if err != nil {
		return err
	}
	*iw = v
	return nil
}

// Headings returns the root walker headings in radians, ascending.
func (iw InitialWalkers) Headings() []float64 {
	switch iw {
	case Cardinals:
		return []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}
	case Ordinals:
		return []float64{math.Pi / 4, 3 * math.Pi / 4, 5 * math.Pi / 4, 7 * math.Pi / 4}
	default:
		h := make([]float64, 8)
		for i := range h {
			h[i] = float64(i) * math.Pi / 4
		}
		return h
	}
}

// Params are the inputs of one simulation run.
type Params struct {
	Size                    int            `json:"size" toml:"size"`
	MaxLongAge              int            `json:"max_long_age" toml:"max_long_age"`
	MaxShortAge             int            `json:"max_short_age" toml:"max_short_age"`
	MaxGenerations          int            `json:"max_generations" toml:"max_generations"`
	Children                int            `json:"children" toml:"children"`
	MaxLongAngleDivergence  float64        `json:"max_long_angle_divergence" toml:"max_long_angle_divergence"`
	MaxShortAngleDivergence float64        `json:"max_short_angle_divergence" toml:"max_short_angle_divergence"`
	ShortBranchFrequency    int            `json:"short_branch_frequency" toml:"short_branch_frequency"`
	Paint                   Paint          `json:"paint" toml:"paint"`
	InitialWalkers          InitialWalkers `json:"initial_walkers" toml:"initial_walkers"`
	Seed                    uint64         `json:"seed" toml:"-"`
}

// MaxAge is the largest age any walker can paint:
//
//	max_long_age*(max_generations+1) + max_generations + 1
//
// Root walkers paint age 1 at their origin and advance one per step; each
// generation starts one past its parent's final age. The value is always
// at least 1.
func (p Params) MaxAge() uint64 {
	l := uint64(max(p.MaxLongAge, 0))
	g := uint64(max(p.MaxGenerations, 0))
	return l*(g+1) + g + 1
}

// Validate reports parameters the simulator cannot honour.
func (p Params) Validate() error {
	switch {
	case p.Size < 0:
		return fmt.Errorf("size must be non-negative, got %d", p.Size)
	case p.MaxLongAge < 0, p.MaxShortAge < 0:
		return fmt.Errorf("ages must be non-negative")
	case p.MaxGenerations < 0:
		return fmt.Errorf("max_generations must be non-negative, got %d", p.MaxGenerations)
	case p.Children < 0:
		return fmt.Errorf("children must be non-negative, got %d", p.Children)
	case p.ShortBranchFrequency < 0:
		return fmt.Errorf("short_branch_frequency must be non-negative, got %d", p.ShortBranchFrequency)
	case !finite(p.MaxLongAngleDivergence), !finite(p.MaxShortAngleDivergence):
		return fmt.Errorf("angle divergences must be finite")
	}
	if _, ok := paintNames[p.Paint]; !ok {
		return fmt.Errorf("unknown paint mode %d", int(p.Paint))
	}
	if _, ok := initialNames[p.InitialWalkers]; !ok {
		return fmt.Errorf("unknown initial walkers %d", int(p.InitialWalkers))
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Walkers bounds the number of walkers a run can start: the root walkers,
// every long descendant up to MaxGenerations and their short branches.
// The count saturates at math.MaxUint64.
func (p Params) Walkers() uint64 {
	long, _, shorts, _ := p.budget()
	return satMul(long, satAdd(1, shorts))
}

// Steps bounds the number of paint operations a run performs. A walker
// moves in a straight line, so it leaves the grid within 2*Size steps
// whatever its age limit. Long walkers also paint their start cell. The
// count saturates at math.MaxUint64.
func (p Params) Steps() uint64 {
	long, longSteps, shorts, shortSteps := p.budget()
	return satMul(long, satAdd(1+longSteps, satMul(shorts, shortSteps)))
}

func (p Params) budget() (long, longSteps, shorts, shortSteps uint64) {
	reach := 2 * uint64(max(p.Size, 0))
	longSteps = min(uint64(max(p.MaxLongAge, 0)), reach)
	shortSteps = min(uint64(max(p.MaxShortAge, 0)), reach)
	if p.MaxShortAge > 0 && p.ShortBranchFrequency > 0 {
		shorts = longSteps / uint64(p.ShortBranchFrequency)
	}

	// Long walkers per root: 1 + c + c² + ... + c^g.
	c := uint64(max(p.Children, 0))
	gens := uint64(max(p.MaxGenerations, 0))
	perRoot, level := uint64(1), uint64(1)
	for g := uint64(0); g < gens && level > 0 && perRoot < math.MaxUint64; g++ {
		if c == 1 {
			perRoot = satAdd(perRoot, gens-g)
			break
		}
		level = satMul(level, c)
		perRoot = satAdd(perRoot, level)
	}
	long = satMul(uint64(len(p.InitialWalkers.Headings())), perRoot)
	return long, longSteps, shorts, shortSteps
}

func satAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

func satMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
