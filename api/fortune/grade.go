package fortune

import (
	"fmt"
	"sort"
)

type Grade string

const (
	GradeVeryHigh Grade = "very_high"
	GradeHigh     Grade = "high"
	GradeMid      Grade = "mid"
	GradeLow      Grade = "low"
)

// Threshold assigns Grade to scores at or above Min.
type Threshold struct {
	Min   int   `yaml:"min" json:"min"`
	Grade Grade `yaml:"grade" json:"grade"`
}

// GradeTable is checked from the highest Min down; scores below every
// threshold fall into Floor.
type GradeTable struct {
	Thresholds []Threshold `yaml:"thresholds" json:"thresholds"`
	Floor      Grade       `yaml:"floor" json:"floor"`
}

func DefaultGradeTable() GradeTable {
	return GradeTable{
		Thresholds: []Threshold{
			{Min: 85, Grade: GradeVeryHigh},
			{Min: 70, Grade: GradeHigh},
			{Min: 50, Grade: GradeMid},
		},
		Floor: GradeLow,
	}
}

func (t GradeTable) GradeFor(score int) Grade {
	sorted := make([]Threshold, len(t.Thresholds))
	copy(sorted, t.Thresholds)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })
	for _, th := range sorted {
		if score >= th.Min {
			return th.Grade
		}
	}
	return t.Floor
}

// Grades lists every grade the table can produce, in table order.
func (t GradeTable) Grades() []Grade {
	out := make([]Grade, 0, len(t.Thresholds)+1)
	for _, th := range t.Thresholds {
		out = append(out, th.Grade)
	}
	return append(out, t.Floor)
}

func ParseGrade(s string) (Grade, error) {
	switch g := Grade(s); g {
	case GradeVeryHigh, GradeHigh, GradeMid, GradeLow:
		return g, nil
	default:
		return "", fmt.Errorf("unknown grade %q", s)
	}
}
