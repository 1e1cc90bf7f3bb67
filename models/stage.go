package models

import (
	"fmt"
	"strings"
)

// Stage is one level of the single-elimination bracket.
type Stage string

// StageList is the bracket progression, ordered from first to final stage.
// The ordering is configuration, not a database table.
type StageList []Stage

// DefaultStages matches the standard competition format.
var DefaultStages = StageList{
	"Prelims",
	"Quarter-Finals",
	"Semi-Finals",
	"Final",
}

func ParseStageList(raw string) (StageList, error) {
	parts := strings.Split(raw, ",")
	stages := make(StageList, 0, len(parts))
	seen := make(map[Stage]bool, len(parts))
	for _, p := range parts {
		name := Stage(strings.TrimSpace(p))
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate stage %q in stage order", name)
		}
		seen[name] = true
		stages = append(stages, name)
	}
	if len(stages) < 2 {
		return nil, fmt.Errorf("stage order must contain at least two stages, got %d", len(stages))
	}
	return stages, nil
}

func (l StageList) Contains(s Stage) bool {
	for _, stage := range l {
		if stage == s {
			return true
		}
	}
	return false
}

func (l StageList) First() Stage {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// Prior returns the stage immediately preceding s in the bracket order.
// ok is false when s is the first stage or not part of the list at all.
func (l StageList) Prior(s Stage) (Stage, bool) {
	for i, stage := range l {
		if stage == s {
			if i == 0 {
				return "", false
			}
			return l[i-1], true
		}
	}
	return "", false
}

// Next returns the stage a round's winner advances into, if any.
func (l StageList) Next(s Stage) (Stage, bool) {
	for i, stage := range l {
		if stage == s {
			if i == len(l)-1 {
				return "", false
			}
			return l[i+1], true
		}
	}
	return "", false
}
