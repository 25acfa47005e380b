package enums

import "fmt"

// DesignProgress is the four-stage status the admin console advances a
// tracked design through. The core never transitions it, only projects it.
type DesignProgress string

const (
	DesignProgressPending    DesignProgress = "Pending"
	DesignProgressDesigning  DesignProgress = "Designing"
	DesignProgressFinalizing DesignProgress = "Finalizing"
	DesignProgressFinished   DesignProgress = "Finished"
)

var designProgressOrder = []DesignProgress{
	DesignProgressPending,
	DesignProgressDesigning,
	DesignProgressFinalizing,
	DesignProgressFinished,
}

// IsValid reports whether the value is one of the canonical stages.
func (d DesignProgress) IsValid() bool {
	for _, candidate := range designProgressOrder {
		if candidate == d {
			return true
		}
	}
	return false
}

// Ordinal returns the zero-based position of the stage. Unrecognized stage
// names project to Pending rather than failing.
func (d DesignProgress) Ordinal() int {
	for i, candidate := range designProgressOrder {
		if candidate == d {
			return i
		}
	}
	return 0
}

// ProgressPercent maps the stage to the dashboard bar width: each of the four
// stages fills another quarter.
func (d DesignProgress) ProgressPercent() int {
	return (d.Ordinal() + 1) * 25
}

// ParseDesignProgress converts the raw string to DesignProgress.
func ParseDesignProgress(value string) (DesignProgress, error) {
	for _, candidate := range designProgressOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid design progress %q", value)
}
