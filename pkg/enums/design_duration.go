package enums

import "fmt"

// DesignDuration is the display estimate the admin console publishes. The
// document stores it as free text; the admin write path constrains it to the
// options the console offers.
type DesignDuration string

const (
	DesignDurationPending        DesignDuration = "Pending"
	DesignDurationWeeks          DesignDuration = "Weeks"
	DesignDurationFewWeeks       DesignDuration = "Few Weeks"
	DesignDurationDays           DesignDuration = "Days"
	DesignDurationFewDays        DesignDuration = "Few Days"
	DesignDurationHours          DesignDuration = "Hours"
	DesignDurationFewHours       DesignDuration = "Few Hours"
	DesignDurationAlmostFinished DesignDuration = "Almost Finished"
	DesignDurationFinished       DesignDuration = "Finished"
)

var validDesignDurations = []DesignDuration{
	DesignDurationPending,
	DesignDurationWeeks,
	DesignDurationFewWeeks,
	DesignDurationDays,
	DesignDurationFewDays,
	DesignDurationHours,
	DesignDurationFewHours,
	DesignDurationAlmostFinished,
	DesignDurationFinished,
}

// IsValid reports whether the value matches a console duration option.
func (d DesignDuration) IsValid() bool {
	for _, candidate := range validDesignDurations {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDesignDuration converts the raw string to DesignDuration.
func ParseDesignDuration(value string) (DesignDuration, error) {
	for _, candidate := range validDesignDurations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid design duration %q", value)
}
