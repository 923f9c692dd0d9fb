package grading

import (
	"fmt"
	"strconv"
)

// Quantize converts a continuous similarity score into a discrete mark count.
// One mark is awarded for every cutoff the score meets or exceeds; equality
// counts as meeting the cutoff. The cutoff sequence bounds the maximum
// achievable marks. The result is well defined for any sequence, but only a
// non-decreasing one is meaningful.
func Quantize(cutoffs []float64, score float64) int {
	marks := 0
	for _, cutoff := range cutoffs {
		if score >= cutoff {
			marks++
		}
	}

	return marks
}

// ValidateThresholds checks a course threshold map: every key must parse as a
// positive mark count, its cutoff sequence must have exactly that length, and
// cutoffs must be non-decreasing. Course maintenance is expected to call this
// before saving; grading itself does not re-validate.
func ValidateThresholds(thresholds map[string][]float64) error {
	for key, cutoffs := range thresholds {
		totalMarks, err := strconv.Atoi(key)
		if err != nil || totalMarks <= 0 {
			return fmt.Errorf("threshold key %q is not a positive mark count", key)
		}

		if len(cutoffs) != totalMarks {
			return fmt.Errorf("threshold %q has %d cutoffs, want %d", key, len(cutoffs), totalMarks)
		}

		for i := 1; i < len(cutoffs); i++ {
			if cutoffs[i] < cutoffs[i-1] {
				return fmt.Errorf("threshold %q cutoffs must be non-decreasing", key)
			}
		}
	}

	return nil
}
