package models

import (
	"strconv"

	"gorm.io/datatypes"
)

// Course carries the routing key for the semantic scoring service and the
// per-marks threshold cutoffs used to quantize similarity scores. Thresholds
// are keyed by a question's total marks rendered as a string, and each cutoff
// sequence is expected to be non-decreasing with length equal to its key.
type Course struct {
	ID           uint                                     `gorm:"primaryKey" json:"id"`
	Code         string                                   `gorm:"size:16;uniqueIndex;not null" json:"code"`
	Name         string                                   `gorm:"size:25;uniqueIndex;not null" json:"name"`
	Description  string                                   `gorm:"size:100" json:"description"`
	EmbeddingURL string                                   `gorm:"size:255;not null" json:"embedding_url"`
	Thresholds   datatypes.JSONType[map[string][]float64] `json:"thresholds"`
}

// ThresholdsFor returns the cutoff sequence configured for a question worth
// totalMarks, or false when the course has no entry for it.
func (c Course) ThresholdsFor(totalMarks int) ([]float64, bool) {
	thresholds := c.Thresholds.Data()
	cutoffs, ok := thresholds[strconv.Itoa(totalMarks)]

	return cutoffs, ok
}
