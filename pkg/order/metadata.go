package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Metadata is the complete, caller-supplied description of a
// submission. The pipeline never fills it in partially: incomplete
// values are rejected at the API boundary.
type Metadata struct {
	ServiceType  string          `json:"serviceType"`
	SubjectArea  string          `json:"subjectArea"`
	WordCount    int             `json:"wordCount"`
	StudyLevel   string          `json:"studyLevel"`
	DueDate      string          `json:"dueDate"`
	Module       string          `json:"module"`
	Instructions string          `json:"instructions"`
	Price        decimal.Decimal `json:"price"`
	ClientEmail  string          `json:"clientEmail"`
	ClientName   string          `json:"clientName"`
}

var ErrIncompleteMetadata = errors.New("incomplete submission metadata")

func (m *Metadata) Validate() error {
	required := map[string]string{
		"serviceType": m.ServiceType,
		"subjectArea": m.SubjectArea,
		"studyLevel":  m.StudyLevel,
		"dueDate":     m.DueDate,
		"clientEmail": m.ClientEmail,
		"clientName":  m.ClientName,
	}
	for field, val := range required {
		if val == "" {
			return fmt.Errorf("`%s` is empty: %w", field, ErrIncompleteMetadata)
		}
	}
	if m.WordCount < 0 {
		return fmt.Errorf("word count is negative: %w", ErrIncompleteMetadata)
	}
	return nil
}
