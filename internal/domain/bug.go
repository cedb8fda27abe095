package domain

import "encoding/json"

// Label is one of the fixed bug categories. The set is closed: anything
// outside it is rejected at validation time.
type Label string

const (
	LabelFrontend       Label = "Frontend"
	LabelBackend        Label = "Backend"
	LabelDatabase       Label = "Database"
	LabelInfrastructure Label = "Infrastructure"
	LabelSecurity       Label = "Security"
	LabelProcess        Label = "Process"
)

// Labels lists every allowed label in display order.
var Labels = []Label{
	LabelFrontend,
	LabelBackend,
	LabelDatabase,
	LabelInfrastructure,
	LabelSecurity,
	LabelProcess,
}

// ValidLabel reports whether l belongs to the closed label set.
func ValidLabel(l Label) bool {
	switch l {
	case LabelFrontend, LabelBackend, LabelDatabase, LabelInfrastructure, LabelSecurity, LabelProcess:
		return true
	}
	return false
}

// BugRecord is the sole persisted entity. Timestamps are milliseconds since
// the Unix epoch; CompletedAt is nil while the bug is open. A record with
// Reference set can never be completed or deleted.
type BugRecord struct {
	ID          string `json:"id"`
	Ticket      string `json:"ticket,omitempty"`
	Description string `json:"description"`
	JiraLink    string `json:"jiraLink,omitempty"`
	Impact      int    `json:"impact"`
	Likelihood  int    `json:"likelihood"`
	Label       Label  `json:"label,omitempty"`
	Reference   bool   `json:"reference"`
	CreatedAt   int64  `json:"createdAt"`
	CompletedAt *int64 `json:"completedAt,omitempty"`
}

func (b BugRecord) Completed() bool { return b.CompletedAt != nil }

func (b BugRecord) RiskScore() int { return Score(b.Impact, b.Likelihood) }

func (b BugRecord) RiskCategory() Category { return CategoryFor(b.RiskScore()) }

// MarshalJSON adds the derived risk fields so API consumers never have to
// recompute the matrix bands themselves.
func (b BugRecord) MarshalJSON() ([]byte, error) {
	type alias BugRecord
	return json.Marshal(struct {
		alias
		RiskScore    int      `json:"riskScore"`
		RiskCategory Category `json:"riskCategory"`
	}{alias(b), b.RiskScore(), b.RiskCategory()})
}
