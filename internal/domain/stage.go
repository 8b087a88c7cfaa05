package domain

import "strings"

// Stage is the pipeline phase a deal occupies
type Stage string

// Canonical board stages
const (
	StageNew         Stage = "NEW"
	StageQualified   Stage = "QUALIFIED"
	StageProposal    Stage = "PROPOSAL"
	StageNegotiation Stage = "NEGOTIATION"
	StageClosedWon   Stage = "CLOSED_WON"
	StageClosedLost  Stage = "CLOSED_LOST"
)

// Legacy stage names still written by the pipeline chart
const (
	StageProspecting   Stage = "PROSPECTING"
	StageQualification Stage = "QUALIFICATION"
)

var legacyStageAliases = map[Stage]Stage{
	StageProspecting:   StageNew,
	StageQualification: StageQualified,
}

// CanonicalStages lists the board stages in pipeline order
func CanonicalStages() []Stage {
	return []Stage{StageNew, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost}
}

// IsValid reports whether s is one of the canonical stages
func (s Stage) IsValid() bool {
	switch s {
	case StageNew, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

// IsLegacy reports whether s is a legacy alias
func (s Stage) IsLegacy() bool {
	_, ok := legacyStageAliases[s]
	return ok
}

// Canonical maps legacy aliases to their canonical stage. Other values are returned as-is.
func (s Stage) Canonical() Stage {
	if c, ok := legacyStageAliases[s]; ok {
		return c
	}
	return s
}

// IsClosed reports whether the deal is won or lost
func (s Stage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// ParseStage normalises user input such as "closed won" or "negotiation"
func ParseStage(s string) Stage {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return Stage(s)
}

// StageDefinition describes one board column
type StageDefinition struct {
	Stage        Stage   `json:"stage" yaml:"stage"`
	Label        string  `json:"label" yaml:"label"`
	Color        string  `json:"color" yaml:"color"`
	DisplayOrder int     `json:"displayOrder" yaml:"display_order"`
	Aliases      []Stage `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Matches reports whether a deal in stage s belongs in this column
func (d StageDefinition) Matches(s Stage) bool {
	if s == d.Stage {
		return true
	}
	for _, alias := range d.Aliases {
		if s == alias {
			return true
		}
	}
	return false
}

// DefaultStageDefinitions returns the board columns in pipeline order.
// Legacy aliases are folded into their canonical columns.
func DefaultStageDefinitions() []StageDefinition {
	return []StageDefinition{
		{Stage: StageNew, Label: "New", Color: "#3B82F6", DisplayOrder: 0, Aliases: []Stage{StageProspecting}},
		{Stage: StageQualified, Label: "Qualified", Color: "#8B5CF6", DisplayOrder: 1, Aliases: []Stage{StageQualification}},
		{Stage: StageProposal, Label: "Proposal", Color: "#F59E0B", DisplayOrder: 2},
		{Stage: StageNegotiation, Label: "Negotiation", Color: "#F97316", DisplayOrder: 3},
		{Stage: StageClosedWon, Label: "Closed Won", Color: "#10B981", DisplayOrder: 4},
		{Stage: StageClosedLost, Label: "Closed Lost", Color: "#EF4444", DisplayOrder: 5},
	}
}

// Priority is the display priority of a deal
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// IsValid reports whether p is a known priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// OrDefault returns MEDIUM for an absent priority
func (p Priority) OrDefault() Priority {
	if p == "" {
		return PriorityMedium
	}
	return p
}
