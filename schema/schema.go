// Package schema has models, enums and shared helpers for all parts of kpiboard.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ItemID identifies a template item. Upstream sources send it either as a
// JSON number or as an opaque string, so it is kept in string form.
type ItemID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a number or string: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// UnmarshalYAML keeps numeric ids in their written form.
func (id *ItemID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("item id must be a scalar (line %d)", value.Line)
	}
	if value.Tag == "!!null" {
		*id = ""
		return nil
	}
	*id = ItemID(value.Value)
	return nil
}

// Flag is a boolean that tolerates the 0/1 and string encodings used by
// SQL rows and loosely typed JSON.
type Flag bool

// UnmarshalJSON accepts true/false, 0/1 and their string forms.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		*f = true
	case "false", "0", "no", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}

// UnmarshalYAML accepts the same encodings as UnmarshalJSON.
func (f *Flag) UnmarshalYAML(value *yaml.Node) error {
	return f.UnmarshalJSON([]byte(value.Value))
}

// KpiTemplateItem is one indicator definition in an operator's KPI template.
// Indicator doubles as the key of persisted history scores. Category is free
// text and is classified by keyword. EditableFieldKey names the raw input read
// by direct scoring.
type KpiTemplateItem struct {
	ID               ItemID  `json:"id" yaml:"id"`
	Indicator        string  `json:"indicator" yaml:"indicator"`
	Kpi              string  `json:"kpi" yaml:"kpi"`
	Category         string  `json:"category" yaml:"category"`
	Weight           float64 `json:"weight" yaml:"weight"`
	Formula          string  `json:"formula,omitempty" yaml:"formula"`
	EditableFieldKey string  `json:"editable_field_key,omitempty" yaml:"editable_field_key"`
	IsAutoCalculated Flag    `json:"is_auto_calculated" yaml:"is_auto_calculated"`
}

// HasFormula reports whether the item carries a non-blank formula.
func (k KpiTemplateItem) HasFormula() bool {
	return strings.TrimSpace(k.Formula) != ""
}

// Mode returns the calculation mode implied by the auto flag.
func (k KpiTemplateItem) Mode() Mode {
	if k.IsAutoCalculated {
		return AutoMode
	}
	return ManualMode
}

// RemarksKey returns the raw input key holding free-text remarks for the item.
func (k KpiTemplateItem) RemarksKey() string {
	if k.EditableFieldKey == "" {
		return ""
	}
	if strings.Contains(k.EditableFieldKey, "last_month") {
		return strings.Replace(k.EditableFieldKey, "last_month", "remarks", 1)
	}
	return k.EditableFieldKey + "_remarks"
}

// Operator is a roster entry together with the aggregates supplied upstream.
type Operator struct {
	OperatorName string  `json:"operator_name" yaml:"operator_name"`
	GroupName    string  `json:"group_name" yaml:"group_name"`
	StoreCount   int     `json:"store_count" yaml:"store_count"`
	AvgScore     float64 `json:"avg_score" yaml:"avg_score"`
	TotalSalary  float64 `json:"total_salary" yaml:"total_salary"`
}

// ScoreMap holds scores keyed by stable item id.
type ScoreMap map[ItemID]float64

// LabelScoreMap holds scores keyed by indicator label, the persisted format.
type LabelScoreMap map[string]float64

// LabelScore is one entry of a decoded label-keyed score map, kept in document order.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ItemScore is the scored outcome of a single template item.
type ItemScore struct {
	ID        ItemID         `json:"id"`
	Indicator string         `json:"indicator"`
	Family    CategoryFamily `json:"family"`
	Kind      ScoringKind    `json:"kind"`
	Score     float64        `json:"score"`
}

// ValidationGap describes a missing input or template defect. It never blocks scoring.
type ValidationGap struct {
	ItemID    ItemID `json:"item_id"`
	Indicator string `json:"indicator"`
	Field     string `json:"field,omitempty"`
	Reason    string `json:"reason"`
}

// Message renders the gap for display.
func (g ValidationGap) Message() string {
	if g.Indicator == "" {
		return g.Reason
	}
	return fmt.Sprintf("%q %s", g.Indicator, g.Reason)
}

// ScoreResult is the complete outcome of one scoring pass.
type ScoreResult struct {
	Scores          ScoreMap        `json:"scores"`
	Items           []ItemScore     `json:"items"`
	ProcessTotal    float64         `json:"process_total"`
	ManagementTotal float64         `json:"management_total"`
	TotalScore      float64         `json:"total_score"`
	Coefficient     float64         `json:"coefficient"`
	FinalScore      float64         `json:"final_score"`
	MissingFields   []string        `json:"missing_fields"`
	Gaps            []ValidationGap `json:"gaps,omitempty"`
}

// WithCoefficient returns a copy with only the coefficient and final score changed.
func (r ScoreResult) WithCoefficient(c float64) ScoreResult {
	r.Coefficient = c
	r.FinalScore = r.TotalScore * c
	return r
}

// HistoryRecord is one saved month for an operator.
type HistoryRecord struct {
	PersonName       string  `json:"person_name"`
	PerformanceMonth string  `json:"performance_month"`
	TotalScore       float64 `json:"total_score"`
	FinalScore       float64 `json:"final_score"`
	EgpScore         float64 `json:"egp_score"`
	Scores           string  `json:"scores,omitempty"` // Serialized LabelScores
	SavedAt          int64   `json:"saved_at"`
}

// HistoryView is a history record with its scores decoded for display.
type HistoryView struct {
	HistoryRecord
	LabelScores []LabelScore `json:"label_scores"`
	HasDetail   bool         `json:"has_detail"`
}

// SavePayload is what the save path hands to the record store.
type SavePayload struct {
	PersonName       string      `json:"person_name"`
	PerformanceMonth string      `json:"performance_month"`
	Inputs           RawInputs   `json:"inputs"`
	Scores           LabelScores `json:"scores"`
	TotalScore       float64     `json:"total_score"`
	FinalScore       float64     `json:"final_score"`
	Coefficient      float64     `json:"egp_score"`
}

// FormatScore renders a score with the given precision, trimming a trailing ".0".
func FormatScore(v float64, precision int) string {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}
