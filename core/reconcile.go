package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/kpiboard/schema"
)

// ToLabelScores projects id-keyed scores onto indicator labels for
// persistence. When two items share a label the later template item wins and
// the earlier score is lost; LabelCollisions reports such labels.
func ToLabelScores(scores schema.ScoreMap, template []schema.KpiTemplateItem) schema.LabelScoreMap {
	out := make(schema.LabelScoreMap, len(scores))
	for _, item := range template {
		if s, ok := scores[item.ID]; ok {
			out[item.Indicator] = s
		}
	}
	return out
}

// ToLabelEntries is ToLabelScores in template order. A shared label keeps the
// position of its first item and the value of its last.
func ToLabelEntries(scores schema.ScoreMap, template []schema.KpiTemplateItem) []schema.LabelScore {
	var out []schema.LabelScore
	pos := make(map[string]int)
	for _, item := range template {
		s, ok := scores[item.ID]
		if !ok {
			continue
		}
		if i, seen := pos[item.Indicator]; seen {
			out[i].Score = s
			continue
		}
		pos[item.Indicator] = len(out)
		out = append(out, schema.LabelScore{Label: item.Indicator, Score: s})
	}
	return out
}

// FromLabelScores maps label-keyed scores back to item ids. Labels absent from
// the template are dropped.
func FromLabelScores(labels schema.LabelScoreMap, template []schema.KpiTemplateItem) schema.ScoreMap {
	out := make(schema.ScoreMap, len(labels))
	for _, item := range template {
		if s, ok := labels[item.Indicator]; ok {
			out[item.ID] = s
		}
	}
	return out
}

// LabelCollisions returns the indicator labels used by more than one item.
func LabelCollisions(template []schema.KpiTemplateItem) []string {
	counts := make(map[string]int, len(template))
	var dupes []string
	for _, item := range template {
		counts[item.Indicator]++
		if counts[item.Indicator] == 2 {
			dupes = append(dupes, item.Indicator)
		}
	}
	return dupes
}

// EncodeLabelScores serializes entries as a JSON object in the given order.
func EncodeLabelScores(entries []schema.LabelScore) (string, error) {
	b, err := json.Marshal(schema.LabelScores(entries))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeLabelScores parses a serialized label-keyed score map, keeping the
// order in which labels appear. Non-numeric values read as 0.
func DecodeLabelScores(raw string) ([]schema.LabelScore, error) {
	ls, err := schema.ParseLabelScores(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid scores: %w", err)
	}
	return ls, nil
}

// ReadHistory prepares saved records for display: newest month first, scores
// decoded by label. Records without usable scores are kept with HasDetail false.
func ReadHistory(records []schema.HistoryRecord) []schema.HistoryView {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b schema.HistoryRecord) int {
		return strings.Compare(b.PerformanceMonth, a.PerformanceMonth)
	})

	views := make([]schema.HistoryView, 0, len(sorted))
	for _, r := range sorted {
		v := schema.HistoryView{HistoryRecord: r}
		if strings.TrimSpace(r.Scores) != "" {
			if entries, err := DecodeLabelScores(r.Scores); err == nil {
				v.LabelScores = entries
				v.HasDetail = true
			}
		}
		views = append(views, v)
	}
	return views
}
