package schema

// SheetRow is one rendered line of a score sheet.
type SheetRow struct {
	Item       KpiTemplateItem `json:"item"`
	Family     CategoryFamily  `json:"family"`
	Kind       ScoringKind     `json:"kind"`
	Mode       Mode            `json:"mode"`
	Toggleable bool            `json:"toggleable"`
	LastMonth  string          `json:"last_month"`
	Score      float64         `json:"score"`
	Remarks    string          `json:"remarks,omitempty"`
}

// ScoreSheet is the render model of one operator's month.
type ScoreSheet struct {
	Operator Operator    `json:"operator"`
	Month    string      `json:"month"`
	Rows     []SheetRow  `json:"rows"`
	Result   ScoreResult `json:"result"`
}

// CategoryGroup is a run of rows sharing a category, in first-seen order.
type CategoryGroup struct {
	Category string
	Rows     []SheetRow
}

// UncategorizedLabel names the group of rows with a blank category.
const UncategorizedLabel = "Other"

// GroupByCategory groups rows by category, keeping first-seen order.
func (s ScoreSheet) GroupByCategory() []CategoryGroup {
	var groups []CategoryGroup
	index := make(map[string]int)
	for _, row := range s.Rows {
		cat := row.Item.Category
		if cat == "" {
			cat = UncategorizedLabel
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, CategoryGroup{Category: cat})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}
