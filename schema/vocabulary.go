package schema

import "strings"

// Vocabulary holds the keywords used to classify free-text template labels.
// Matching is a case-insensitive substring test.
type Vocabulary struct {
	Process        []string `json:"process" yaml:"process"`
	Management     []string `json:"management" yaml:"management"`
	Verification   []string `json:"verification" yaml:"verification"`
	OperatingScore []string `json:"operating_score" yaml:"operating_score"`
}

// DefaultVocabulary returns the keywords used by the stock templates.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Process:        []string{"经营", "过程", "operating", "process"},
		Management:     []string{"管理", "management"},
		Verification:   []string{"核销总目标", "verification total"},
		OperatingScore: []string{"经营分", "operating score"},
	}
}

// Merge returns v with every empty list filled from the defaults.
func (v Vocabulary) Merge() Vocabulary {
	def := DefaultVocabulary()
	if len(v.Process) == 0 {
		v.Process = def.Process
	}
	if len(v.Management) == 0 {
		v.Management = def.Management
	}
	if len(v.Verification) == 0 {
		v.Verification = def.Verification
	}
	if len(v.OperatingScore) == 0 {
		v.OperatingScore = def.OperatingScore
	}
	return v
}

// Family classifies a category. Management wins when both families match.
func (v Vocabulary) Family(category string) CategoryFamily {
	switch {
	case containsAny(category, v.Management):
		return ManagementFamily
	case containsAny(category, v.Process):
		return ProcessFamily
	default:
		return OtherFamily
	}
}

// SubtotalFamily picks the subtotal a category counts toward. Unlike Family,
// process wins when both families match.
func (v Vocabulary) SubtotalFamily(category string) CategoryFamily {
	switch {
	case containsAny(category, v.Process):
		return ProcessFamily
	case containsAny(category, v.Management):
		return ManagementFamily
	default:
		return OtherFamily
	}
}

// IsVerificationTotal reports whether the item is the verification total indicator.
func (v Vocabulary) IsVerificationTotal(item KpiTemplateItem) bool {
	return containsAny(item.Indicator, v.Verification) || containsAny(item.Kpi, v.Verification)
}

// IsOperatingScore reports whether the item displays the operator's average score.
func (v Vocabulary) IsOperatingScore(item KpiTemplateItem) bool {
	return containsAny(item.Indicator, v.OperatingScore) || containsAny(item.Kpi, v.OperatingScore)
}

func containsAny(s string, keywords []string) bool {
	s = strings.ToLower(s)
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
