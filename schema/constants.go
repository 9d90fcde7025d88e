package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for storage and caching.
	DatabaseBackend string

	// ScoringKind represents the scoring path an indicator resolves to.
	ScoringKind string

	// CategoryFamily groups indicator categories for subtotals.
	CategoryFamily string

	// Mode is the calculation mode of a toggleable indicator.
	Mode string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Scoring kinds, resolved once per template item.
const (
	DirectRead      ScoringKind = "direct_read"      // score is the entered value
	FormulaComputed ScoringKind = "formula_computed" // score is the formula result
	AutoDerived     ScoringKind = "auto_derived"     // verification total bound to the operator aggregate
	ManualOverride  ScoringKind = "manual_override"  // verification total bound to the entered value
	Unscored        ScoringKind = "unscored"         // no path applies, scores 0
)

// Category families used for subtotals.
const (
	ProcessFamily    CategoryFamily = "process"
	ManagementFamily CategoryFamily = "management"
	OtherFamily      CategoryFamily = "other"
)

// Calculation modes for the verification total indicator.
const (
	AutoMode   Mode = "AUTO"
	ManualMode Mode = "MANUAL"
)

// Raw input keys with fixed meaning.
const (
	CoefficientKey       = "egp_score"
	VerificationTotalKey = "verification_total"
	QuitStoreCountKey    = "quit_store_count"
	SalesTotalKey        = "sales_total"
	PersonNameKey        = "person_name"
	PerformanceMonthKey  = "performance_month"
	ScoresKey            = "scores"
	TotalScoreKey        = "total_score"
	FinalScoreKey        = "final_score"
)

// Formula variable names.
const (
	VarWeight         = "weight"
	VarAvgScore       = "avg_score"
	VarTotalSalary    = "total_salary"
	VarQuitStoreCount = "quit_store_count"
	VarSalesTotal     = "sales_total"
)

// MonthLayout is the layout of a performance month.
const MonthLayout = "2006-01"

// DefaultCoefficient is used when no coefficient has been chosen.
const DefaultCoefficient = 1.0

// Coefficients lists the selectable final-score multipliers, best first.
var Coefficients = []float64{1.2, 1, 0.8, 0}

// ReservedInputKeys are payload fields that never persist as raw inputs.
var ReservedInputKeys = map[string]struct{}{
	PersonNameKey:       {},
	PerformanceMonthKey: {},
	ScoresKey:           {},
	TotalScoreKey:       {},
	FinalScoreKey:       {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
