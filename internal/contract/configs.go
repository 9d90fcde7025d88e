package contract

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/kpiboard/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	DefaultListen    = ":8080"
	DefaultLogLevel  = "info"
	MaxEditValueLen  = 1024
)

// NoCoefficient marks the --coefficient flag as unset.
const NoCoefficient = -1.0

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// VocabularyRawInput holds keyword overrides from the YAML config file.
type VocabularyRawInput struct {
	Process        []string `mapstructure:"process"`
	Management     []string `mapstructure:"management"`
	Verification   []string `mapstructure:"verification"`
	OperatingScore []string `mapstructure:"operating_score"`
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Person     string
	ItemID     schema.ItemID // Target of the toggle command
	InputFile  string        // Seed file of the import command
	Month      string
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	LogLevel     string
	Listen       string
	AllowOrigins []string // CORS origins of the HTTP API (empty = any)

	Vocabulary schema.Vocabulary

	// Edits are raw input overrides given on the command line.
	Edits map[string]string

	// Remarks are free-text notes keyed by template item id.
	Remarks map[schema.ItemID]string

	// Coefficient is nil unless chosen on the command line.
	Coefficient *float64
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args and repeatable flags, so no tag
	PersonStr    string
	ItemStr      string
	InputFileStr string
	Sets         []string
	Remarks      []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Month          string `mapstructure:"month"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	LogLevel       string `mapstructure:"log-level"`

	// --- Fields from scoreCmd/saveCmd flags ---
	Coefficient float64 `mapstructure:"coefficient"`

	// --- Fields from serveCmd.Flags() ---
	Listen       string   `mapstructure:"listen"`
	AllowOrigins []string `mapstructure:"allow-origins"`

	// --- Keyword overrides from config file ---
	Vocabulary VocabularyRawInput `mapstructure:"vocabulary"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Edits != nil {
		clone.Edits = maps.Clone(c.Edits)
	}
	if c.Remarks != nil {
		clone.Remarks = maps.Clone(c.Remarks)
	}
	if c.Coefficient != nil {
		v := *c.Coefficient
		clone.Coefficient = &v
	}
	clone.AllowOrigins = slices.Clone(c.AllowOrigins)
	clone.Vocabulary = schema.Vocabulary{
		Process:        slices.Clone(c.Vocabulary.Process),
		Management:     slices.Clone(c.Vocabulary.Management),
		Verification:   slices.Clone(c.Vocabulary.Verification),
		OperatingScore: slices.Clone(c.Vocabulary.OperatingScore),
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processMonth(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := processEdits(cfg, input); err != nil {
		return err
	}
	if err := processCoefficient(cfg, input); err != nil {
		return err
	}
	processVocabulary(cfg, input)
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend validates a backend name.
func ParseBackend(name string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", name)
	}
	return backend, nil
}

// validateBackendConfigs validates record store and roster cache backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Record Store Validation ---
	backend, err := ParseBackend(input.StoreBackend)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- Roster Cache Validation ---
	backend, err = ParseBackend(input.CacheBackend)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// SQLite stores must not share a file
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.CacheBackend == schema.SQLiteBackend {
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		if storePath == cachePath {
			return fmt.Errorf("record store and roster cache must use different SQLite database files. Both resolve to %q", storePath)
		}
	}
	return nil
}

// validateSimpleInputs handles the flat options.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Person = strings.TrimSpace(input.PersonStr)
	cfg.ItemID = schema.ItemID(strings.TrimSpace(input.ItemStr))
	cfg.InputFile = strings.TrimSpace(input.InputFileStr)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 0 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	cfg.Listen = input.Listen
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	cfg.AllowOrigins = nil
	for _, origin := range input.AllowOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	return validateBackendConfigs(cfg, input)
}

// processMonth validates the performance month, defaulting to the month before now.
func processMonth(cfg *Config, input *ConfigRawInput, now time.Time) error {
	month := strings.TrimSpace(input.Month)
	if month == "" {
		cfg.Month = PreviousMonth(now)
		return nil
	}
	if _, err := ParseMonth(month); err != nil {
		return err
	}
	cfg.Month = month
	return nil
}

// processEdits parses the repeatable --set and --remark flags.
func processEdits(cfg *Config, input *ConfigRawInput) error {
	edits, err := ParseKeyValues(input.Sets)
	if err != nil {
		return fmt.Errorf("invalid --set value: %w", err)
	}
	cfg.Edits = edits

	remarks, err := ParseKeyValues(input.Remarks)
	if err != nil {
		return fmt.Errorf("invalid --remark value: %w", err)
	}
	cfg.Remarks = make(map[schema.ItemID]string, len(remarks))
	for k, v := range remarks {
		cfg.Remarks[schema.ItemID(k)] = v
	}
	return nil
}

// processCoefficient validates the optional coefficient override.
func processCoefficient(cfg *Config, input *ConfigRawInput) error {
	cfg.Coefficient = nil
	if input.Coefficient == NoCoefficient {
		return nil
	}
	if !schema.IsValidCoefficient(input.Coefficient) {
		return fmt.Errorf("coefficient must be one of %v (received %v)", schema.Coefficients, input.Coefficient)
	}
	c := input.Coefficient
	cfg.Coefficient = &c
	return nil
}

// processVocabulary applies keyword overrides on top of the defaults.
func processVocabulary(cfg *Config, input *ConfigRawInput) {
	cfg.Vocabulary = schema.Vocabulary{
		Process:        input.Vocabulary.Process,
		Management:     input.Vocabulary.Management,
		Verification:   input.Vocabulary.Verification,
		OperatingScore: input.Vocabulary.OperatingScore,
	}.Merge()
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseMonth parses a YYYY-MM performance month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(schema.MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month '%s'. Expected YYYY-MM", s)
	}
	return t, nil
}

// PreviousMonth returns the month before now in YYYY-MM form.
func PreviousMonth(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -1, 0).Format(schema.MonthLayout)
}

// ParseKeyValues parses "key=value" pairs. Later pairs win.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		if len(value) > MaxEditValueLen {
			return nil, fmt.Errorf("value for %q exceeds %d bytes", key, MaxEditValueLen)
		}
		out[key] = value
	}
	return out, nil
}
