package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	bankapp "osi-dues/internal/bank/application"
	ledger "osi-dues/internal/ledger/domain"
)

// CSVConfig controls decoding of CSV bank extracts.
type CSVConfig struct {
	Encoding string `yaml:"encoding"`
	Comma    string `yaml:"comma"`
}

// Config defines a reconciliation run.
type Config struct {
	Ledger  ledger.Layout         `yaml:"ledger"`
	Extract bankapp.ExtractLayout `yaml:"extract"`
	CSV     CSVConfig             `yaml:"csv"`
	// Units sizes the reference set 1..Units; zero reads it from the roster.
	Units          int           `yaml:"units"`
	ReportDir      string        `yaml:"report_dir"`
	MetricsFile    string        `yaml:"metrics_file"`
	SaveRetries    int           `yaml:"save_retries"`
	SaveRetryDelay time.Duration `yaml:"save_retry_delay"`
	PDFFont        string        `yaml:"pdf_font"`
	Debug          bool          `yaml:"debug"`
	DatabaseURL    string        `yaml:"-"`
}

// Load builds the config from env, then overlays the YAML file named by
// OSI_LAYOUT_CONFIG when set.
func Load() (Config, error) {
	return LoadFile(os.Getenv("OSI_LAYOUT_CONFIG"))
}

// LoadFile builds the config from env and overlays path when not empty.
// Fields absent from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	cfg := Config{
		Ledger:         ledger.DefaultLayout(),
		Extract:        bankapp.DefaultExtractLayout(),
		CSV:            CSVConfig{Encoding: getenvDefault("OSI_CSV_ENCODING", "utf-8"), Comma: getenvDefault("OSI_CSV_COMMA", ",")},
		Units:          getenvIntDefault("OSI_UNITS", 0),
		ReportDir:      getenvDefault("OSI_REPORT_DIR", filepath.FromSlash("var/reports")),
		MetricsFile:    os.Getenv("OSI_METRICS_FILE"),
		SaveRetries:    getenvIntDefault("OSI_SAVE_RETRIES", 3),
		SaveRetryDelay: getenvDuration("OSI_SAVE_RETRY_DELAY", 5*time.Second),
		PDFFont:        os.Getenv("OSI_PDF_FONT"),
		Debug:          getenvBool("OSI_DEBUG"),
		DatabaseURL:    getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Ledger.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.Extract.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Units < 0 {
		return cfg, errors.New("config: units must not be negative")
	}
	if cfg.SaveRetries < 0 {
		cfg.SaveRetries = 0
	}
	if len([]rune(cfg.CSV.Comma)) > 1 {
		return cfg, errors.New("config: csv comma must be a single character")
	}
	return cfg, nil
}

// CSVComma returns the CSV delimiter, zero for the reader default.
func (c Config) CSVComma() rune {
	for _, r := range c.CSV.Comma {
		return r
	}
	return 0
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
