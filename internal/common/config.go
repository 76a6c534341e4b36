package common

import "github.com/ilyakaznacheev/cleanenv"

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig
	OCR        OCRConfig
	Validation ValidationConfig
}

// DatabaseConfig holds document-store configuration. The DSN selects the
// driver: postgres:// URLs open a pgx pool, anything else is treated as a
// sqlite path (":memory:" included).
type DatabaseConfig struct {
	DSN         string `env:"DB_URL" env-default:"docpipe.db"`
	MaxConns    int    `env:"DB_MAX_CONNS" env-default:"10"`
	DialTimeout int    `env:"DB_DIAL_TIMEOUT_SECONDS" env-default:"3"`
}

// OCRConfig holds extraction-cascade configuration.
type OCRConfig struct {
	Pdftoppm      string `env:"PDFTOPPM_BIN" env-default:"pdftoppm"`
	Tesseract     string `env:"TESSERACT_BIN" env-default:"tesseract"`
	TesseractLang string `env:"TESSERACT_LANG" env-default:"eng"`
	TessdataDir   string `env:"TESSDATA_PREFIX" env-default:""`
	DPI           int    `env:"OCR_DPI" env-default:"300"`
	MaxPages      int    `env:"OCR_MAX_PAGES" env-default:"0"`
	// MinTextLength is the plausibility threshold below which direct
	// text-layer output is treated as insufficient and the cascade escalates.
	MinTextLength int `env:"OCR_MIN_TEXT_LENGTH" env-default:"100"`
	// EnableTextract turns the cloud engine on; it also needs the usual AWS
	// credential environment to actually work.
	EnableTextract bool   `env:"OCR_ENABLE_TEXTRACT" env-default:"false"`
	AWSRegion      string `env:"AWS_REGION" env-default:""`
}

// ValidationConfig holds the business-rule thresholds.
type ValidationConfig struct {
	HourGapThreshold float64 `env:"VALIDATE_HOUR_GAP" env-default:"0.5"`
	HighGapThreshold float64 `env:"VALIDATE_HIGH_GAP" env-default:"2"`
	WeeklyHourCap    float64 `env:"VALIDATE_WEEKLY_HOUR_CAP" env-default:"4"`
	MonthlyNoShowCap int     `env:"VALIDATE_MONTHLY_NO_SHOW_CAP" env-default:"2"`
	WorkdayStart     string  `env:"VALIDATE_WORKDAY_START" env-default:"10:00 AM"`
	WorkdayEnd       string  `env:"VALIDATE_WORKDAY_END" env-default:"7:00 PM"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, WrapError(err, "read env config")
	}
	return &cfg, nil
}

// Validate checks the loaded configuration for required fields.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.OCR.MinTextLength < 0 {
		return NewAppError("CONFIG_ERROR", "OCR_MIN_TEXT_LENGTH must be >= 0", ErrInvalidInput)
	}
	return nil
}
