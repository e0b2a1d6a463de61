package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every configuration parameter read from the environment.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	// Repository identity, echoed by the Identify verb.
	RepositoryName string `envconfig:"REPOSITORY_NAME" required:"true"`
	RepositoryID   string `envconfig:"REPOSITORY_ID" required:"true"`
	BaseURL        string `envconfig:"BASE_URL" required:"true"`
	AdminEmail     string `envconfig:"ADMIN_EMAIL" required:"true"`

	ProtocolVersion   string `envconfig:"PROTOCOL_VERSION" default:"2.0"`
	EarliestDatestamp string `envconfig:"EARLIEST_DATESTAMP" default:"1970-01-01T00:00:00Z"`
	DeletedRecord     string `envconfig:"DELETED_RECORD" default:"transient"`
	Granularity       string `envconfig:"GRANULARITY" default:"YYYY-MM-DDThh:mm:ssZ"`

	// Default metadata format when the request carries none.
	MetadataPrefix string `envconfig:"METADATA_PREFIX" default:"oai_dc"`

	// Page size for the list verbs and its server-side ceiling.
	PageLimit    int `envconfig:"PAGE_LIMIT" default:"50"`
	PageLimitMax int `envconfig:"PAGE_LIMIT_MAX" default:"500"`

	// Resumption tokens older than this are treated as absent and swept.
	TokenTTLMinutes int    `envconfig:"TOKEN_TTL_MINUTES" default:"1440"`
	SweepSchedule   string `envconfig:"SWEEP_SCHEDULE" default:"0 * * * *"`

	// Optional xml-stylesheet reference embedded in every response document.
	StylesheetHref string `envconfig:"STYLESHEET_HREF"`

	EnabledProviders string `envconfig:"ENABLED_PROVIDERS" default:"publications,resources"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
