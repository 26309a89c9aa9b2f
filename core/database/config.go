package database

// Supported driver names. They match the database/sql driver registrations.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
)

// Config holds database connection settings shared across bots.
type Config struct {
	Driver   string `yaml:"driver" envconfig:"DB_DRIVER" validate:"omitempty,oneof=postgres sqlite3 mysql"`
	Host     string `yaml:"host" envconfig:"DB_HOST" validate:"required_unless=Driver sqlite3"`
	Port     string `yaml:"port" envconfig:"DB_PORT"`
	User     string `yaml:"user" envconfig:"DB_USER"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name     string `yaml:"name" envconfig:"DB_NAME" validate:"required_unless=Driver sqlite3"`
	SSLMode  string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	// Path is the database file for the sqlite3 driver (":memory:" is allowed).
	Path           string `yaml:"path" envconfig:"DB_PATH" validate:"required_if=Driver sqlite3"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS" validate:"gte=0"`
}

// DriverName returns the configured driver, defaulting to postgres.
func (c Config) DriverName() string {
	if c.Driver == "" {
		return DriverPostgres
	}
	return c.Driver
}
