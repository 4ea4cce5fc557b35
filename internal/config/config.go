package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the SQL backend: "pgx" for PostgreSQL, "sqlite" for an
	// embedded database file (or ":memory:").
	Driver                 string `mapstructure:"driver" validate:"required,oneof=pgx sqlite"`
	URL                    string `mapstructure:"url" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
// Tokens are issued by the user subsystem; this service only verifies them.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
	// HookSecret authenticates the lifecycle hooks called by the owning
	// subsystems. The hooks are not mounted when it is empty.
	HookSecret string `mapstructure:"hook_secret" validate:"omitempty,min=32"`
}

// SchedulerConfig tunes the review scheduler.
type SchedulerConfig struct {
	BoxIntervalsDays []int `mapstructure:"box_intervals_days" validate:"len=5,increasing,dive,gt=0"`
	MaxSaveAttempts  int   `mapstructure:"max_save_attempts" validate:"gte=1,lte=10"`
	DefaultDueLimit  int   `mapstructure:"default_due_limit" validate:"gte=1,lte=500"`
	// VerifyReferences enables user/item existence checks against the catalog tables.
	VerifyReferences bool          `mapstructure:"verify_references"`
	Catalog          CatalogConfig `mapstructure:"catalog"`
}

// CatalogConfig names the tables owned by other subsystems that hold users
// and learnable content. Each table must have a uuid "id" column.
type CatalogConfig struct {
	UsersTable      string `mapstructure:"users_table" validate:"required,sqlident"`
	FlashCardsTable string `mapstructure:"flash_cards_table" validate:"required,sqlident"`
	QuestionsTable  string `mapstructure:"questions_table" validate:"required,sqlident"`
	TopicsTable     string `mapstructure:"topics_table" validate:"required,sqlident"`
}

// RateLimitConfig bounds how fast a single user may submit reviews.
type RateLimitConfig struct {
	SubmissionsPerSecond float64 `mapstructure:"submissions_per_second" validate:"gt=0"`
	Burst                int     `mapstructure:"burst" validate:"gte=1"`
}
