package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. FLASHBOX_DATABASE_URL for database.url.
const EnvPrefix = "FLASHBOX"

var sqlIdentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Load configuration from environment variables and optionally config files.
//
// Sources in increasing priority: built-in defaults, config.yaml (searched in
// "." and "./config"), a .env file in the working directory, then the process
// environment. Values already present in the environment are never overridden
// by .env.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults must be bound explicitly for Unmarshal to see them.
	for _, key := range []string{"database.url", "auth.jwt_secret", "auth.hook_secret"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 30)

	v.SetDefault("scheduler.box_intervals_days", []int{1, 3, 7, 14, 30})
	v.SetDefault("scheduler.max_save_attempts", 3)
	v.SetDefault("scheduler.default_due_limit", 20)
	v.SetDefault("scheduler.verify_references", true)
	v.SetDefault("scheduler.catalog.users_table", "users")
	v.SetDefault("scheduler.catalog.flash_cards_table", "flash_cards")
	v.SetDefault("scheduler.catalog.questions_table", "questions")
	v.SetDefault("scheduler.catalog.topics_table", "topics")

	v.SetDefault("rate_limit.submissions_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)
}

// Validate checks every struct constraint of the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("increasing", validateIncreasing); err != nil {
		return fmt.Errorf("failed to register validator: %w", err)
	}
	if err := validate.RegisterValidation("sqlident", validateSQLIdent); err != nil {
		return fmt.Errorf("failed to register validator: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// validateIncreasing accepts int slices whose elements grow strictly.
func validateIncreasing(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice && field.Kind() != reflect.Array {
		return false
	}
	for i := 1; i < field.Len(); i++ {
		if field.Index(i).Int() <= field.Index(i-1).Int() {
			return false
		}
	}
	return true
}

// validateSQLIdent accepts plain or schema-qualified table names. The catalog
// interpolates them into queries, so nothing else may pass.
func validateSQLIdent(fl validator.FieldLevel) bool {
	return sqlIdentPattern.MatchString(fl.Field().String())
}
