package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []ValidationError

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"jwt_secret", "is required"})
	}
	if cfg.JWTTTL <= 0 {
		errs = append(errs, ValidationError{"jwt_ttl", "must be positive"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"db_host", "db_host and db_name are required for postgres"})
		}
		if env.Strict() && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"db_password", fmt.Sprintf("is required in %s environment", env)})
		}
	case "sqlite":
		if env == Production {
			errs = append(errs, ValidationError{"db_driver", "sqlite is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{"db_driver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.StorageDriver {
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"s3_bucket", "is required when storage_driver is s3"})
		}
	case "local":
		if cfg.MediaDir == "" {
			errs = append(errs, ValidationError{"media_dir", "is required when storage_driver is local"})
		}
	default:
		errs = append(errs, ValidationError{"storage_driver", fmt.Sprintf("unsupported driver %q", cfg.StorageDriver)})
	}

	if cfg.PageSize < 1 {
		errs = append(errs, ValidationError{"page_size", "must be at least 1"})
	}
	if cfg.BaseURL == "" {
		errs = append(errs, ValidationError{"base_url", "is required"})
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}

	return nil
}
