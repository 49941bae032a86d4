package config

import "fmt"

// SanitizeConfigForLogging returns a copy of cfg's fields safe to log,
// redacting S3 credentials the way DNShield's SanitizeConfigForLogging
// redacts Splunk tokens and access keys.
func SanitizeConfigForLogging(cfg *Config) map[string]interface{} {
	sanitized := make(map[string]interface{})

	run := make(map[string]interface{})
	run["buffer_mode"] = cfg.Run.BufferMode
	run["output_path"] = cfg.Run.OutputPath
	sanitized["run"] = run

	limits := make(map[string]interface{})
	limits["max_line_length"] = cfg.Limits.MaxLineLength
	limits["max_file_bytes"] = cfg.Limits.MaxFileBytes
	sanitized["limits"] = limits

	if cfg.S3.Bucket != "" {
		s3 := make(map[string]interface{})
		s3["bucket"] = cfg.S3.Bucket
		s3["region"] = cfg.S3.Region
		s3["key"] = cfg.S3.Key
		// Explicitly not including AccessKeyID or SecretKey.
		s3["credentials"] = "[CONFIGURED]"
		sanitized["s3"] = s3
	}

	logging := make(map[string]interface{})
	logging["level"] = cfg.Logging.Level
	sanitized["logging"] = logging

	return sanitized
}

// ValidateConfig performs basic configuration validation.
func ValidateConfig(cfg *Config) error {
	switch cfg.Run.BufferMode {
	case "memory", "tempfile":
	default:
		return fmt.Errorf("invalid buffer mode %q: must be \"memory\" or \"tempfile\"", cfg.Run.BufferMode)
	}

	if cfg.Limits.MaxLineLength <= 0 {
		return fmt.Errorf("invalid max line length: %d", cfg.Limits.MaxLineLength)
	}
	if cfg.Limits.MaxFileBytes < 0 {
		return fmt.Errorf("invalid max file bytes: %d", cfg.Limits.MaxFileBytes)
	}

	if cfg.S3.Bucket != "" {
		if cfg.S3.Region == "" {
			return fmt.Errorf("S3 bucket configured but region not specified")
		}
		if cfg.S3.Key == "" {
			return fmt.Errorf("S3 bucket configured but key not specified")
		}
	}

	return nil
}
