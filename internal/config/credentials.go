package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// CredentialSource identifies where AWS credentials came from.
type CredentialSource string

const (
	CredentialSourceNone        CredentialSource = "none"
	CredentialSourceEnvironment CredentialSource = "environment"
	CredentialSourceConfig      CredentialSource = "config"
	CredentialSourceIAMRole     CredentialSource = "iam-role"
)

// AWSCredentials holds AWS credential information.
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Source          CredentialSource
}

// GetAWSCredentials retrieves AWS credentials from the most secure
// available source, in priority order: IAM role, environment variables,
// then the (deprecated, warned-about) config file.
func GetAWSCredentials(s3Config *S3Config) (*AWSCredentials, error) {
	if os.Getenv("AWS_CONTAINER_CREDENTIALS_RELATIVE_URI") != "" ||
		os.Getenv("AWS_CONTAINER_CREDENTIALS_FULL_URI") != "" ||
		os.Getenv("AWS_EXECUTION_ENV") != "" {
		return &AWSCredentials{Source: CredentialSourceIAMRole}, nil
	}

	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey != "" && secretKey != "" {
		return &AWSCredentials{
			AccessKeyID:     accessKey,
			SecretAccessKey: secretKey,
			Source:          CredentialSourceEnvironment,
		}, nil
	}

	if s3Config.AccessKeyID != "" && s3Config.SecretKey != "" {
		fmt.Fprintf(os.Stderr, "WARNING: AWS credentials found in config file. This is insecure!\n")
		fmt.Fprintf(os.Stderr, "Please use environment variables or IAM roles instead.\n")
		fmt.Fprintf(os.Stderr, "Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables.\n\n")

		return &AWSCredentials{
			AccessKeyID:     s3Config.AccessKeyID,
			SecretAccessKey: s3Config.SecretKey,
			Source:          CredentialSourceConfig,
		}, nil
	}

	// No credentials found - AWS SDK will try the default credential chain.
	return &AWSCredentials{Source: CredentialSourceNone}, nil
}

// ValidateCredentialSecurity checks for insecure credential practices
// and logs each warning as it's found, while also returning them so a
// caller can surface them through another channel (e.g. an audit
// event).
func ValidateCredentialSecurity(cfg *Config) []string {
	var warnings []string

	if cfg.S3.AccessKeyID != "" || cfg.S3.SecretKey != "" {
		warnings = append(warnings, "AWS credentials found in configuration file - consider using environment variables or IAM roles")
	}

	if cfg.Logging.Level == "debug" {
		warnings = append(warnings, "Running in debug mode - rule content may be logged more verbosely")
	}

	for _, warning := range warnings {
		logrus.Warn(fmt.Sprintf("SECURITY: %s", warning))
	}

	return warnings
}
