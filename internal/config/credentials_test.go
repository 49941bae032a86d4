package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAWSEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AWS_CONTAINER_CREDENTIALS_RELATIVE_URI",
		"AWS_CONTAINER_CREDENTIALS_FULL_URI",
		"AWS_EXECUTION_ENV",
		"AWS_ACCESS_KEY_ID",
		"AWS_SECRET_ACCESS_KEY",
	} {
		old, ok := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if ok {
				os.Setenv(key, old)
			}
		})
	}
}

func TestGetAWSCredentials_PrefersIAMRoleEnvVars(t *testing.T) {
	clearAWSEnv(t)
	os.Setenv("AWS_EXECUTION_ENV", "AWS_ECS_FARGATE")
	os.Setenv("AWS_ACCESS_KEY_ID", "should-be-ignored")
	os.Setenv("AWS_SECRET_ACCESS_KEY", "should-be-ignored")

	creds, err := GetAWSCredentials(&S3Config{AccessKeyID: "also-ignored", SecretKey: "also-ignored"})
	require.NoError(t, err)
	assert.Equal(t, CredentialSourceIAMRole, creds.Source)
	assert.Empty(t, creds.AccessKeyID)
}

func TestGetAWSCredentials_FallsBackToEnvironment(t *testing.T) {
	clearAWSEnv(t)
	os.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	os.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	creds, err := GetAWSCredentials(&S3Config{})
	require.NoError(t, err)
	assert.Equal(t, CredentialSourceEnvironment, creds.Source)
	assert.Equal(t, "AKIAEXAMPLE", creds.AccessKeyID)
}

func TestGetAWSCredentials_FallsBackToConfigFile(t *testing.T) {
	clearAWSEnv(t)

	creds, err := GetAWSCredentials(&S3Config{AccessKeyID: "AKIAFROMFILE", SecretKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, CredentialSourceConfig, creds.Source)
	assert.Equal(t, "AKIAFROMFILE", creds.AccessKeyID)
}

func TestGetAWSCredentials_NoneWhenNothingSet(t *testing.T) {
	clearAWSEnv(t)

	creds, err := GetAWSCredentials(&S3Config{})
	require.NoError(t, err)
	assert.Equal(t, CredentialSourceNone, creds.Source)
}
