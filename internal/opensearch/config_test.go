package opensearch

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearClusterEnv blanks every environment variable the single-mode loader
// reads, so ambient developer configuration cannot leak into tests.
func clearClusterEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENSEARCH_URL", "OPENSEARCH_USERNAME", "OPENSEARCH_PASSWORD", "OPENSEARCH_SSL_VERIFY",
		"AWS_IAM_ARN", "AWS_REGION", "AWS_PROFILE", "AWS_ACCESS_KEY_ID",
		"AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN", "AWS_OPENSEARCH_SERVERLESS",
	} {
		t.Setenv(key, "")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthSpecVariant(t *testing.T) {
	tests := []struct {
		name    string
		auth    AuthSpec
		want    AuthVariant
		wantErr bool
	}{
		{
			name: "iam role wins over everything",
			auth: AuthSpec{
				IAMRoleARN:      "arn:aws:iam::123456789012:role/search",
				Username:        "admin",
				Password:        "secret",
				AccessKeyID:     "AKIA",
				SecretAccessKey: "key",
			},
			want: AuthIAMRole,
		},
		{
			name: "basic auth wins over aws credentials",
			auth: AuthSpec{
				Username:        "admin",
				Password:        "secret",
				AccessKeyID:     "AKIA",
				SecretAccessKey: "key",
			},
			want: AuthBasic,
		},
		{
			name: "static keys resolve to aws credentials",
			auth: AuthSpec{AccessKeyID: "AKIA", SecretAccessKey: "key"},
			want: AuthAWSCredentials,
		},
		{
			name: "profile alone resolves to aws credentials",
			auth: AuthSpec{Profile: "staging"},
			want: AuthAWSCredentials,
		},
		{
			name:    "username without password is incomplete",
			auth:    AuthSpec{Username: "admin"},
			wantErr: true,
		},
		{
			name:    "access key without secret is incomplete",
			auth:    AuthSpec{AccessKeyID: "AKIA"},
			wantErr: true,
		},
		{
			name:    "empty spec is incomplete",
			auth:    AuthSpec{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.auth.Variant()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrConfigInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClusterDescriptorValidate(t *testing.T) {
	valid := ClusterDescriptor{
		Name: "prod",
		URL:  "https://search.example.com:9200",
		Auth: AuthSpec{Username: "admin", Password: "secret"},
	}
	assert.NoError(t, valid.Validate())

	noURL := valid
	noURL.URL = ""
	err := noURL.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
	assert.Contains(t, err.Error(), "opensearch_url")

	noAuth := valid
	noAuth.Auth = AuthSpec{}
	err = noAuth.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestFromEnvironment(t *testing.T) {
	t.Run("basic auth descriptor", func(t *testing.T) {
		clearClusterEnv(t)
		t.Setenv("OPENSEARCH_URL", "https://localhost:9200")
		t.Setenv("OPENSEARCH_USERNAME", "admin")
		t.Setenv("OPENSEARCH_PASSWORD", "secret")

		desc, err := FromEnvironment("")
		require.NoError(t, err)
		assert.Equal(t, DefaultClusterName, desc.Name)
		assert.Equal(t, "https://localhost:9200", desc.URL)
		assert.False(t, desc.InsecureSkipTLSVerify)

		variant, err := desc.Auth.Variant()
		require.NoError(t, err)
		assert.Equal(t, AuthBasic, variant)
	})

	t.Run("ssl verify toggle", func(t *testing.T) {
		clearClusterEnv(t)
		t.Setenv("OPENSEARCH_URL", "https://localhost:9200")
		t.Setenv("OPENSEARCH_USERNAME", "admin")
		t.Setenv("OPENSEARCH_PASSWORD", "secret")
		t.Setenv("OPENSEARCH_SSL_VERIFY", "false")

		desc, err := FromEnvironment("")
		require.NoError(t, err)
		assert.True(t, desc.InsecureSkipTLSVerify)
	})

	t.Run("cli profile fills in", func(t *testing.T) {
		clearClusterEnv(t)
		t.Setenv("OPENSEARCH_URL", "https://localhost:9200")

		desc, err := FromEnvironment("staging")
		require.NoError(t, err)
		assert.Equal(t, "staging", desc.Auth.Profile)

		variant, err := desc.Auth.Variant()
		require.NoError(t, err)
		assert.Equal(t, AuthAWSCredentials, variant)
	})

	t.Run("environment profile wins over cli profile", func(t *testing.T) {
		clearClusterEnv(t)
		t.Setenv("OPENSEARCH_URL", "https://localhost:9200")
		t.Setenv("AWS_PROFILE", "from-env")

		desc, err := FromEnvironment("from-cli")
		require.NoError(t, err)
		assert.Equal(t, "from-env", desc.Auth.Profile)
	})

	t.Run("serverless flag", func(t *testing.T) {
		clearClusterEnv(t)
		t.Setenv("OPENSEARCH_URL", "https://abc.us-east-1.aoss.amazonaws.com")
		t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "key")
		t.Setenv("AWS_OPENSEARCH_SERVERLESS", "true")

		desc, err := FromEnvironment("")
		require.NoError(t, err)
		assert.True(t, desc.Auth.Serverless)
	})

	t.Run("incomplete environment fails at load", func(t *testing.T) {
		clearClusterEnv(t)
		t.Setenv("OPENSEARCH_URL", "https://localhost:9200")

		_, err := FromEnvironment("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfigInvalid))
	})

	t.Run("missing url fails at load", func(t *testing.T) {
		clearClusterEnv(t)
		t.Setenv("OPENSEARCH_USERNAME", "admin")
		t.Setenv("OPENSEARCH_PASSWORD", "secret")

		_, err := FromEnvironment("")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfigInvalid))
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clusters.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadClustersFromYAML(t *testing.T) {
	t.Run("two clusters with distinct auth", func(t *testing.T) {
		path := writeConfigFile(t, `
version: "1.0"
description: test clusters
clusters:
  logs:
    opensearch_url: https://logs.example.com:9200
    opensearch_username: admin
    opensearch_password: secret
  metrics:
    opensearch_url: https://metrics.example.com:9200
    iam_arn: arn:aws:iam::123456789012:role/search
    aws_region: eu-west-1
`)

		descriptors, err := LoadClustersFromYAML(path, "")
		require.NoError(t, err)
		require.Len(t, descriptors, 2)

		logs := descriptors["logs"]
		assert.Equal(t, "logs", logs.Name)
		variant, err := logs.Auth.Variant()
		require.NoError(t, err)
		assert.Equal(t, AuthBasic, variant)

		metrics := descriptors["metrics"]
		assert.Equal(t, "eu-west-1", metrics.Auth.Region)
		variant, err = metrics.Auth.Variant()
		require.NoError(t, err)
		assert.Equal(t, AuthIAMRole, variant)
	})

	t.Run("cli profile fills in but never overrides", func(t *testing.T) {
		path := writeConfigFile(t, `
clusters:
  own-profile:
    opensearch_url: https://a.example.com:9200
    profile: pinned
  no-profile:
    opensearch_url: https://b.example.com:9200
    profile: ""
`)

		descriptors, err := LoadClustersFromYAML(path, "fallback")
		require.NoError(t, err)
		assert.Equal(t, "pinned", descriptors["own-profile"].Auth.Profile)
		assert.Equal(t, "fallback", descriptors["no-profile"].Auth.Profile)
	})

	t.Run("missing url fails the load", func(t *testing.T) {
		path := writeConfigFile(t, `
clusters:
  broken:
    opensearch_username: admin
    opensearch_password: secret
`)

		_, err := LoadClustersFromYAML(path, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfigInvalid))
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("no clusters declared fails the load", func(t *testing.T) {
		path := writeConfigFile(t, `version: "1.0"`)

		_, err := LoadClustersFromYAML(path, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfigInvalid))
	})

	t.Run("unreadable file fails the load", func(t *testing.T) {
		_, err := LoadClustersFromYAML(filepath.Join(t.TempDir(), "missing.yml"), "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfigInvalid))
	})

	t.Run("malformed yaml fails the load", func(t *testing.T) {
		path := writeConfigFile(t, "clusters: [not a map")

		_, err := LoadClustersFromYAML(path, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfigInvalid))
	})
}

func TestLoadDescriptors(t *testing.T) {
	t.Run("multi mode with config file", func(t *testing.T) {
		path := writeConfigFile(t, `
clusters:
  logs:
    opensearch_url: https://logs.example.com:9200
    opensearch_username: admin
    opensearch_password: secret
`)

		descriptors, mode, err := LoadDescriptors(ModeMulti, path, "", discardLogger())
		require.NoError(t, err)
		assert.Equal(t, ModeMulti, mode)
		assert.Len(t, descriptors, 1)
	})

	t.Run("multi mode without config falls back to single", func(t *testing.T) {
		clearClusterEnv(t)
		t.Setenv("OPENSEARCH_URL", "https://localhost:9200")
		t.Setenv("OPENSEARCH_USERNAME", "admin")
		t.Setenv("OPENSEARCH_PASSWORD", "secret")

		descriptors, mode, err := LoadDescriptors(ModeMulti, "", "", discardLogger())
		require.NoError(t, err)
		assert.Equal(t, ModeSingle, mode)
		require.Len(t, descriptors, 1)
		_, ok := descriptors[DefaultClusterName]
		assert.True(t, ok)
	})

	t.Run("single mode reads the environment", func(t *testing.T) {
		clearClusterEnv(t)
		t.Setenv("OPENSEARCH_URL", "https://localhost:9200")
		t.Setenv("OPENSEARCH_USERNAME", "admin")
		t.Setenv("OPENSEARCH_PASSWORD", "secret")

		descriptors, mode, err := LoadDescriptors(ModeSingle, "", "", discardLogger())
		require.NoError(t, err)
		assert.Equal(t, ModeSingle, mode)
		assert.Len(t, descriptors, 1)
	})
}
