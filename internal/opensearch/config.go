package opensearch

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Mode selects how clusters are configured and how tools are exposed.
type Mode string

const (
	// ModeSingle serves one cluster configured through environment variables.
	ModeSingle Mode = "single"
	// ModeMulti serves N clusters configured through a YAML document; every
	// tool call must name its target cluster.
	ModeMulti Mode = "multi"
)

// DefaultClusterName is the descriptor name used in single-cluster mode.
const DefaultClusterName = "default"

// AuthVariant identifies which authentication strategy a descriptor resolved to.
type AuthVariant int

const (
	// AuthIAMRole signs requests with temporary credentials from an STS
	// role assumption.
	AuthIAMRole AuthVariant = iota
	// AuthBasic uses HTTP basic authentication.
	AuthBasic
	// AuthAWSCredentials signs requests with credentials from explicit
	// access keys or a named AWS profile.
	AuthAWSCredentials
)

// String returns a human-readable variant name for logging.
func (v AuthVariant) String() string {
	switch v {
	case AuthIAMRole:
		return "iam-role"
	case AuthBasic:
		return "basic"
	case AuthAWSCredentials:
		return "aws-credentials"
	default:
		return "unknown"
	}
}

// AuthSpec holds the authentication fields of one cluster descriptor. At most
// one variant is used per descriptor; when more than one is complete the
// resolution priority is IAM role, then basic auth, then raw AWS credentials.
// That order is a documented contract callers may rely on.
type AuthSpec struct {
	// IAM role assumption.
	IAMRoleARN string

	// Basic authentication.
	Username string
	Password string

	// Raw AWS credentials. Complete when both keys are set, or when a named
	// profile supplies them.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Shared by the AWS variants.
	Region  string
	Profile string

	// Serverless marks an OpenSearch Serverless collection. It modifies the
	// signing service name (aoss instead of es) and disables version gating;
	// it is not a competing credential variant.
	Serverless bool
}

// Variant resolves the active authentication variant according to the fixed
// priority order. It returns ErrConfigInvalid when no variant is complete.
func (a AuthSpec) Variant() (AuthVariant, error) {
	switch {
	case a.IAMRoleARN != "":
		return AuthIAMRole, nil
	case a.Username != "" && a.Password != "":
		return AuthBasic, nil
	case a.AccessKeyID != "" && a.SecretAccessKey != "":
		return AuthAWSCredentials, nil
	case a.Profile != "":
		return AuthAWSCredentials, nil
	default:
		return 0, &ConfigError{Reason: "no complete authentication variant: set an IAM role ARN, a username/password pair, AWS access keys, or an AWS profile"}
	}
}

// ClusterDescriptor identifies one OpenSearch endpoint. Descriptors are
// immutable once loaded; one exists per configured cluster.
type ClusterDescriptor struct {
	// Name is the unique cluster key; "default" in single mode.
	Name string
	// URL is the OpenSearch endpoint, including scheme.
	URL string
	// Auth holds the authentication configuration.
	Auth AuthSpec
	// InsecureSkipTLSVerify disables certificate verification
	// (OPENSEARCH_SSL_VERIFY=false in the environment).
	InsecureSkipTLSVerify bool
}

// Validate checks the descriptor for load-time errors: a missing URL or an
// incomplete authentication spec. Descriptors must fail here, not at first call.
func (d ClusterDescriptor) Validate() error {
	if d.URL == "" {
		return &ConfigError{Cluster: d.Name, Reason: "opensearch_url is required"}
	}
	if _, err := d.Auth.Variant(); err != nil {
		return &ConfigError{Cluster: d.Name, Reason: "authentication incomplete", Err: err}
	}
	return nil
}

// envConfig mirrors the environment variables recognised in single-cluster
// mode. The AWS_* names match the standard SDK variables so ambient
// credentials become explicit descriptor fields.
type envConfig struct {
	URL             string `env:"OPENSEARCH_URL"`
	Username        string `env:"OPENSEARCH_USERNAME"`
	Password        string `env:"OPENSEARCH_PASSWORD"`
	SSLVerify       bool   `env:"OPENSEARCH_SSL_VERIFY" envDefault:"true"`
	IAMRoleARN      string `env:"AWS_IAM_ARN"`
	Region          string `env:"AWS_REGION"`
	Profile         string `env:"AWS_PROFILE"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `env:"AWS_SESSION_TOKEN"`
	Serverless      bool   `env:"AWS_OPENSEARCH_SERVERLESS"`
}

// FromEnvironment builds the single-mode cluster descriptor from environment
// variables. The profile argument is the CLI-supplied AWS profile and fills
// in when the environment does not set one. The returned descriptor is
// validated; an incomplete environment is a load-time failure.
func FromEnvironment(profile string) (ClusterDescriptor, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return ClusterDescriptor{}, &ConfigError{Cluster: DefaultClusterName, Reason: "parsing environment", Err: err}
	}
	if cfg.Profile == "" {
		cfg.Profile = profile
	}

	desc := ClusterDescriptor{
		Name: DefaultClusterName,
		URL:  cfg.URL,
		Auth: AuthSpec{
			IAMRoleARN:      cfg.IAMRoleARN,
			Username:        cfg.Username,
			Password:        cfg.Password,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			SessionToken:    cfg.SessionToken,
			Region:          cfg.Region,
			Profile:         cfg.Profile,
			Serverless:      cfg.Serverless,
		},
		InsecureSkipTLSVerify: !cfg.SSLVerify,
	}
	if err := desc.Validate(); err != nil {
		return ClusterDescriptor{}, err
	}
	return desc, nil
}

// yamlConfig is the multi-cluster configuration document:
//
//	version: "1.0"
//	description: ...
//	clusters:
//	  <name>:
//	    opensearch_url: https://...
//	    iam_arn: ...
//	    aws_region: ...
//	    opensearch_username: ...
//	    opensearch_password: ...
//	    profile: ...
//	    is_serverless: true|false
type yamlConfig struct {
	Version     string                 `yaml:"version"`
	Description string                 `yaml:"description"`
	Clusters    map[string]yamlCluster `yaml:"clusters"`
}

type yamlCluster struct {
	URL          string `yaml:"opensearch_url"`
	IAMRoleARN   string `yaml:"iam_arn"`
	Region       string `yaml:"aws_region"`
	Username     string `yaml:"opensearch_username"`
	Password     string `yaml:"opensearch_password"`
	Profile      string `yaml:"profile"`
	IsServerless bool   `yaml:"is_serverless"`
}

// LoadClustersFromYAML parses the multi-cluster configuration file and
// returns one validated descriptor per declared cluster. The profile argument
// fills in descriptors that do not set their own, never overriding an
// explicit value. A file that cannot be read or parsed, or that declares an
// invalid cluster, fails the load.
func LoadClustersFromYAML(path, profile string) (map[string]ClusterDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("reading config file %s", path), Err: err}
	}

	var cfg yamlConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("parsing config file %s", path), Err: err}
	}
	if len(cfg.Clusters) == 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("config file %s declares no clusters", path)}
	}

	descriptors := make(map[string]ClusterDescriptor, len(cfg.Clusters))
	for name, c := range cfg.Clusters {
		desc := ClusterDescriptor{
			Name: name,
			URL:  c.URL,
			Auth: AuthSpec{
				IAMRoleARN: c.IAMRoleARN,
				Username:   c.Username,
				Password:   c.Password,
				Region:     c.Region,
				Profile:    c.Profile,
				Serverless: c.IsServerless,
			},
		}
		if desc.Auth.Profile == "" {
			desc.Auth.Profile = profile
		}
		if err := desc.Validate(); err != nil {
			return nil, err
		}
		descriptors[name] = desc
	}
	return descriptors, nil
}

// LoadDescriptors resolves the cluster descriptors for the requested mode.
// In multi mode without a config file the server degrades to single-mode
// semantics using the ambient environment configuration; the effective mode
// is returned alongside the descriptors.
//
// The profile argument is the CLI-supplied AWS profile; it fills in
// descriptors that do not set their own, never overriding an explicit value.
func LoadDescriptors(mode Mode, configPath, profile string, logger *slog.Logger) (map[string]ClusterDescriptor, Mode, error) {
	if mode == ModeMulti && configPath != "" {
		descriptors, err := LoadClustersFromYAML(configPath, profile)
		if err != nil {
			return nil, mode, err
		}
		logger.Info("loaded cluster configuration", "path", configPath, "clusters", len(descriptors))
		return descriptors, ModeMulti, nil
	}

	if mode == ModeMulti {
		logger.Warn("multi mode selected without a config file, falling back to single-mode configuration from environment")
	}

	desc, err := FromEnvironment(profile)
	if err != nil {
		return nil, ModeSingle, err
	}
	return map[string]ClusterDescriptor{desc.Name: desc}, ModeSingle, nil
}
