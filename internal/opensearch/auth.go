package opensearch

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/opensearch-project/opensearch-go/v2/signer"
	requestsigner "github.com/opensearch-project/opensearch-go/v2/signer/awsv2"
)

// Signing service names for AWS-managed OpenSearch.
const (
	serviceOpenSearch           = "es"
	serviceOpenSearchServerless = "aoss"
)

// roleSessionName identifies this server in CloudTrail when assuming a role.
const roleSessionName = "opensearch-mcp-server"

// Credential is the opaque authentication capability produced by the
// resolver and consumed by the HTTP client layer. Exactly one of the basic
// fields or the Signer is populated.
type Credential struct {
	Variant AuthVariant

	// Basic authentication.
	Username string
	Password string

	// Signer signs requests with SigV4 for the AWS variants. It wraps a
	// refreshable credential provider: every request resolves current
	// credentials, so STS temporary credentials are renewed before expiry
	// rather than captured once at client construction.
	Signer signer.Signer
}

// ResolveCredential picks the descriptor's authentication variant and builds
// the corresponding capability. Variant priority is fixed: IAM role, then
// basic auth, then raw AWS credentials. Errors here are configuration or STS
// setup failures and surface at client construction time.
func ResolveCredential(ctx context.Context, desc ClusterDescriptor) (*Credential, error) {
	variant, err := desc.Auth.Variant()
	if err != nil {
		return nil, err
	}

	if variant == AuthBasic {
		return &Credential{
			Variant:  AuthBasic,
			Username: desc.Auth.Username,
			Password: desc.Auth.Password,
		}, nil
	}

	cfg, err := loadAWSConfig(ctx, desc.Auth)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration for cluster %q: %w", desc.Name, err)
	}

	switch variant {
	case AuthIAMRole:
		stsClient := sts.NewFromConfig(cfg)
		provider := stscreds.NewAssumeRoleProvider(stsClient, desc.Auth.IAMRoleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = roleSessionName
			})
		// The credentials cache refreshes the assumed-role credentials
		// before expiry; callers never see a stale token.
		cfg.Credentials = aws.NewCredentialsCache(provider)
	case AuthAWSCredentials:
		if desc.Auth.AccessKeyID != "" {
			cfg.Credentials = credentials.NewStaticCredentialsProvider(
				desc.Auth.AccessKeyID, desc.Auth.SecretAccessKey, desc.Auth.SessionToken)
		}
		// Otherwise the profile's provider chain stays in place; it is
		// already refreshable.
	}

	service := serviceOpenSearch
	if desc.Auth.Serverless {
		service = serviceOpenSearchServerless
	}

	sgn, err := requestsigner.NewSignerWithService(cfg, service)
	if err != nil {
		return nil, fmt.Errorf("creating request signer for cluster %q: %w", desc.Name, err)
	}
	return &Credential{Variant: variant, Signer: sgn}, nil
}

// loadAWSConfig loads the SDK configuration honoring the descriptor's
// profile, then overrides the SDK's region with the resolved one.
func loadAWSConfig(ctx context.Context, auth AuthSpec) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if auth.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(auth.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	region, err := resolveRegion(ctx, auth, cfg.Region)
	if err != nil {
		return aws.Config{}, err
	}
	cfg.Region = region
	return cfg, nil
}

// resolveRegion applies the region fallback chain: the explicit descriptor
// field wins, then the named profile's configured region, and only then
// whatever the SDK resolved from the ambient environment. The SDK alone
// cannot be used here because its default order consults AWS_REGION before
// the shared config file, letting the environment shadow a profile region.
func resolveRegion(ctx context.Context, auth AuthSpec, ambient string) (string, error) {
	if auth.Region != "" {
		return auth.Region, nil
	}
	if auth.Profile != "" {
		// LoadSharedConfigProfile does not read AWS_CONFIG_FILE on its own;
		// that resolution lives in LoadDefaultConfig's env handling.
		shared, err := awsconfig.LoadSharedConfigProfile(ctx, auth.Profile,
			func(o *awsconfig.LoadSharedConfigOptions) {
				if path := os.Getenv("AWS_CONFIG_FILE"); path != "" {
					o.ConfigFiles = []string{path}
				}
				if path := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); path != "" {
					o.CredentialsFiles = []string{path}
				}
			})
		if err == nil && shared.Region != "" {
			return shared.Region, nil
		}
	}
	if ambient != "" {
		return ambient, nil
	}
	return "", fmt.Errorf("AWS region not found; set aws_region in the cluster config or configure a region for the profile")
}
