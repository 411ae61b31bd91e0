package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	appconfig "github.com/wellnessbuddy/wellness-platform/internal/config"
)

// LoadAWSConfig centralizes AWS SDK initialization so the API and CLI share
// the same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// AWSClients bundles the service clients the platform uses.
type AWSClients struct {
	S3      *s3.Client
	SES     *sesv2.Client
	Bedrock *bedrockruntime.Client
}

// NewAWSClients builds service clients, pointing each at AWS_ENDPOINT_OVERRIDE
// when set. S3 switches to path-style addressing for LocalStack.
func NewAWSClients(awsCfg aws.Config, cfg *appconfig.Config) AWSClients {
	endpoint := strings.TrimSpace(cfg.AWSEndpointOverride)
	return AWSClients{
		S3: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
				o.UsePathStyle = true
			}
		}),
		SES: sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}),
		Bedrock: bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}),
	}
}
