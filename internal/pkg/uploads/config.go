package uploads

import (
	"strings"

	"github.com/SurplusYard/SurplusYard/internal/pkg/env"
)

// Config holds the S3 settings for presigned listing-image uploads.
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	EndpointURL     string
	PublicBaseURL   string
}

// ConfigFromEnv loads the upload configuration from S3_* settings.
func ConfigFromEnv() *Config {
	return &Config{
		Region:          env.GetEnv("S3_REGION", "eu-west-2"),
		Bucket:          strings.TrimSpace(env.GetEnv("S3_BUCKET", "")),
		AccessKeyID:     strings.TrimSpace(env.GetEnv("S3_ACCESS_KEY_ID", "")),
		SecretAccessKey: strings.TrimSpace(env.GetEnv("S3_SECRET_ACCESS_KEY", "")),
		EndpointURL:     strings.TrimSpace(env.GetEnv("S3_ENDPOINT_URL", "")),
		PublicBaseURL:   strings.TrimRight(strings.TrimSpace(env.GetEnv("S3_PUBLIC_BASE_URL", "")), "/"),
	}
}

// IsEnabled reports whether enough settings are present to presign uploads.
func (c *Config) IsEnabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}
