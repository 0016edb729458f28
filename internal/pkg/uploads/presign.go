package uploads

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Client issues presigned PUT URLs so image bytes go straight to S3 instead
// of through the app.
type Client struct {
	presigner *s3.PresignClient
	config    *Config
}

// NewClient creates an uploads client, or an error when uploads are not
// configured.
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("S3 uploads are disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	return &Client{
		presigner: s3.NewPresignClient(s3Client),
		config:    cfg,
	}, nil
}

// BuildObjectKey namespaces an upload under the seller and randomizes the
// name, keeping only the original extension.
func BuildObjectKey(sellerID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("uploads/%d/%s%s", sellerID, uuid.NewString(), ext)
}

// PresignPut returns a presigned PUT URL for key plus the public URL the
// object will be served from.
func (c *Client) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, string, error) {
	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", "", fmt.Errorf("presign upload for %s: %w", key, err)
	}

	publicURL := c.config.PublicBaseURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.config.Bucket, c.config.Region)
	}
	return req.URL, publicURL + "/" + key, nil
}
