package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/phambaophuc/image-derivative/pkg/utils"
	"go.uber.org/zap"
)

type S3Gateway struct {
	client s3iface.S3API
	region string
	logger *zap.Logger
}

type S3Config struct {
	Endpoint     string
	AccessKey    string
	AccessSecret string
	Region       string
}

// NewS3Gateway creates a gateway bound to one region. Static credentials
// are optional; without them the default provider chain is used.
func NewS3Gateway(c S3Config, logger *zap.Logger) (*S3Gateway, error) {
	cfg := aws.NewConfig().WithRegion(c.Region)
	if c.Endpoint != "" {
		cfg = cfg.WithEndpoint(c.Endpoint).WithS3ForcePathStyle(true)
	}
	if c.AccessKey != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(c.AccessKey, c.AccessSecret, ""))
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 session: %w", err)
	}

	return NewS3GatewayWithClient(s3.New(sess), c.Region, logger), nil
}

func NewS3GatewayWithClient(client s3iface.S3API, region string, logger *zap.Logger) *S3Gateway {
	return &S3Gateway{
		client: client,
		region: region,
		logger: logger,
	}
}

func (g *S3Gateway) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	output, err := g.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, mapS3Error(err))
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (g *S3Gateway) Put(ctx context.Context, bucket, key string, data []byte, opts PutOptions) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ACL:         aws.String(s3.ObjectCannedACLPrivate),
		ContentType: aws.String(utils.ContentTypeFor(key, data, opts.ContentType)),
	}
	if opts.RedirectLocation != "" {
		input.WebsiteRedirectLocation = aws.String(opts.RedirectLocation)
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = aws.StringMap(opts.Metadata)
	}

	if _, err := g.client.PutObjectWithContext(ctx, input); err != nil {
		g.logger.Warn("Put object failed",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err))
		return "", fmt.Errorf("failed to upload %s/%s: %w", bucket, key, err)
	}

	g.logger.Debug("Put object success",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("content_type", aws.StringValue(input.ContentType)))

	return key, nil
}

func (g *S3Gateway) Head(ctx context.Context, bucket, key string) (*ObjectMeta, error) {
	output, err := g.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("head object %s/%s: %w", bucket, key, mapS3Error(err))
	}

	return &ObjectMeta{
		ContentType:      aws.StringValue(output.ContentType),
		ContentLength:    aws.Int64Value(output.ContentLength),
		RedirectLocation: aws.StringValue(output.WebsiteRedirectLocation),
		Metadata:         aws.StringValueMap(output.Metadata),
	}, nil
}

// CopyWithMetadataReplace rewrites the object's metadata in place. The body
// is not transferred through this process.
func (g *S3Gateway) CopyWithMetadataReplace(ctx context.Context, bucket, key string, metadata map[string]string) error {
	input := &s3.CopyObjectInput{
		Bucket:            aws.String(bucket),
		Key:               aws.String(key),
		CopySource:        aws.String(copySource(bucket, key)),
		MetadataDirective: aws.String(s3.MetadataDirectiveReplace),
		ACL:               aws.String(s3.ObjectCannedACLPrivate),
	}

	// REPLACE drops whatever is not resent, so the copy needs the current state.
	existing, err := g.Head(ctx, bucket, key)
	if err != nil {
		g.logger.Warn("Existing metadata unavailable",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("copy object %s/%s: %w", bucket, key, err)
	}
	if existing.ContentType != "" {
		input.ContentType = aws.String(existing.ContentType)
	}
	if existing.RedirectLocation != "" {
		input.WebsiteRedirectLocation = aws.String(existing.RedirectLocation)
	}
	input.Metadata = aws.StringMap(MergeMetadata(existing.Metadata, metadata))

	if _, err := g.client.CopyObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("copy object %s/%s: %w", bucket, key, mapS3Error(err))
	}

	return nil
}

func (g *S3Gateway) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if _, err := g.client.ListBucketsWithContext(ctx, &s3.ListBucketsInput{}); err != nil {
		status["s3_"+g.region] = "unhealthy: " + err.Error()
	} else {
		status["s3_"+g.region] = "healthy"
	}

	return status
}

func copySource(bucket, key string) string {
	return (&url.URL{Path: bucket + "/" + key}).EscapedPath()
}

func mapS3Error(err error) error {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound": // HEAD responses carry no body, only "NotFound"
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	return err
}
