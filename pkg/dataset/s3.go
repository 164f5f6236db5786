package dataset

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of the S3 client used to fetch a dump.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source fetches a dump from an S3 compatible object store.
//
// Without a Client, one is built from the default AWS credential chain.
// LNRANK_S3_ENDPOINT points it at a compatible store (MinIO, R2) using
// path-style addressing, and LNRANK_S3_ACCESS_KEY / LNRANK_S3_SECRET_KEY
// override the credential chain with static keys.
type S3Source struct {
	Bucket string
	Key    string
	Client ObjectGetter
}

// Name implements Source.
func (s *S3Source) Name() string {
	return "s3://" + s.Bucket + "/" + s.Key
}

// Open implements Source.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		c, err := newS3Client(ctx)
		if err != nil {
			return nil, err
		}
		client = c
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.Name(), err)
	}
	return out.Body, nil
}

func newS3Client(ctx context.Context) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if key, secret := os.Getenv("LNRANK_S3_ACCESS_KEY"), os.Getenv("LNRANK_S3_SECRET_KEY"); key != "" && secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}
	if region := os.Getenv("LNRANK_S3_REGION"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := os.Getenv("LNRANK_S3_ENDPOINT")
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
