package rosepress

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Store keeps uploads in an S3 (or MinIO) bucket.
type S3Store struct {
	client *s3.S3
	bucket string
}

// NewS3Store creates an S3-backed FileStore from the storage settings in cfg.
func NewS3Store(cfg Config) (*S3Store, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKeyID, cfg.S3SecretKey, "")
	}
	// MinIO-style endpoints need path-style addressing.
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("create AWS session: %w", err)
	}
	return &S3Store{client: s3.New(sess), bucket: cfg.S3Bucket}, nil
}

func (st *S3Store) Put(key string, data []byte, contentType string) (string, error) {
	_, err := st.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(st.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return st.publicURL(key), nil
}

func (st *S3Store) Remove(publicURL string) error {
	key := lastURLSegment(publicURL)
	if key == "" {
		return nil
	}
	_, err := st.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(st.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete from s3: %w", err)
	}
	return nil
}

func (st *S3Store) publicURL(key string) string {
	endpoint := aws.StringValue(st.client.Config.Endpoint)
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("https://%s/%s/%s", endpoint, st.bucket, key)
	}
	region := aws.StringValue(st.client.Config.Region)
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", st.bucket, region, key)
}
