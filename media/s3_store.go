package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Storage.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Options struct {
	Bucket        string
	Region        string
	BaseEndpoint  string // R2 / MinIO endpoint, empty for AWS
	AccessKeyID   string
	SecretKey     string
	PublicBaseURL string // public URL objects are reachable under
	SubDirs       map[AssetType]string
}

// S3Storage implements the Store interface on an S3-compatible bucket
// (AWS S3, Cloudflare R2, MinIO).
type S3Storage struct {
	client    S3API
	bucket    string
	publicURL string
	subDirMap map[AssetType]string
}

// NewS3Storage builds an S3 client from opts and wraps it in a Store.
func NewS3Storage(ctx context.Context, opts S3Options) (*S3Storage, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := opts.PublicBaseURL
	if publicURL == "" {
		if opts.BaseEndpoint != "" {
			publicURL = strings.TrimSuffix(opts.BaseEndpoint, "/") + "/" + opts.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
		}
	}

	slog.Info("initialized S3 media storage", "bucket", opts.Bucket, "endpoint", opts.BaseEndpoint)
	return NewS3StorageWithClient(client, opts.Bucket, publicURL, opts.SubDirs), nil
}

// NewS3StorageWithClient wraps an existing client.
func NewS3StorageWithClient(client S3API, bucket, publicURL string, subDirs map[AssetType]string) *S3Storage {
	return &S3Storage{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		subDirMap: subDirs,
	}
}

func (s *S3Storage) key(assetType AssetType, filename string) (string, error) {
	subDir, ok := s.subDirMap[assetType]
	if !ok {
		return "", fmt.Errorf("asset type '%s' is not configured", assetType)
	}
	return path.Join(subDir, filename), nil
}

func (s *S3Storage) Save(ctx context.Context, assetType AssetType, filename, contentType string, data io.Reader) (string, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("invalid filename '%s' for S3Storage.Save", filename)
	}
	key, err := s.key(assetType, filename)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   data,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	obj, err := s.client.PutObject(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload '%s' to bucket %s: %w", key, s.bucket, err)
	}
	slog.Debug("uploaded asset to bucket", "key", key, "etag", aws.ToString(obj.ETag))
	return key, nil
}

func (s *S3Storage) Open(ctx context.Context, relativePath string) (io.ReadCloser, *ObjectInfo, error) {
	res, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(relativePath),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil, fmt.Errorf("asset '%s': %w", relativePath, ErrObjectNotFound)
		}
		return nil, nil, fmt.Errorf("failed to get '%s' from bucket %s: %w", relativePath, s.bucket, err)
	}

	info := &ObjectInfo{
		Size:        aws.ToInt64(res.ContentLength),
		ModTime:     aws.ToTime(res.LastModified),
		ContentType: aws.ToString(res.ContentType),
	}
	if info.ModTime.IsZero() {
		info.ModTime = time.Now()
	}
	return res.Body, info, nil
}

func (s *S3Storage) Delete(ctx context.Context, relativePath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(relativePath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete '%s' from bucket %s: %w", relativePath, s.bucket, err)
	}
	return nil
}

func (s *S3Storage) URL(relativePath string) string {
	return CleanURL(s.publicURL + "/" + strings.TrimPrefix(relativePath, "/"))
}

// CleanURL escapes spaces and normalizes urlStr, returning it unchanged when
// it does not parse.
func CleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return parsedURL.String()
}
