package adjustments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"
)

const objectExt = ".json"

// s3API is the part of *s3.Client the store uses
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options configures an S3Store
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string // S3-compatible endpoint such as DigitalOcean Spaces, empty for AWS
	AccessKey string // empty uses the default credential chain
	SecretKey string
}

// S3Store keeps one object per member at <prefix>guild_<gid>/<uid>.json
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Store builds an S3 client from opts
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, opts.Bucket, opts.Prefix), nil
}

func newS3Store(client s3API, bucket, prefix string) *S3Store {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) guildPrefix(guildID int64) string {
	return s.prefix + guildDir(guildID) + "/"
}

func (s *S3Store) key(guildID, discordID int64) string {
	return fmt.Sprintf("%s%d%s", s.guildPrefix(guildID), discordID, objectExt)
}

// Get returns the stored offset, 0 when missing or unreadable
func (s *S3Store) Get(ctx context.Context, guildID, discordID int64) int64 {
	key := s.key(guildID, discordID)
	logger := log.WithFields(log.Fields{"bucket": s.bucket, "key": key})

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if !errors.As(err, &noSuchKey) {
			logger.WithError(err).Warn("Failed to read adjustment object")
		}
		return 0
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		logger.WithError(err).Warn("Failed to read adjustment object")
		return 0
	}

	adjusted, err := decodeRecord(data)
	if err != nil {
		logger.WithError(err).Warn("Ignoring corrupt adjustment object")
		return 0
	}
	return adjusted
}

// Set overwrites the object
func (s *S3Store) Set(ctx context.Context, guildID, discordID, adjusted int64) error {
	data, err := encodeRecord(adjusted)
	if err != nil {
		return fmt.Errorf("failed to encode adjustment record: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(guildID, discordID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to write adjustment object: %w", err)
	}
	return nil
}

// List reads every object under the guild's prefix
func (s *S3Store) List(ctx context.Context, guildID int64) (map[int64]int64, error) {
	prefix := s.guildPrefix(guildID)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	out := make(map[int64]int64)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list adjustment objects: %w", err)
		}
		for _, object := range page.Contents {
			discordID, ok := memberIDFromName(path.Base(aws.ToString(object.Key)), objectExt)
			if !ok {
				continue
			}
			if adjusted := s.Get(ctx, guildID, discordID); adjusted != 0 {
				out[discordID] = adjusted
			}
		}
	}
	return out, nil
}
