package coupon

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// ObjectGetter is the part of the S3 client the loader uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Loader struct {
	client ObjectGetter
	bucket string
	logger zerolog.Logger
}

// NewS3Loader reads coupon files from bucket using the default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("coupon S3 source configured")

	return NewS3LoaderWithClient(s3.NewFromConfig(awsCfg), bucket, logger), nil
}

// NewS3LoaderWithClient wraps an existing client.
func NewS3LoaderWithClient(client ObjectGetter, bucket string, logger zerolog.Logger) Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		logger: logger.With().Str("component", "coupon-s3-loader").Str("bucket", bucket).Logger(),
	}
}

// Load fetches and decodes the object stored under key.
func (l *s3Loader) Load(ctx context.Context, key string) (Set, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", l.bucket, key, err)
	}
	if out.Body == nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: empty body", l.bucket, key)
	}
	defer out.Body.Close()

	set, err := decodeSet(ctx, out.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid coupon object s3://%s/%s: %w", l.bucket, key, err)
	}

	l.logger.Info().
		Str("key", key).
		Int("coupons", set.Size()).
		Msg("coupon object loaded")

	return set, nil
}

// fallbackLoader prefers the remote copy of a file and reads the local one
// when the remote read fails or is switched off.
type fallbackLoader struct {
	remote  Loader
	local   Loader
	prefix  string
	enabled bool
	logger  zerolog.Logger
}

// NewFallbackLoader reads prefix/filePath through remote when enabled and
// remote is non-nil, and filePath through local otherwise or on failure.
func NewFallbackLoader(remote, local Loader, prefix string, enabled bool, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		remote:  remote,
		local:   local,
		prefix:  prefix,
		enabled: enabled && remote != nil,
		logger:  logger.With().Str("component", "coupon-fallback-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, filePath string) (Set, error) {
	if l.enabled {
		key := path.Join(l.prefix, strings.TrimPrefix(filePath, "./"))

		set, err := l.remote.Load(ctx, key)
		if err == nil {
			return set, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		l.logger.Warn().
			Err(err).
			Str("key", key).
			Str("file", filePath).
			Msg("remote coupon file unavailable, reading local copy")
	}

	return l.local.Load(ctx, filePath)
}
