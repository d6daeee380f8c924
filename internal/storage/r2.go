// Package storage is the gateway to Cloudflare R2. R2 speaks the S3 API,
// so the gateway is a thin layer over the AWS SDK with a custom endpoint.
//
// Storage is optional infrastructure: a gateway built without credentials
// answers every call with common.ErrStorageUnavailable and the pipeline
// degrades to local-only results instead of aborting.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/alexai/cardgen/internal/card"
	"github.com/alexai/cardgen/internal/common"
	"github.com/alexai/cardgen/internal/config"
	"github.com/alexai/cardgen/internal/logging"
)

const cacheControl = "public, max-age=31536000"

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectAPI is the slice of the S3 client the gateway uses. *s3.Client
// satisfies it; tests substitute an in-memory fake.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Gateway struct {
	api       ObjectAPI
	bucket    string
	publicURL string
	logger    logging.Logger
}

// New builds the R2 gateway. When the credential triple is incomplete or
// the SDK cannot be configured, the gateway comes up unconfigured rather
// than failing startup.
func New(ctx context.Context, cfg config.Config, logger logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Discard()
	}

	g := &Gateway{
		bucket:    cfg.R2BucketName,
		publicURL: cfg.R2PublicURL,
		logger:    logger,
	}

	if !cfg.StorageConfigured() {
		logger.Warn(ctx, "R2 credentials absent, storing cards locally only")
		return g
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.R2AccessKeyID,
			cfg.R2SecretAccessKey,
			"",
		)))
	if err != nil {
		logger.Error(ctx, "R2 client init failed, storing cards locally only", "error", err)
		return g
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	g.api = newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return g
}

// NewWithAPI builds a gateway over an existing client. Used in tests.
func NewWithAPI(api ObjectAPI, bucket, publicURL string, logger logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gateway{api: api, bucket: bucket, publicURL: publicURL, logger: logger}
}

// Configured reports whether the gateway has a usable storage backend.
func (g *Gateway) Configured() bool {
	return g.api != nil
}

// ImageKey returns the object key the card image is stored under.
func ImageKey(cardID string) string {
	return "cards/" + cardID + ".jpg"
}

// MetadataKey returns the object key the card metadata is stored under.
func MetadataKey(cardID string) string {
	return "metadata/" + cardID + ".json"
}

// PutImage uploads the watermarked JPEG under cards/{id}.jpg and returns
// its public URL.
func (g *Gateway) PutImage(ctx context.Context, cardID string, data []byte) (string, error) {
	if g.api == nil {
		return "", common.ErrStorageUnavailable
	}

	key := ImageKey(cardID)
	_, err := g.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(g.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("image/jpeg"),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		g.logger.Error(ctx, "image upload failed", "card_id", cardID, "error", err)
		return "", fmt.Errorf("%w: %s", common.ErrStorageUnavailable, err)
	}

	url := g.publicImageURL(key)
	g.logger.Info(ctx, "card image uploaded", "card_id", cardID, "url", url)
	return url, nil
}

// PutMetadata uploads the metadata record as UTF-8 JSON under
// metadata/{id}.json and returns the key.
func (g *Gateway) PutMetadata(ctx context.Context, cardID string, meta *card.Metadata) (string, error) {
	if g.api == nil {
		return "", common.ErrStorageUnavailable
	}

	body, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	key := MetadataKey(cardID)
	_, err = g.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		g.logger.Error(ctx, "metadata upload failed", "card_id", cardID, "error", err)
		return "", fmt.Errorf("%w: %s", common.ErrStorageUnavailable, err)
	}
	return key, nil
}

// GetMetadata downloads and parses metadata/{id}.json. A missing object is
// reported as common.ErrCardNotFound.
func (g *Gateway) GetMetadata(ctx context.Context, cardID string) (*card.Metadata, error) {
	if g.api == nil {
		return nil, common.ErrStorageUnavailable
	}

	resp, err := g.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(MetadataKey(cardID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", common.ErrCardNotFound, cardID)
		}
		g.logger.Error(ctx, "metadata fetch failed", "card_id", cardID, "error", err)
		return nil, fmt.Errorf("%w: %s", common.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrStorageUnavailable, err)
	}

	var meta card.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", cardID, err)
	}
	return &meta, nil
}

func (g *Gateway) publicImageURL(key string) string {
	if g.publicURL != "" {
		return g.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s", g.bucket, key)
}
