package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"heresthething/backend/internal/config"
	"heresthething/backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	imageKeyPrefix  = "img/"
	manifestKey     = "data/local-cards.json"
	imageContent    = "image/png"
	manifestContent = "application/json"
)

// R2Client wraps the S3-compatible object storage bucket holding card images
// and the manifest snapshot.
type R2Client struct {
	bucket         string
	endpoint       string
	publicEndpoint string
	client         *s3.Client
}

// NewR2 creates r2.
func NewR2(cfg config.R2Config) (*R2Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("R2_BUCKET is required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	endpoint := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	publicEndpoint := normalizeEndpoint(cfg.PublicEndpoint, cfg.UseSSL)
	if publicEndpoint == "" {
		publicEndpoint = endpoint
	}

	options := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if endpoint != "" {
		options.BaseEndpoint = aws.String(endpoint)
	}

	return &R2Client{
		bucket:         cfg.Bucket,
		endpoint:       endpoint,
		publicEndpoint: publicEndpoint,
		client:         s3.New(options),
	}, nil
}

// UploadImage stores one card image under the conventional key and returns
// its public URL.
func (r *R2Client) UploadImage(ctx context.Context, slug string, body io.Reader, size int64) (string, error) {
	if strings.TrimSpace(slug) == "" {
		return "", fmt.Errorf("slug is required")
	}
	key := imageKeyPrefix + slug + ".png"
	return r.putObject(ctx, key, imageContent, body, size)
}

// UploadManifest writes the card manifest snapshot to the bucket and returns
// its public URL.
func (r *R2Client) UploadManifest(ctx context.Context, cardList []models.AdviceCard) (string, error) {
	payload, err := json.MarshalIndent(cardList, "", "\t")
	if err != nil {
		return "", err
	}
	payload = append(payload, '\n')
	return r.putObject(ctx, manifestKey, manifestContent, bytes.NewReader(payload), int64(len(payload)))
}

// putObject handles put object.
func (r *R2Client) putObject(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	var readSeeker io.ReadSeeker
	if rs, ok := body.(io.ReadSeeker); ok {
		readSeeker = rs
	} else {
		data, err := io.ReadAll(body)
		if err != nil {
			return "", err
		}
		readSeeker = bytes.NewReader(data)
		if size <= 0 {
			size = int64(len(data))
		}
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        readSeeker,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := r.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return r.publicURLForKey(key), nil
}

// publicURLForKey handles public u r l for key.
func (r *R2Client) publicURLForKey(key string) string {
	if r.publicEndpoint == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", r.bucket, key)
	}

	endpoint := r.publicEndpoint
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "https://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Sprintf("%s/%s/%s", endpoint, r.bucket, key)
	}
	u.Path = path.Join(u.Path, r.bucket, key)
	return u.String()
}

// normalizeEndpoint normalizes endpoint.
func normalizeEndpoint(endpoint string, useSSL bool) string {
	if endpoint == "" {
		return ""
	}
	if strings.HasPrefix(endpoint, "http") {
		return endpoint
	}
	scheme := "https"
	if !useSSL {
		scheme = "http"
	}
	return scheme + "://" + endpoint
}
