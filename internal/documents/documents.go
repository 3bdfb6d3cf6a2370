// Package documents stores customs paperwork (commercial invoices, packing
// lists) as PDFs in S3 and hands out short-lived presigned links for download.
package documents

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
)

// 20MB decoded. Matches the catalog image upload cap.
const maxDocumentBytes = 20 * 1024 * 1024

const pdfMagic = "%PDF"

// Service uploads documents and issues presigned download URLs.
type Service struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	keyPrefix string
	urlTTL    time.Duration
	logger    *slog.Logger
}

// Document describes one stored document.
type Document struct {
	Key         string    `json:"key"`
	ShopDomain  string    `json:"shop_domain"`
	Filename    string    `json:"filename"`
	Size        int       `json:"size"`
	URL         string    `json:"url,omitempty"`
	URLExpires  time.Time `json:"url_expires,omitzero"`
	ContentType string    `json:"content_type"`
}

// New builds a Service from the default AWS credential chain.
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Service, error) {
	if cfg.Bucket == "" {
		return nil, errors.Validation("S3 bucket is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &Service{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		urlTTL:    cfg.URLTTL,
		logger:    logger,
	}, nil
}

// Upload decodes a base64 PDF payload and stores it under the configured
// prefix. The object key embeds the shop domain and a random suffix so
// repeated uploads of the same filename never collide.
func (s *Service) Upload(ctx context.Context, shopDomain, filename, payload string) (*Document, error) {
	if shopDomain == "" {
		return nil, errors.Validation("shop domain is required")
	}
	if payload == "" {
		return nil, errors.Validation("document payload is required")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Validation("document payload is not valid base64")
	}
	if len(data) > maxDocumentBytes {
		return nil, errors.Validation("document exceeds the 20MB limit")
	}
	if !bytes.HasPrefix(data, []byte(pdfMagic)) {
		return nil, errors.Validation("document is not a PDF")
	}

	key := s.objectKey(shopDomain, filename)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
		Metadata: map[string]string{
			"shop-domain": shopDomain,
			"filename":    sanitizeFilename(filename),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "failed to store document")
	}

	s.logger.Info("Document uploaded", "shop", shopDomain, "key", key, "size", len(data))

	return &Document{
		Key:         key,
		ShopDomain:  shopDomain,
		Filename:    sanitizeFilename(filename),
		Size:        len(data),
		ContentType: "application/pdf",
	}, nil
}

// PresignDownload issues a short-lived GET URL for a stored document.
func (s *Service) PresignDownload(ctx context.Context, key string) (*Document, error) {
	if key == "" || !strings.HasPrefix(key, s.keyPrefix) {
		return nil, errors.NotFound("document not found")
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String("inline"),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "failed to presign document URL")
	}

	return &Document{
		Key:         key,
		URL:         req.URL,
		URLExpires:  time.Now().Add(s.urlTTL),
		ContentType: "application/pdf",
	}, nil
}

// objectKey builds the S3 key: <prefix><shop>/<uuid>-<filename>.
func (s *Service) objectKey(shopDomain, filename string) string {
	name := sanitizeFilename(filename)
	if name == "" {
		name = "document.pdf"
	}
	return s.keyPrefix + shopDomain + "/" + uuid.NewString() + "-" + name
}

// sanitizeFilename strips path separators and whitespace from client-supplied
// filenames before they end up in object keys or metadata.
func sanitizeFilename(filename string) string {
	name := strings.TrimSpace(filename)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	return name
}
