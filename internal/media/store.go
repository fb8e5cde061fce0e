package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/cineshelf/cineshelf/config"
	"github.com/cineshelf/cineshelf/internal/types"
)

// MaxUploadSize caps poster uploads at 10 MB.
const MaxUploadSize = 10 << 20

// Upload is a file received from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Store persists poster files and returns their public URL.
type Store interface {
	UploadPoster(ctx context.Context, upload Upload) (string, error)
}

// Ensure S3Store implements the Store interface
var _ Store = (*S3Store)(nil)

// s3PutAPI is the slice of the S3 client the store uses.
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	logger        *slog.Logger
	client        s3PutAPI
	bucket        string
	publicBaseURL string
}

// NewS3Store builds a store against any S3-compatible endpoint (AWS, MinIO)
// using static credentials from config.
func NewS3Store(ctx context.Context, cfg config.MediaConfig, logger *slog.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Store{
		logger:        logger,
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
	}, nil
}

// UploadPoster stores the file under a date-partitioned random key and
// returns its public URL. Only image content types are accepted.
func (s *S3Store) UploadPoster(ctx context.Context, upload Upload) (string, error) {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return "", fmt.Errorf("unsupported poster content type %q: %w", upload.ContentType, types.ErrValidation)
	}
	if upload.Size > MaxUploadSize {
		return "", fmt.Errorf("poster larger than %d bytes: %w", MaxUploadSize, types.ErrValidation)
	}

	key := storageKey(upload.Filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          upload.Body,
		ContentType:   aws.String(upload.ContentType),
		ContentLength: aws.Int64(upload.Size),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Poster upload failed", slog.Any("error", err), slog.String("key", key))
		return "", fmt.Errorf("uploading poster: %w", err)
	}

	return s.publicBaseURL + "/" + key, nil
}

func storageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("posters/%d/%02d/%s%s", d.Year(), int(d.Month()), uuid.New(), strings.ToLower(filepath.Ext(filename)))
}
