package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"rrstudy/internal/export"
	"rrstudy/internal/models"
	"rrstudy/internal/report"
	"rrstudy/internal/storage"
)

// objectPutter is the part of the S3 client the service uses
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ExportConfig selects where exports are delivered
type ExportConfig struct {
	Dir       string
	S3Bucket  string
	S3Prefix  string
	AWSRegion string
	MailTo    string
}

// ExportService renders completed-problem logs as CSV and delivers them to
// the export directory, an S3 bucket and the researcher's inbox
type ExportService struct {
	store  storage.Store
	email  *EmailService
	s3     objectPutter
	config ExportConfig
	now    func() time.Time
	debug  bool
}

// NewExportService creates a new export service. The S3 client is only
// created when a bucket is configured.
func NewExportService(ctx context.Context, store storage.Store, email *EmailService, cfg ExportConfig, debug bool) (*ExportService, error) {
	s := &ExportService{store: store, email: email, config: cfg, now: time.Now, debug: debug}

	if cfg.S3Bucket != "" {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s.s3 = s3.NewFromConfig(awsCfg)
		log.Printf("Export uploads enabled: bucket=%s", cfg.S3Bucket)
	}
	return s, nil
}

// ExportResult describes one delivered export
type ExportResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	S3Key    string `json:"s3_key,omitempty"`
	Emailed  bool   `json:"emailed"`
	Data     []byte `json:"-"`
}

// Render produces the CSV for a log without delivering it. ok is false when
// the log is empty.
func (s *ExportService) Render(kind export.Kind, completed []models.ProblemRunRecord) (ExportResult, bool, error) {
	data, ok, err := export.Generate(kind, completed)
	if err != nil || !ok {
		return ExportResult{}, ok, err
	}
	return ExportResult{Filename: export.Filename(kind, s.now()), Data: data}, true, nil
}

// Deliver renders the log and sends it to every configured destination
func (s *ExportService) Deliver(ctx context.Context, kind export.Kind, completed []models.ProblemRunRecord) (ExportResult, bool, error) {
	result, ok, err := s.Render(kind, completed)
	if err != nil || !ok {
		if !ok && err == nil {
			log.Printf("Warning: no data to export")
		}
		return result, ok, err
	}

	if s.config.Dir != "" {
		path, err := s.writeFile(result.Filename, result.Data)
		if err != nil {
			return result, true, err
		}
		result.Path = path
	}

	if s.s3 != nil {
		key, err := s.upload(ctx, result.Filename, result.Data)
		if err != nil {
			return result, true, err
		}
		result.S3Key = key
	}

	if s.email != nil && s.email.IsEnabled() && s.config.MailTo != "" {
		summary, _ := report.Summarize(completed)
		if err := s.email.SendExport(ctx, s.config.MailTo, result.Filename, result.Data, summary.Headline()); err != nil {
			return result, true, err
		}
		result.Emailed = true
	}
	return result, true, nil
}

// DeliverSession exports a stored session. found is false when the store has
// no such session.
func (s *ExportService) DeliverSession(ctx context.Context, kind export.Kind, sessionID string) (result ExportResult, found bool, err error) {
	saved, found, err := s.store.LoadProgress(ctx, sessionID)
	if err != nil || !found {
		return ExportResult{}, found, err
	}
	result, _, err = s.Deliver(ctx, kind, saved.Completed)
	return result, true, err
}

func (s *ExportService) writeFile(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.config.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(s.config.Dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if s.debug {
		log.Printf("[DEBUG] Wrote export %s (%d bytes)", path, len(data))
	}
	return path, nil
}

func (s *ExportService) upload(ctx context.Context, filename string, data []byte) (string, error) {
	key := s.config.S3Prefix + filename
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put failed: %w", err)
	}
	log.Printf("Uploaded export to s3://%s/%s", s.config.S3Bucket, key)
	return key, nil
}
