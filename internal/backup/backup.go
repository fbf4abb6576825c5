package backup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"fieldops-backend/internal/config"
)

// Scheduler dumps the database with pg_dump and pushes the dump to an
// S3-compatible bucket (Cloudflare R2) on a fixed interval.
type Scheduler struct {
	backup   config.BackupConfig
	database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
	}
	interval time.Duration
}

func NewScheduler(cfg *config.Config) *Scheduler {
	s := &Scheduler{
		backup:   cfg.Backup,
		interval: time.Duration(cfg.Backup.IntervalHours) * time.Hour,
	}
	s.database.Host = cfg.Database.Host
	s.database.Port = cfg.Database.Port
	s.database.User = cfg.Database.User
	s.database.Password = cfg.Database.Password
	s.database.Name = cfg.Database.Name
	if s.interval <= 0 {
		s.interval = 24 * time.Hour
	}
	return s
}

// Run blocks, performing one backup per interval. Call in a goroutine.
// Returns immediately when backups are not configured.
func (s *Scheduler) Run(ctx context.Context) {
	if !s.backup.Enabled() {
		log.Printf("[Backup] No bucket credentials configured, backups disabled")
		return
	}

	log.Printf("[Backup] Scheduled every %s to bucket %s", s.interval, s.backup.Bucket)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				log.Printf("[Backup] Failed: %v", err)
			}
		}
	}
}

// RunOnce dumps the database and uploads the dump.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Minute)
	defer cancel()

	dumpPath := filepath.Join(os.TempDir(), fmt.Sprintf("fieldops_%s.sql", time.Now().Format("20060102_150405")))
	defer os.Remove(dumpPath)

	if err := s.dump(ctx, dumpPath); err != nil {
		return fmt.Errorf("pg_dump: %w", err)
	}

	key := "base/" + filepath.Base(dumpPath)
	if err := s.upload(ctx, dumpPath, key); err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	log.Printf("[Backup] Uploaded %s", key)
	return nil
}

func (s *Scheduler) dump(ctx context.Context, outPath string) error {
	cmd := exec.CommandContext(ctx, "pg_dump",
		"-h", s.database.Host,
		"-p", fmt.Sprintf("%d", s.database.Port),
		"-U", s.database.User,
		"-d", s.database.Name,
		"--no-owner",
		"--clean",
		"-f", outPath,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+s.database.Password)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%v: %s", err, out)
	}
	return nil
}

func (s *Scheduler) upload(ctx context.Context, path, key string) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.backup.AccessKey,
			s.backup.SecretKey,
			"",
		)),
		awsconfig.WithRegion(s.backup.Region),
	)
	if err != nil {
		return err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.backup.Endpoint)
	})

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.backup.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	return err
}

// ListBackups returns the dump objects currently in the bucket, newest last.
func (s *Scheduler) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.backup.AccessKey,
			s.backup.SecretKey,
			"",
		)),
		awsconfig.WithRegion(s.backup.Region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.backup.Endpoint)
	})

	result, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.backup.Bucket),
		Prefix: aws.String("base/"),
	})
	if err != nil {
		return nil, err
	}

	backups := make([]BackupInfo, 0, len(result.Contents))
	for _, obj := range result.Contents {
		info := BackupInfo{Key: aws.ToString(obj.Key)}
		if obj.Size != nil {
			info.Size = *obj.Size
		}
		if obj.LastModified != nil {
			info.LastModified = *obj.LastModified
		}
		backups = append(backups, info)
	}
	return backups, nil
}

type BackupInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}
