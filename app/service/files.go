package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/vibast-solutions/ms-go-blog/app/entity"
	"github.com/vibast-solutions/ms-go-blog/app/repository"
	sc "github.com/vibast-solutions/ms-go-blog/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// FilesService stores avatar objects in an S3-compatible bucket and tracks
// them in the public_files table.
type FilesService struct {
	fileRepo *repository.PublicFileRepository
	cfg      *sc.Config
}

func NewFilesService(fileRepo *repository.PublicFileRepository, cfg *sc.Config) *FilesService {
	return &FilesService{fileRepo: fileRepo, cfg: cfg}
}

func storageKey(filename string) string {
	return fmt.Sprintf("avatars/%v-%s", uuid.New(), path.Base(filename))
}

func (s *FilesService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.S3AccessKey,
			s.cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return client, nil
}

// UploadPublicFile streams the body to the bucket and records the resulting
// object. The body is never buffered fully in memory.
func (s *FilesService) UploadPublicFile(ctx context.Context, body io.Reader, size int64, filename string) (*entity.PublicFile, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.cfg.S3Bucket
	key := storageKey(filename)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          body,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, err
	}

	file := &entity.PublicFile{
		Key: key,
		URL: s.publicURL(key),
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}

	return file, nil
}

// DeletePublicFile removes the stored object and its row. A missing row is
// not an error.
func (s *FilesService) DeletePublicFile(ctx context.Context, id uint64) error {
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if file == nil {
		return nil
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	bucket := s.cfg.S3Bucket
	_, err = deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &file.Key,
	})
	if err != nil {
		return err
	}

	return s.fileRepo.Delete(ctx, id)
}

func (s *FilesService) publicURL(key string) string {
	base := s.cfg.S3PublicURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.S3Bucket, s.cfg.S3Region)
	}
	return strings.TrimSuffix(base, "/") + "/" + key
}
