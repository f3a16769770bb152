package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"lifeos/internal/common"
	sc "lifeos/internal/server/config"
)

// Seams for testing the presign flow without a live S3 endpoint.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

// ArchiveService hands out presigned URLs so a client can push a journal
// archive to S3-compatible storage (and pull it back) without the archive
// ever passing through this server.
type ArchiveService struct {
	config *sc.Config
}

func NewArchiveService(config *sc.Config) *ArchiveService {
	return &ArchiveService{config: config}
}

// ArchiveKey builds a date-bucketed object key for a user's archive upload.
func ArchiveKey(userID string) string {
	d := time.Now()
	return fmt.Sprintf("archives/%s/%d/%02d/%v", userID, d.Year(), int(d.Month()), uuid.New())
}

func keyOwnedBy(userID, key string) bool {
	return strings.HasPrefix(key, "archives/"+userID+"/")
}

func (s *ArchiveService) presignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// PresignUpload returns the object key and a presigned PUT URL for it.
func (s *ArchiveService) PresignUpload(ctx context.Context, userID string) (string, string, error) {
	pc, err := s.presignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := ArchiveKey(userID)

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}
	return key, req.URL, nil
}

// PresignDownload returns a presigned GET URL for a previously uploaded key.
// The key must sit under the caller's own archive prefix; anything else
// yields common.ErrUnauthorized, the same way the log store treats another
// user's ids as missing.
func (s *ArchiveService) PresignDownload(ctx context.Context, userID, key string) (string, error) {
	if !keyOwnedBy(userID, key) {
		return "", common.ErrUnauthorized
	}

	pc, err := s.presignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
