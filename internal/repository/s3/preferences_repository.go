package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/tidwall/gjson"

	"prefs-service/internal/domain"
	"prefs-service/internal/repository"
)

// PreferencesRepository stores one JSON object per user in an S3 bucket
// (or a compatible API). Per-key atomicity comes from S3 object semantics.
type PreferencesRepository struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

func NewPreferencesRepository(client *s3.Client, bucket, keyPrefix string) repository.PreferencesRepository {
	return &PreferencesRepository{
		client:    client,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}
}

func (r *PreferencesRepository) Init(ctx context.Context) error {
	if r.bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if _, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	}); err != nil {
		return fmt.Errorf("head bucket %s: %w", r.bucket, err)
	}
	return nil
}

func (r *PreferencesRepository) FindByID(ctx context.Context, userID string) (*domain.Preferences, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(userID)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("stored preferences for %s are not valid JSON", userID)
	}

	prefs := &domain.Preferences{
		UserID:     userID,
		Properties: data,
	}
	if out.LastModified != nil {
		prefs.UpdatedAt = *out.LastModified
	}
	return prefs, nil
}

func (r *PreferencesRepository) Save(ctx context.Context, prefs *domain.Preferences) error {
	value := prefs.Properties
	if value == nil {
		value = []byte("null")
	}

	if _, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key(prefs.UserID)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
		ACL:         types.ObjectCannedACLPrivate,
	}); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (r *PreferencesRepository) key(userID string) string {
	if r.keyPrefix == "" {
		return userID + ".json"
	}
	return r.keyPrefix + "/" + userID + ".json"
}
