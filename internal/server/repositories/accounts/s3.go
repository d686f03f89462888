package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
	"github.com/google/uuid"
)

// ObjectAPI is the subset of *s3.Client used by S3Repository.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Repository stores one JSON object per account under accounts/by-id/
// and a claim object per username under accounts/by-username/. Claims are
// written with If-None-Match: *, so the object store itself decides which
// of two concurrent creates wins.
type S3Repository struct {
	api    ObjectAPI
	bucket string
	now    func() time.Time
}

func NewS3Repository(api ObjectAPI, bucket string) *S3Repository {
	return &S3Repository{api: api, bucket: bucket, now: time.Now}
}

func idKey(id string) string {
	return "accounts/by-id/" + url.PathEscape(id) + ".json"
}

func usernameKey(username string) string {
	return "accounts/by-username/" + url.PathEscape(username)
}

func (r *S3Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(usernameKey(username)),
	})
	if err == nil {
		return true, nil
	}
	if err = mapS3Error(err); errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return false, err
}

func (r *S3Repository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	id, err := r.get(ctx, usernameKey(username))
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, string(id))
}

func (r *S3Repository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	body, err := r.get(ctx, idKey(id))
	if err != nil {
		return nil, err
	}
	a := &models.Account{}
	if err := json.Unmarshal(body, a); err != nil {
		return nil, fmt.Errorf("s3 error: decode %s: %w", id, err)
	}
	return a, nil
}

func (r *S3Repository) Save(ctx context.Context, a *models.Account) (*models.Account, error) {
	now := r.now().UTC()
	out := a.Clone()

	if out.ID == "" {
		out.ID = uuid.NewString()
		out.CreatedAt = now
		out.UpdatedAt = now

		if err := r.claim(ctx, out.Username, out.ID); err != nil {
			return nil, err
		}
		if err := r.putRecord(ctx, out); err != nil {
			r.release(ctx, out.Username)
			return nil, err
		}
		return out, nil
	}

	prev, err := r.FindByID(ctx, out.ID)
	if err != nil {
		return nil, err
	}
	if prev.Username != out.Username {
		if err := r.claim(ctx, out.Username, out.ID); err != nil {
			return nil, err
		}
	}
	out.CreatedAt = prev.CreatedAt
	out.UpdatedAt = now
	if err := r.putRecord(ctx, out); err != nil {
		return nil, err
	}
	if prev.Username != out.Username {
		r.release(ctx, prev.Username)
	}
	return out, nil
}

func (r *S3Repository) claim(ctx context.Context, username, id string) error {
	_, err := r.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(usernameKey(username)),
		Body:        bytes.NewReader([]byte(id)),
		ContentType: aws.String("text/plain"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		return mapS3Error(err)
	}
	return nil
}

func (r *S3Repository) release(ctx context.Context, username string) {
	_, _ = r.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(usernameKey(username)),
	})
}

func (r *S3Repository) putRecord(ctx context.Context, a *models.Account) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("s3 error: encode: %w", err)
	}
	_, err = r.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(idKey(a.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return mapS3Error(err)
	}
	return nil
}

func (r *S3Repository) get(ctx context.Context, key string) ([]byte, error) {
	out, err := r.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapS3Error(err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 error: read %s: %w", key, err)
	}
	return b, nil
}

func mapS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return common.ErrorNotFound
		case "PreconditionFailed", "ConditionalRequestConflict":
			return fmt.Errorf("%w: username claim", common.ErrorAlreadyExists)
		}
	}
	return fmt.Errorf("s3 error: %w", err)
}
