package repomanager

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/totpkeeper/internal/server/repositories/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bucketServer answers every request with status and records it.
type bucketServer struct {
	status int
	reqs   []*http.Request
}

func (b *bucketServer) Do(r *http.Request) (*http.Response, error) {
	b.reqs = append(b.reqs, r)
	return &http.Response{
		StatusCode: b.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    r,
	}, nil
}

// stubS3Transport routes the manager's client through srv and captures the
// options it was built with.
func stubS3Transport(t *testing.T, srv *bucketServer) *s3.Options {
	t.Helper()
	origNew := newS3ClientFromConfig
	t.Cleanup(func() { newS3ClientFromConfig = origNew })

	opts := &s3.Options{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(opts)
		}
		optFns = append(optFns, func(o *s3.Options) { o.HTTPClient = srv })
		return origNew(cfg, optFns...)
	}
	return opts
}

func TestNewS3RepositoryManager_ConfiguresClient(t *testing.T) {
	srv := &bucketServer{status: http.StatusOK}
	opts := stubS3Transport(t, srv)

	m, err := NewS3RepositoryManager(context.Background(), S3Settings{
		RootUser:     "admin",
		RootPassword: "secretpassword",
		Bucket:       "accounts",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000/", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.IsType(t, &accounts.S3Repository{}, m.Accounts())
	assert.NoError(t, m.Close(context.Background()))

	require.Len(t, srv.reqs, 1)
	assert.Equal(t, http.MethodHead, srv.reqs[0].Method)
	assert.True(t, strings.HasSuffix(srv.reqs[0].URL.Path, "/accounts"), srv.reqs[0].URL.Path)
}

func TestNewS3RepositoryManager_UnreachableBucket(t *testing.T) {
	stubS3Transport(t, &bucketServer{status: http.StatusNotFound})

	_, err := NewS3RepositoryManager(context.Background(), S3Settings{
		RootUser:     "admin",
		RootPassword: "secretpassword",
		Bucket:       "missing",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "head bucket missing")
}

func TestNewS3RepositoryManager_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}

	_, err := NewS3RepositoryManager(context.Background(), S3Settings{Bucket: "b"})
	assert.ErrorContains(t, err, "aws config: no profile")
}
