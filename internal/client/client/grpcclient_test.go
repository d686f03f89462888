package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/dmitrijs2005/totpkeeper/internal/api"
	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

/*************
 * Fake server
 *************/

type fakeServer struct {
	lastSignUp *api.SignUpRequest
	lastLogin  *api.LoginRequest
	lastVerify *api.VerifyCodeRequest

	account *api.AccountResponse
	valid   bool
	err     error
}

func (f *fakeServer) SignUp(_ context.Context, in *api.SignUpRequest) (*api.AccountResponse, error) {
	f.lastSignUp = in
	return f.account, f.err
}

func (f *fakeServer) Login(_ context.Context, in *api.LoginRequest) (*api.AccountResponse, error) {
	f.lastLogin = in
	return f.account, f.err
}

func (f *fakeServer) VerifyCode(_ context.Context, in *api.VerifyCodeRequest) (*api.VerifyCodeResponse, error) {
	f.lastVerify = in
	if f.err != nil {
		return nil, f.err
	}
	return &api.VerifyCodeResponse{Valid: f.valid}, nil
}

func (f *fakeServer) Ping(context.Context, *api.PingRequest) (*api.PingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.PingResponse{Status: "OK"}, nil
}

func newTestClient(t *testing.T, f *fakeServer) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	api.RegisterAccountServiceServer(srv, f)
	go func() { _ = srv.Serve(lis) }()

	c, err := NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		srv.Stop()
	})
	return c
}

/*************
 * Tests
 *************/

func TestGRPCClient_SignUpAndLogin(t *testing.T) {
	f := &fakeServer{account: &api.AccountResponse{ID: "1", Username: "alice", ProvisioningURI: "otpauth://totp/x"}}
	c := newTestClient(t, f)
	ctx := context.Background()

	resp, err := c.SignUp(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, &api.SignUpRequest{Username: "alice", Password: "pw1"}, f.lastSignUp)

	resp, err = c.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "otpauth://totp/x", resp.ProvisioningURI)
	assert.Equal(t, "alice", f.lastLogin.Username)
}

func TestGRPCClient_VerifyCodeAndPing(t *testing.T) {
	f := &fakeServer{valid: true}
	c := newTestClient(t, f)
	ctx := context.Background()

	ok, err := c.VerifyCode(ctx, "alice", "123456")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "123456", f.lastVerify.Code)

	require.NoError(t, c.Ping(ctx))
}

func TestGRPCClient_MapsStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unauthenticated", status.Error(codes.Unauthenticated, "invalid credentials"), ErrUnauthorized},
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrUnavailable},
		{"exists", status.Error(codes.AlreadyExists, "account already exists"), common.ErrDuplicateAccount},
		{"invalid", status.Error(codes.InvalidArgument, "username is required"), common.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &fakeServer{err: tt.err})
			_, err := c.SignUp(context.Background(), "alice", "pw")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGRPCClient_InternalIsWrapped(t *testing.T) {
	c := &GRPCClient{}
	err := c.mapError(status.Error(codes.Internal, "internal error"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc error")
	assert.False(t, errors.Is(err, ErrUnauthorized))

	assert.NoError(t, c.mapError(nil))
}
