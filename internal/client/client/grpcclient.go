package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/totpkeeper/internal/api"
	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// accountAPI is the subset of the generated-style stub the client uses.
type accountAPI interface {
	SignUp(ctx context.Context, in *api.SignUpRequest, opts ...grpc.CallOption) (*api.AccountResponse, error)
	Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*api.AccountResponse, error)
	VerifyCode(ctx context.Context, in *api.VerifyCodeRequest, opts ...grpc.CallOption) (*api.VerifyCodeResponse, error)
	Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      accountAPI
}

// NewGRPCClient creates a lazily connecting client for endpointURL. Extra
// dial options are appended after the insecure transport credentials.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{
		endpointURL: endpointURL,
		conn:        conn,
		client:      api.NewAccountServiceClient(conn),
	}, nil
}

func (s *GRPCClient) SignUp(ctx context.Context, userName, password string) (*api.AccountResponse, error) {

	resp, err := s.client.SignUp(ctx, &api.SignUpRequest{Username: userName, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	return resp, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName, password string) (*api.AccountResponse, error) {

	resp, err := s.client.Login(ctx, &api.LoginRequest{Username: userName, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	return resp, nil
}

func (s *GRPCClient) VerifyCode(ctx context.Context, userName, code string) (bool, error) {

	resp, err := s.client.VerifyCode(ctx, &api.VerifyCodeRequest{Username: userName, Code: code})
	if err != nil {
		return false, s.mapError(err)
	}

	return resp.Valid, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	_, err := s.client.Ping(ctx, &api.PingRequest{})
	return s.mapError(err)
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return common.ErrDuplicateAccount
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
