package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/totpkeeper/internal/api"
	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes. Unknown accounts and wrong
// passwords share one message so callers cannot probe for usernames.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateAccount):
		return status.Error(codes.AlreadyExists, "account already exists")
	case errors.Is(err, common.ErrAccountNotFound), errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) accountResponse(ctx context.Context, a *models.Account) (*api.AccountResponse, error) {
	uri, err := s.accounts.ProvisioningURI(ctx, a)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	code, err := s.accounts.ProvisionTOTPCode(ctx, a)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.AccountResponse{
		ID:              a.ID,
		Username:        a.Username,
		EncryptedSecret: a.EncryptedSecret,
		ProvisioningURI: uri,
		CurrentCode:     code,
	}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.AccountResponse, error) {

	s.logger.Info(ctx, "Sign up request", "username", req.Username)

	account, err := s.accounts.CreateAccount(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", account.Username, "account_id", account.ID)
	return s.accountResponse(ctx, account)
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.AccountResponse, error) {

	account, err := s.accounts.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.accountResponse(ctx, account)
}

func (s *GRPCServer) VerifyCode(ctx context.Context, req *api.VerifyCodeRequest) (*api.VerifyCodeResponse, error) {

	ok, err := s.accounts.VerifyCode(ctx, req.Username, req.Code)
	if err != nil {
		// an unknown username reads as a rejected code
		if errors.Is(err, common.ErrAccountNotFound) {
			return &api.VerifyCodeResponse{Valid: false}, nil
		}
		return nil, s.toStatus(ctx, err)
	}

	return &api.VerifyCodeResponse{Valid: ok}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}
