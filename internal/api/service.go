package api

import (
	"context"

	"github.com/dmitrijs2005/totpkeeper/internal/common"
	"google.golang.org/grpc"
)

const (
	ServiceName = "totpkeeper.AccountService"

	SignUpFullMethodName     = "/" + ServiceName + "/SignUp"
	LoginFullMethodName      = "/" + ServiceName + "/Login"
	VerifyCodeFullMethodName = "/" + ServiceName + "/VerifyCode"
	PingFullMethodName       = "/" + ServiceName + "/Ping"
)

type AccountServiceServer interface {
	SignUp(context.Context, *SignUpRequest) (*AccountResponse, error)
	Login(context.Context, *LoginRequest) (*AccountResponse, error)
	VerifyCode(context.Context, *VerifyCodeRequest) (*VerifyCodeResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(AccountServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AccountServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AccountServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AccountServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unaryHandler(SignUpFullMethodName, AccountServiceServer.SignUp)},
		{MethodName: "Login", Handler: unaryHandler(LoginFullMethodName, AccountServiceServer.Login)},
		{MethodName: "VerifyCode", Handler: unaryHandler(VerifyCodeFullMethodName, AccountServiceServer.VerifyCode)},
		{MethodName: "Ping", Handler: unaryHandler(PingFullMethodName, AccountServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "totpkeeper/account_service",
}

type AccountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountServiceClient(cc grpc.ClientConnInterface) *AccountServiceClient {
	return &AccountServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(common.JSONCodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountServiceClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, SignUpFullMethodName, in, opts)
}

func (c *AccountServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, LoginFullMethodName, in, opts)
}

func (c *AccountServiceClient) VerifyCode(ctx context.Context, in *VerifyCodeRequest, opts ...grpc.CallOption) (*VerifyCodeResponse, error) {
	return invoke[VerifyCodeResponse](ctx, c.cc, VerifyCodeFullMethodName, in, opts)
}

func (c *AccountServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, PingFullMethodName, in, opts)
}
