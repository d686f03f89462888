package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/totpkeeper/internal/api"
	"github.com/dmitrijs2005/totpkeeper/internal/logging"
	"github.com/dmitrijs2005/totpkeeper/internal/server/models"
	"google.golang.org/grpc"
)

type accountService interface {
	CreateAccount(ctx context.Context, username, password string) (*models.Account, error)
	Authenticate(ctx context.Context, username, password string) (*models.Account, error)
	ProvisioningURI(ctx context.Context, account *models.Account) (string, error)
	ProvisionTOTPCode(ctx context.Context, account *models.Account) (string, error)
	VerifyCode(ctx context.Context, username, code string) (bool, error)
}

type rpcObserver interface {
	ObserveRPC(method, code string, d time.Duration)
}

type GRPCServer struct {
	address  string
	accounts accountService
	logger   logging.Logger
	metrics  rpcObserver
}

// NewGRPCServer builds the AccountService endpoint. m may be nil.
func NewGRPCServer(a string, l logging.Logger, as accountService, m rpcObserver) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: as,
		metrics:  m,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.metricsInterceptor))
	api.RegisterAccountServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
