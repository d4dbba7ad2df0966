// Package grpc exposes the record store over gRPC. Every call is
// authenticated with a bearer JWT in the access_token metadata key and
// rate limited per owner.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/urgekeeper/internal/logging"
	pb "github.com/dmitrijs2005/urgekeeper/internal/proto"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"google.golang.org/grpc"
)

// RecordService is the record business logic the handlers call into.
type RecordService interface {
	Create(ctx context.Context, owner string, rec *records.Record) (*records.Record, error)
	Get(ctx context.Context, owner, name string) (*records.Record, error)
	Update(ctx context.Context, owner string, rec *records.Record) (*records.Record, error)
	Query(ctx context.Context, owner string, q records.Query) ([]*records.Record, error)
	Delete(ctx context.Context, owner string, names []string) error
}

// SettingsService stores single-record-per-owner documents.
type SettingsService interface {
	Put(ctx context.Context, owner string, kind records.Type, doc map[string]any) error
	Get(ctx context.Context, owner string, kind records.Type) (map[string]any, error)
}

type GRPCServer struct {
	pb.UnimplementedRecordServiceServer
	address   string
	records   RecordService
	settings  SettingsService
	limiter   RateLimiter
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, rs RecordService, ss SettingsService, rl RateLimiter, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		records:   rs,
		settings:  ss,
		limiter:   rl,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds the grpc.Server with the interceptor chain and the
// service registered, without binding a listener.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor, s.rateLimitInterceptor))
	pb.RegisterRecordServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
