package client

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/urgekeeper/internal/common"
	pb "github.com/dmitrijs2005/urgekeeper/internal/proto"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// RecordAPI is the transport contract of the owner-scoped record store. The
// server binds every call to the caller's identity.
type RecordAPI interface {
	WhoAmI(ctx context.Context) (string, error)
	CreateRecord(ctx context.Context, r *records.Record) (*records.Record, error)
	GetRecord(ctx context.Context, name string) (*records.Record, error)
	UpdateRecord(ctx context.Context, r *records.Record) (*records.Record, error)
	// QueryRecords returns the decodable records plus one error per record
	// that could not be decoded.
	QueryRecords(ctx context.Context, q records.Query) ([]*records.Record, []error, error)
	DeleteRecords(ctx context.Context, names []string) error
	PutSettings(ctx context.Context, kind records.Type, doc map[string]any) error
	GetSettings(ctx context.Context, kind records.Type) (map[string]any, error)
}

type GRPCClient struct {
	endpointURL string
	accessToken string
	conn        *grpc.ClientConn
	client      pb.RecordServiceClient
}

var _ RecordAPI = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL, accessToken string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewRecordServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (string, error) {
	resp, err := s.client.WhoAmI(ctx, &emptypb.Empty{})
	if err != nil {
		return "", mapError("WhoAmI", err)
	}
	return pb.IdentityFromStruct(resp), nil
}

func (s *GRPCClient) CreateRecord(ctx context.Context, r *records.Record) (*records.Record, error) {
	req, err := pb.RecordToStruct(r)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.CreateRecord(ctx, req)
	if err != nil {
		return nil, mapError("CreateRecord", err)
	}
	return pb.RecordFromStruct(resp)
}

func (s *GRPCClient) GetRecord(ctx context.Context, name string) (*records.Record, error) {
	req, err := pb.NameToStruct(name)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.GetRecord(ctx, req)
	if err != nil {
		return nil, mapError("GetRecord", err)
	}
	return pb.RecordFromStruct(resp)
}

func (s *GRPCClient) UpdateRecord(ctx context.Context, r *records.Record) (*records.Record, error) {
	req, err := pb.RecordToStruct(r)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.UpdateRecord(ctx, req)
	if err != nil {
		return nil, mapError("UpdateRecord", err)
	}
	return pb.RecordFromStruct(resp)
}

func (s *GRPCClient) QueryRecords(ctx context.Context, q records.Query) ([]*records.Record, []error, error) {
	req, err := pb.QueryToStruct(q)
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.client.QueryRecords(ctx, req)
	if err != nil {
		return nil, nil, mapError("QueryRecords", err)
	}
	rs, errs := pb.RecordsFromStruct(resp)
	return rs, errs, nil
}

func (s *GRPCClient) DeleteRecords(ctx context.Context, names []string) error {
	req, err := pb.NamesToStruct(names)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteRecords(ctx, req); err != nil {
		return mapError("DeleteRecords", err)
	}
	return nil
}

func (s *GRPCClient) PutSettings(ctx context.Context, kind records.Type, doc map[string]any) error {
	req, err := pb.SettingsToStruct(kind, doc)
	if err != nil {
		return err
	}
	if _, err := s.client.PutSettings(ctx, req); err != nil {
		return mapError("PutSettings", err)
	}
	return nil
}

func (s *GRPCClient) GetSettings(ctx context.Context, kind records.Type) (map[string]any, error) {
	req, err := pb.SettingsToStruct(kind, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.GetSettings(ctx, req)
	if err != nil {
		return nil, mapError("GetSettings", err)
	}
	_, doc := pb.SettingsFromStruct(resp)
	return doc, nil
}

// mapError turns a gRPC status into a *RemoteError. Context errors pass
// through unchanged.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		return &RemoteError{Op: op, Code: codes.Unknown, Err: ErrRemote, Msg: err.Error()}
	}

	re := &RemoteError{Op: op, Code: st.Code(), Msg: st.Message()}
	switch st.Code() {
	case codes.Unauthenticated:
		re.Err = ErrUnauthorized
	case codes.PermissionDenied:
		re.Err = ErrPermissionDenied
	case codes.ResourceExhausted:
		re.Err = ErrRateLimited
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
		re.Err = ErrUnavailable
	case codes.NotFound:
		re.Err = ErrNotFound
	case codes.AlreadyExists:
		re.Err = ErrAlreadyExists
	case codes.InvalidArgument:
		re.Err = ErrInvalidArgument
	default:
		re.Err = ErrRemote
	}
	return re
}
