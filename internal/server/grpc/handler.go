package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/urgekeeper/internal/common"
	pb "github.com/dmitrijs2005/urgekeeper/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors onto gRPC codes. Unknown errors are logged
// and hidden behind codes.Internal.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorPermissionDenied):
		return status.Error(codes.PermissionDenied, "permission denied")
	case errors.Is(err, common.ErrorInvalidArgument), errors.Is(err, pb.ErrMalformedMessage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	s.logger.Error(ctx, "request failed", "op", op, "error", err)
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) owner(ctx context.Context) (string, error) {
	id, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return id, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := pb.IdentityToStruct(owner)
	if err != nil {
		return nil, s.toStatus(ctx, "WhoAmI", err)
	}
	return resp, nil
}

func (s *GRPCServer) CreateRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := pb.RecordFromStruct(req)
	if err != nil {
		return nil, s.toStatus(ctx, "CreateRecord", err)
	}

	created, err := s.records.Create(ctx, owner, rec)
	if err != nil {
		return nil, s.toStatus(ctx, "CreateRecord", err)
	}
	s.logger.Debug(ctx, "record created", "owner", owner, "name", created.Name)

	resp, err := pb.RecordToStruct(created)
	if err != nil {
		return nil, s.toStatus(ctx, "CreateRecord", err)
	}
	return resp, nil
}

func (s *GRPCServer) GetRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.Get(ctx, owner, pb.NameFromStruct(req))
	if err != nil {
		return nil, s.toStatus(ctx, "GetRecord", err)
	}
	resp, err := pb.RecordToStruct(rec)
	if err != nil {
		return nil, s.toStatus(ctx, "GetRecord", err)
	}
	return resp, nil
}

func (s *GRPCServer) UpdateRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := pb.RecordFromStruct(req)
	if err != nil {
		return nil, s.toStatus(ctx, "UpdateRecord", err)
	}
	updated, err := s.records.Update(ctx, owner, rec)
	if err != nil {
		return nil, s.toStatus(ctx, "UpdateRecord", err)
	}
	resp, err := pb.RecordToStruct(updated)
	if err != nil {
		return nil, s.toStatus(ctx, "UpdateRecord", err)
	}
	return resp, nil
}

func (s *GRPCServer) QueryRecords(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	q, err := pb.QueryFromStruct(req)
	if err != nil {
		return nil, s.toStatus(ctx, "QueryRecords", err)
	}
	rs, err := s.records.Query(ctx, owner, q)
	if err != nil {
		return nil, s.toStatus(ctx, "QueryRecords", err)
	}
	resp, err := pb.RecordsToStruct(rs)
	if err != nil {
		return nil, s.toStatus(ctx, "QueryRecords", err)
	}
	return resp, nil
}

func (s *GRPCServer) DeleteRecords(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	names := pb.NamesFromStruct(req)
	if err := s.records.Delete(ctx, owner, names); err != nil {
		return nil, s.toStatus(ctx, "DeleteRecords", err)
	}
	s.logger.Info(ctx, "records deleted", "owner", owner, "count", len(names))
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) PutSettings(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	kind, doc := pb.SettingsFromStruct(req)
	if err := s.settings.Put(ctx, owner, kind, doc); err != nil {
		return nil, s.toStatus(ctx, "PutSettings", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	kind, _ := pb.SettingsFromStruct(req)
	doc, err := s.settings.Get(ctx, owner, kind)
	if err != nil {
		return nil, s.toStatus(ctx, "GetSettings", err)
	}
	resp, err := pb.SettingsToStruct(kind, doc)
	if err != nil {
		return nil, s.toStatus(ctx, "GetSettings", err)
	}
	return resp, nil
}
