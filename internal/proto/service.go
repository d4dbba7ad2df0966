// Package proto defines the RecordService gRPC contract. Messages travel as
// google.protobuf.Struct / Empty so no generated message types are needed;
// codec.go maps them to and from records types.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "urgekeeper.records.RecordService"

const (
	RecordService_WhoAmI_FullMethodName        = "/" + ServiceName + "/WhoAmI"
	RecordService_CreateRecord_FullMethodName  = "/" + ServiceName + "/CreateRecord"
	RecordService_GetRecord_FullMethodName     = "/" + ServiceName + "/GetRecord"
	RecordService_UpdateRecord_FullMethodName  = "/" + ServiceName + "/UpdateRecord"
	RecordService_QueryRecords_FullMethodName  = "/" + ServiceName + "/QueryRecords"
	RecordService_DeleteRecords_FullMethodName = "/" + ServiceName + "/DeleteRecords"
	RecordService_PutSettings_FullMethodName   = "/" + ServiceName + "/PutSettings"
	RecordService_GetSettings_FullMethodName   = "/" + ServiceName + "/GetSettings"
)

// RecordServiceClient is the client API for RecordService.
type RecordServiceClient interface {
	WhoAmI(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	CreateRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	QueryRecords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteRecords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	PutSettings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetSettings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type recordServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRecordServiceClient(cc grpc.ClientConnInterface) RecordServiceClient {
	return &recordServiceClient{cc}
}

func (c *recordServiceClient) WhoAmI(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordService_WhoAmI_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) CreateRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordService_CreateRecord_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) GetRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordService_GetRecord_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) UpdateRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordService_UpdateRecord_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) QueryRecords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordService_QueryRecords_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) DeleteRecords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, RecordService_DeleteRecords_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) PutSettings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, RecordService_PutSettings_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) GetSettings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordService_GetSettings_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordServiceServer is the server API for RecordService.
type RecordServiceServer interface {
	WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CreateRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateRecord(context.Context, *structpb.Struct) (*structpb.Struct, error)
	QueryRecords(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteRecords(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	PutSettings(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GetSettings(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedRecordServiceServer can be embedded to keep forward compatibility.
type UnimplementedRecordServiceServer struct{}

func (UnimplementedRecordServiceServer) WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method WhoAmI not implemented")
}
func (UnimplementedRecordServiceServer) CreateRecord(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateRecord not implemented")
}
func (UnimplementedRecordServiceServer) GetRecord(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRecord not implemented")
}
func (UnimplementedRecordServiceServer) UpdateRecord(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateRecord not implemented")
}
func (UnimplementedRecordServiceServer) QueryRecords(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method QueryRecords not implemented")
}
func (UnimplementedRecordServiceServer) DeleteRecords(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteRecords not implemented")
}
func (UnimplementedRecordServiceServer) PutSettings(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method PutSettings not implemented")
}
func (UnimplementedRecordServiceServer) GetSettings(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSettings not implemented")
}

func RegisterRecordServiceServer(s grpc.ServiceRegistrar, srv RecordServiceServer) {
	s.RegisterService(&RecordService_ServiceDesc, srv)
}

// unaryHandler builds the method handler shared by every RPC: decode the
// request into a fresh message, then call through the optional interceptor.
func unaryHandler[Req any, PReq interface {
	*Req
}, Resp any](fullMethod string, call func(RecordServiceServer, context.Context, PReq) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RecordServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RecordServiceServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RecordService_ServiceDesc is the grpc.ServiceDesc for RecordService.
var RecordService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecordServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "WhoAmI", Handler: unaryHandler(RecordService_WhoAmI_FullMethodName, RecordServiceServer.WhoAmI)},
		{MethodName: "CreateRecord", Handler: unaryHandler(RecordService_CreateRecord_FullMethodName, RecordServiceServer.CreateRecord)},
		{MethodName: "GetRecord", Handler: unaryHandler(RecordService_GetRecord_FullMethodName, RecordServiceServer.GetRecord)},
		{MethodName: "UpdateRecord", Handler: unaryHandler(RecordService_UpdateRecord_FullMethodName, RecordServiceServer.UpdateRecord)},
		{MethodName: "QueryRecords", Handler: unaryHandler(RecordService_QueryRecords_FullMethodName, RecordServiceServer.QueryRecords)},
		{MethodName: "DeleteRecords", Handler: unaryHandler(RecordService_DeleteRecords_FullMethodName, RecordServiceServer.DeleteRecords)},
		{MethodName: "PutSettings", Handler: unaryHandler(RecordService_PutSettings_FullMethodName, RecordServiceServer.PutSettings)},
		{MethodName: "GetSettings", Handler: unaryHandler(RecordService_GetSettings_FullMethodName, RecordServiceServer.GetSettings)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "records.proto",
}
