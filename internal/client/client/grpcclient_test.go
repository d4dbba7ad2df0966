package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/urgekeeper/internal/common"
	pb "github.com/dmitrijs2005/urgekeeper/internal/proto"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

/*************
 * Fake pb client
 *************/

type fakePB struct {
	lastCreate   *structpb.Struct
	lastGet      *structpb.Struct
	lastUpdate   *structpb.Struct
	lastQuery    *structpb.Struct
	lastDelete   *structpb.Struct
	lastPut      *structpb.Struct
	lastSettings *structpb.Struct

	whoResp *structpb.Struct
	resp    *structpb.Struct
	err     error
}

func (f *fakePB) WhoAmI(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return f.whoResp, f.err
}
func (f *fakePB) CreateRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastCreate = in
	return f.resp, f.err
}
func (f *fakePB) GetRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastGet = in
	return f.resp, f.err
}
func (f *fakePB) UpdateRecord(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastUpdate = in
	return f.resp, f.err
}
func (f *fakePB) QueryRecords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastQuery = in
	return f.resp, f.err
}
func (f *fakePB) DeleteRecords(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	f.lastDelete = in
	return &emptypb.Empty{}, f.err
}
func (f *fakePB) PutSettings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	f.lastPut = in
	return &emptypb.Empty{}, f.err
}
func (f *fakePB) GetSettings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastSettings = in
	return f.resp, f.err
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_AttachesToken(t *testing.T) {
	c := &GRPCClient{accessToken: "A1"}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Equal(t, []string{"A1"}, md.Get(common.AccessTokenHeaderName))
		return nil
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "stale")
	require.NoError(t, c.accessTokenInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_NoTokenNoHeader(t *testing.T) {
	c := &GRPCClient{}
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(common.AccessTokenHeaderName))
		return status.Error(codes.Unauthenticated, "missing token")
	}
	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	cases := []struct {
		code codes.Code
		want error
	}{
		{codes.Unauthenticated, ErrUnauthorized},
		{codes.PermissionDenied, ErrPermissionDenied},
		{codes.ResourceExhausted, ErrRateLimited},
		{codes.Unavailable, ErrUnavailable},
		{codes.DeadlineExceeded, ErrUnavailable},
		{codes.NotFound, ErrNotFound},
		{codes.AlreadyExists, ErrAlreadyExists},
		{codes.InvalidArgument, ErrInvalidArgument},
		{codes.Internal, ErrRemote},
	}
	for _, tc := range cases {
		t.Run(tc.code.String(), func(t *testing.T) {
			err := mapError("Op", status.Error(tc.code, "x"))
			require.ErrorIs(t, err, tc.want)

			var re *RemoteError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, "Op", re.Op)
			assert.Equal(t, tc.code, re.Code)
		})
	}

	require.NoError(t, mapError("Op", nil))
	require.ErrorIs(t, mapError("Op", context.Canceled), context.Canceled)
	require.ErrorIs(t, mapError("Op", errors.New("plain")), ErrRemote)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(mapError("Op", status.Error(codes.Unavailable, ""))))
	assert.True(t, IsRetryable(mapError("Op", status.Error(codes.ResourceExhausted, ""))))
	assert.False(t, IsRetryable(mapError("Op", status.Error(codes.NotFound, ""))))
	assert.False(t, IsRetryable(mapError("Op", status.Error(codes.Unauthenticated, ""))))
	assert.False(t, IsRetryable(errors.New("plain")))
}

/*************
 * RPC wrappers
 *************/

func TestWhoAmI(t *testing.T) {
	who, err := pb.IdentityToStruct("alice")
	require.NoError(t, err)
	c := &GRPCClient{client: &fakePB{whoResp: who}}

	id, err := c.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	c = &GRPCClient{client: &fakePB{err: status.Error(codes.Unauthenticated, "missing token")}}
	_, err = c.WhoAmI(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateRecord_EncodesAndDecodes(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &records.Record{
		Name:       records.EventRecordName("e1"),
		Type:       records.TypeCravingEvent,
		OccurredAt: at,
		Fields:     map[string]any{records.FieldTags: []string{"🚬"}},
	}
	stored := *in
	stored.Owner = "alice"
	resp, err := pb.RecordToStruct(&stored)
	require.NoError(t, err)

	f := &fakePB{resp: resp}
	c := &GRPCClient{client: f}

	got, err := c.CreateRecord(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)
	assert.True(t, at.Equal(got.OccurredAt))
	assert.Equal(t, []any{"🚬"}, got.Fields[records.FieldTags])

	sent, err := pb.RecordFromStruct(f.lastCreate)
	require.NoError(t, err)
	assert.Equal(t, in.Name, sent.Name)
}

func TestCreateRecord_MapsError(t *testing.T) {
	c := &GRPCClient{client: &fakePB{err: status.Error(codes.AlreadyExists, "dup")}}
	_, err := c.CreateRecord(context.Background(), &records.Record{Name: "n", Type: records.TypeCravingEvent})
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestQueryRecords_SendsQuery(t *testing.T) {
	resp, err := pb.RecordsToStruct([]*records.Record{{Name: "a", Type: records.TypeCravingEvent}})
	require.NoError(t, err)
	f := &fakePB{resp: resp}
	c := &GRPCClient{client: f}

	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rs, errs, err := c.QueryRecords(context.Background(), records.Query{Type: records.TypeCravingEvent, Since: &since, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, rs, 1)

	q, err := pb.QueryFromStruct(f.lastQuery)
	require.NoError(t, err)
	assert.Equal(t, 10, q.Limit)
	require.NotNil(t, q.Since)
	assert.True(t, since.Equal(*q.Since))
}

func TestDeleteRecords_SendsNames(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f}
	require.NoError(t, c.DeleteRecords(context.Background(), []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, pb.NamesFromStruct(f.lastDelete))

	f.err = status.Error(codes.NotFound, "missing")
	require.ErrorIs(t, c.DeleteRecords(context.Background(), []string{"a"}), ErrNotFound)
}

func TestSettingsRoundTrip(t *testing.T) {
	resp, err := pb.SettingsToStruct(records.TypePreferences, map[string]any{"labelOverrides": map[string]any{"🧋": "Boba"}})
	require.NoError(t, err)
	f := &fakePB{resp: resp}
	c := &GRPCClient{client: f}

	require.NoError(t, c.PutSettings(context.Background(), records.TypePreferences, map[string]any{"a": "b"}))
	kind, doc := pb.SettingsFromStruct(f.lastPut)
	assert.Equal(t, records.TypePreferences, kind)
	assert.Equal(t, map[string]any{"a": "b"}, doc)

	got, err := c.GetSettings(context.Background(), records.TypePreferences)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"🧋": "Boba"}, got["labelOverrides"])
}
