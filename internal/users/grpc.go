package users

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the gRPC service name of the users service.
const ServiceName = "wiretap.users.v1.Users"

// Full gRPC method names.
const (
	MethodGetUser    = "/" + ServiceName + "/GetUser"
	MethodFindUser   = "/" + ServiceName + "/FindUser"
	MethodDeleteUser = "/" + ServiceName + "/DeleteUser"
)

// UsersServer is the gRPC API of the users service. Messages are protobuf
// well-known types so no generated code is needed.
type UsersServer interface {
	GetUser(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	FindUser(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	DeleteUser(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
}

// ServiceDesc describes the users service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UsersServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetUser",
			Handler: unaryHandler(MethodGetUser, func(srv UsersServer, ctx context.Context, in *wrapperspb.Int64Value) (any, error) {
				return srv.GetUser(ctx, in)
			}),
		},
		{
			MethodName: "FindUser",
			Handler: unaryHandler(MethodFindUser, func(srv UsersServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return srv.FindUser(ctx, in)
			}),
		},
		{
			MethodName: "DeleteUser",
			Handler: unaryHandler(MethodDeleteUser, func(srv UsersServer, ctx context.Context, in *wrapperspb.Int64Value) (any, error) {
				return srv.DeleteUser(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// unaryHandler decodes a request of type Req and runs call through the
// server's unary interceptor chain.
func unaryHandler[Req any, PReq interface {
	*Req
}](fullMethod string, call func(UsersServer, context.Context, PReq) (any, error)) func(srv any, ctx context.Context, dec func(any) error, unary grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, unary grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UsersServer), ctx, req.(PReq))
		}
		if unary == nil {
			return handler(ctx, in)
		}
		return unary(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, handler)
	}
}

// RegisterGRPC registers the users service on r.
func RegisterGRPC(r grpc.ServiceRegistrar, store *Store) {
	r.RegisterService(&ServiceDesc, &grpcServer{store: store})
}

type grpcServer struct {
	store *Store
}

func (s *grpcServer) GetUser(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
	u, err := s.store.Get(ctx, in.GetValue())
	if err != nil {
		return nil, grpcError(err)
	}
	return userStruct(u)
}

func (s *grpcServer) FindUser(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "username is required")
	}
	u, err := s.store.GetByUsername(ctx, in.GetValue())
	if err != nil {
		return nil, grpcError(err)
	}
	return userStruct(u)
}

func (s *grpcServer) DeleteUser(ctx context.Context, in *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	if err := s.store.Delete(ctx, in.GetValue()); err != nil {
		return nil, grpcError(err)
	}
	return &emptypb.Empty{}, nil
}

func userStruct(u User) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return st, nil
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
