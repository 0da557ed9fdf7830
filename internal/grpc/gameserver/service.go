package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GameServiceName is the fully qualified gRPC service name
const GameServiceName = "treasurehunt.v1.GameService"

const (
	GameService_CreateGame_FullMethodName     = "/treasurehunt.v1.GameService/CreateGame"
	GameService_RegisterPlayer_FullMethodName = "/treasurehunt.v1.GameService/RegisterPlayer"
	GameService_SubmitHalfMap_FullMethodName  = "/treasurehunt.v1.GameService/SubmitHalfMap"
	GameService_GetState_FullMethodName       = "/treasurehunt.v1.GameService/GetState"
	GameService_SubmitMove_FullMethodName     = "/treasurehunt.v1.GameService/SubmitMove"
)

// GameServiceServer is the server API for the treasure hunt game service.
// Requests and responses are google.protobuf.Struct messages.
type GameServiceServer interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegisterPlayer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitHalfMap(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitMove(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedGameServiceServer can be embedded to have forward compatible implementations
type UnimplementedGameServiceServer struct{}

func (UnimplementedGameServiceServer) CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateGame not implemented")
}
func (UnimplementedGameServiceServer) RegisterPlayer(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RegisterPlayer not implemented")
}
func (UnimplementedGameServiceServer) SubmitHalfMap(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitHalfMap not implemented")
}
func (UnimplementedGameServiceServer) GetState(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetState not implemented")
}
func (UnimplementedGameServiceServer) SubmitMove(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitMove not implemented")
}

// RegisterGameServiceServer registers srv with the gRPC server
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&GameService_ServiceDesc, srv)
}

type unaryMethod func(GameServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a service method to grpc.MethodHandler the same way
// generated code does, including the interceptor hand-off.
func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GameServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(GameServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GameService_ServiceDesc is the grpc.ServiceDesc for the game service
var GameService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: GameServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateGame",
			Handler:    unaryHandler(GameService_CreateGame_FullMethodName, GameServiceServer.CreateGame),
		},
		{
			MethodName: "RegisterPlayer",
			Handler:    unaryHandler(GameService_RegisterPlayer_FullMethodName, GameServiceServer.RegisterPlayer),
		},
		{
			MethodName: "SubmitHalfMap",
			Handler:    unaryHandler(GameService_SubmitHalfMap_FullMethodName, GameServiceServer.SubmitHalfMap),
		},
		{
			MethodName: "GetState",
			Handler:    unaryHandler(GameService_GetState_FullMethodName, GameServiceServer.GetState),
		},
		{
			MethodName: "SubmitMove",
			Handler:    unaryHandler(GameService_SubmitMove_FullMethodName, GameServiceServer.SubmitMove),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// GameServiceClient is the client API for the game service
type GameServiceClient interface {
	CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RegisterPlayer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubmitHalfMap(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubmitMove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type gameServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGameServiceClient creates a client on top of cc
func NewGameServiceClient(cc grpc.ClientConnInterface) GameServiceClient {
	return &gameServiceClient{cc}
}

func (c *gameServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gameServiceClient) CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GameService_CreateGame_FullMethodName, in, opts)
}

func (c *gameServiceClient) RegisterPlayer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GameService_RegisterPlayer_FullMethodName, in, opts)
}

func (c *gameServiceClient) SubmitHalfMap(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GameService_SubmitHalfMap_FullMethodName, in, opts)
}

func (c *gameServiceClient) GetState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GameService_GetState_FullMethodName, in, opts)
}

func (c *gameServiceClient) SubmitMove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GameService_SubmitMove_FullMethodName, in, opts)
}
