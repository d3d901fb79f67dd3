package grpc

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/shoprpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// shopService is implemented by GRPCServer. It exists so that RegisterService
// can check the server type.
type shopService interface {
	Signup(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	Login(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	AddToCart(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	RemoveFromCart(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	GetCartItems(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: shoprpc.ServiceName,
	HandlerType: (*shopService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Signup", Handler: unary(shoprpc.MethodSignup, shopService.Signup)},
		{MethodName: "Login", Handler: unary(shoprpc.MethodLogin, shopService.Login)},
		{MethodName: "AddToCart", Handler: unary(shoprpc.MethodAddToCart, shopService.AddToCart)},
		{MethodName: "RemoveFromCart", Handler: unary(shoprpc.MethodRemoveFromCart, shopService.RemoveFromCart)},
		{MethodName: "GetCartItems", Handler: unary(shoprpc.MethodGetCartItems, shopService.GetCartItems)},
		{MethodName: "Ping", Handler: unary(shoprpc.MethodPing, shopService.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shopkeeper.proto",
}

// unary adapts a typed method to a grpc.MethodHandler, the way generated code
// does for each method.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](fullMethod string, call func(shopService, context.Context, PReq) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(shopService), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(shopService), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}
