package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "autoclicker.v1.Control"

// Method names of the Control service.
const (
	MethodStartEmitter   = "StartEmitter"
	MethodStopEmitter    = "StopEmitter"
	MethodStopAll        = "StopAll"
	MethodStartRecording = "StartRecording"
	MethodStopRecording  = "StopRecording"
	MethodClearRecording = "ClearRecording"
	MethodStartPlayback  = "StartPlayback"
	MethodStopPlayback   = "StopPlayback"
	MethodGetStatus      = "GetStatus"
)

// ControlServer is the server API for the Control service.
type ControlServer interface {
	StartEmitter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StopEmitter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StopAll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StartRecording(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StopRecording(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ClearRecording(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StartPlayback(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StopPlayback(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// FullMethod returns "/autoclicker.v1.Control/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unaryCall invokes one ControlServer method.
type unaryCall func(srv ControlServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// methods binds wire names to server methods.
//
//nolint:gochecknoglobals // Static method table of the service descriptor.
var methods = []struct {
	name string
	call unaryCall
}{
	{MethodStartEmitter, ControlServer.StartEmitter},
	{MethodStopEmitter, ControlServer.StopEmitter},
	{MethodStopAll, ControlServer.StopAll},
	{MethodStartRecording, ControlServer.StartRecording},
	{MethodStopRecording, ControlServer.StopRecording},
	{MethodClearRecording, ControlServer.ClearRecording},
	{MethodStartPlayback, ControlServer.StartPlayback},
	{MethodStopPlayback, ControlServer.StopPlayback},
	{MethodGetStatus, ControlServer.GetStatus},
}

// ServiceDesc describes the Control service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Descriptor consumed by grpc-go by pointer.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods:     methodDescs(),
	Streams:     []grpc.StreamDesc{},
	Metadata:    "autoclicker/v1/control.proto",
}

// RegisterControlServer registers srv on s.
func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// methodDescs builds the unary method table.
func methodDescs() []grpc.MethodDesc {
	descs := make([]grpc.MethodDesc, 0, len(methods))
	for _, m := range methods {
		descs = append(descs, grpc.MethodDesc{
			MethodName: m.name,
			Handler:    unaryHandler(m.name, m.call),
		})
	}

	return descs
}

// unaryHandler adapts call to grpc.MethodHandler, honouring interceptors.
func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(ControlServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}

		handler := func(ctx context.Context, req any) (any, error) {
			in, _ := req.(*structpb.Struct)

			return call(server, ctx, in)
		}

		return interceptor(ctx, in, info, handler)
	}
}
