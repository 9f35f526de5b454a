// Package pb declares the apds.v1.SensorService gRPC contract.
//
// The contract is written out in proto/apds/v1/sensor.proto. Messages are
// protobuf well-known types so the service needs no generated message code:
// requests and responses are Empty, StringValue or Struct, with the struct
// fields named by the Field constants.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// SensorService_ServiceName is the fully qualified gRPC service name
const SensorService_ServiceName = "apds.v1.SensorService"

// Full method names, as seen by interceptors
const (
	SensorService_GetStatus_FullMethodName        = "/apds.v1.SensorService/GetStatus"
	SensorService_GetLatestReading_FullMethodName = "/apds.v1.SensorService/GetLatestReading"
	SensorService_GetHistory_FullMethodName       = "/apds.v1.SensorService/GetHistory"
	SensorService_StopSession_FullMethodName      = "/apds.v1.SensorService/StopSession"
)

// SensorServiceClient is the client API for SensorService
type SensorServiceClient interface {
	// GetStatus returns the state of the running sensor session
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	// GetLatestReading returns the latest reading of a mode ("" for any mode)
	GetLatestReading(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	// GetHistory returns readings in [start, end) with statistics, see HistoryRequest
	GetHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	// StopSession stops the sensor session and returns its final status
	StopSession(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type sensorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSensorServiceClient wraps a connection in the SensorService client API
func NewSensorServiceClient(cc grpc.ClientConnInterface) SensorServiceClient {
	return &sensorServiceClient{cc}
}

func (c *sensorServiceClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SensorService_GetStatus_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sensorServiceClient) GetLatestReading(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SensorService_GetLatestReading_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sensorServiceClient) GetHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SensorService_GetHistory_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sensorServiceClient) StopSession(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SensorService_StopSession_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SensorServiceServer is the server API for SensorService.
// All implementations must embed UnimplementedSensorServiceServer
type SensorServiceServer interface {
	// GetStatus returns the state of the running sensor session
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	// GetLatestReading returns the latest reading of a mode ("" for any mode),
	// sampling the sensor when nothing is stored yet
	GetLatestReading(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// GetHistory returns readings in [start, end) with count, sampled,
	// average, min and max
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// StopSession stops the sensor session and returns its final status
	StopSession(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	mustEmbedUnimplementedSensorServiceServer()
}

// UnimplementedSensorServiceServer must be embedded to have forward compatible implementations
type UnimplementedSensorServiceServer struct{}

func (UnimplementedSensorServiceServer) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStatus not implemented")
}
func (UnimplementedSensorServiceServer) GetLatestReading(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetLatestReading not implemented")
}
func (UnimplementedSensorServiceServer) GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetHistory not implemented")
}
func (UnimplementedSensorServiceServer) StopSession(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method StopSession not implemented")
}
func (UnimplementedSensorServiceServer) mustEmbedUnimplementedSensorServiceServer() {}

// RegisterSensorServiceServer registers srv with a gRPC server
func RegisterSensorServiceServer(s grpc.ServiceRegistrar, srv SensorServiceServer) {
	s.RegisterService(&SensorService_ServiceDesc, srv)
}

func _SensorService_GetStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SensorServiceServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SensorService_GetStatus_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SensorServiceServer).GetStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _SensorService_GetLatestReading_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SensorServiceServer).GetLatestReading(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SensorService_GetLatestReading_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SensorServiceServer).GetLatestReading(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _SensorService_GetHistory_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SensorServiceServer).GetHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SensorService_GetHistory_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SensorServiceServer).GetHistory(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _SensorService_StopSession_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SensorServiceServer).StopSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SensorService_StopSession_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SensorServiceServer).StopSession(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// SensorService_ServiceDesc is the grpc.ServiceDesc for SensorService.
// It is only for direct use with grpc.RegisterService; prefer
// RegisterSensorServiceServer.
var SensorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: SensorService_ServiceName,
	HandlerType: (*SensorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler:    _SensorService_GetStatus_Handler,
		},
		{
			MethodName: "GetLatestReading",
			Handler:    _SensorService_GetLatestReading_Handler,
		},
		{
			MethodName: "GetHistory",
			Handler:    _SensorService_GetHistory_Handler,
		},
		{
			MethodName: "StopSession",
			Handler:    _SensorService_StopSession_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "apds/v1/sensor.proto",
}
