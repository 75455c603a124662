package control

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/autoclicker/internal/domain/click"
)

var _ ControlServer = (*Server)(nil)

// Server implements the Control gRPC API on top of a Service.
type Server struct {
	// service provides the business logic for control operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// StartEmitter arms one slot.
func (s *Server) StartEmitter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	slot, cfg, err := DecodeStartEmitter(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	return s.reply(s.service.StartEmitter(ctx, slot-1, cfg))
}

// StopEmitter disarms one slot.
func (s *Server) StopEmitter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	slot, err := DecodeSlot(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	return s.reply(s.service.StopEmitter(ctx, slot-1))
}

// StopAll disarms every slot.
func (s *Server) StopAll(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.reply(s.service.StopAll(ctx), nil)
}

// StartRecording arms the recorder.
func (s *Server) StartRecording(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.reply(s.service.StartRecording(ctx))
}

// StopRecording disarms the recorder.
func (s *Server) StopRecording(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.reply(s.service.StopRecording(ctx), nil)
}

// ClearRecording empties the recorded sequence.
func (s *Server) ClearRecording(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.reply(s.service.ClearRecording(ctx))
}

// StartPlayback starts replaying the recorded sequence.
func (s *Server) StartPlayback(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cfg, err := DecodeStartPlayback(req)
	if err != nil {
		return nil, toStatusError(err)
	}

	return s.reply(s.service.StartPlayback(ctx, cfg))
}

// StopPlayback cancels the active playback.
func (s *Server) StopPlayback(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.reply(s.service.StopPlayback(ctx), nil)
}

// GetStatus returns a snapshot of the daemon.
func (s *Server) GetStatus(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.reply(s.service.GetStatus(ctx), nil)
}

// reply encodes a service result.
func (s *Server) reply(st *Status, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatusError(err)
	}

	out, err := EncodeStatus(st)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return out, nil
}

// toStatusError maps domain errors to gRPC codes.
func toStatusError(err error) error {
	switch {
	case errors.Is(err, click.ErrInvalidConfig):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, click.ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
