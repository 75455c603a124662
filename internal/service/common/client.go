//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
	"github.com/oshokin/autoclicker/internal/config"
	"github.com/oshokin/autoclicker/internal/domain/click"
)

// Client wraps the Control service with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the daemon.
// The control API is meant for loopback use and runs without TLS.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial autoclicker daemon: %w", err)
	}

	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// StartEmitter arms a 1-based slot; a nil cfg uses the daemon's slot default.
func (c *Client) StartEmitter(ctx context.Context, slot int, cfg *click.EmitterConfig) (*control.Status, error) {
	req, err := control.EncodeStartEmitter(slot, cfg)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	return c.call(ctx, control.MethodStartEmitter, req)
}

// StopEmitter disarms a 1-based slot.
func (c *Client) StopEmitter(ctx context.Context, slot int) (*control.Status, error) {
	req, err := control.EncodeSlot(slot)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	return c.call(ctx, control.MethodStopEmitter, req)
}

// StopAll disarms every slot.
func (c *Client) StopAll(ctx context.Context) (*control.Status, error) {
	return c.call(ctx, control.MethodStopAll, nil)
}

// StartRecording arms the recorder.
func (c *Client) StartRecording(ctx context.Context) (*control.Status, error) {
	return c.call(ctx, control.MethodStartRecording, nil)
}

// StopRecording disarms the recorder.
func (c *Client) StopRecording(ctx context.Context) (*control.Status, error) {
	return c.call(ctx, control.MethodStopRecording, nil)
}

// ClearRecording empties the recorded sequence.
func (c *Client) ClearRecording(ctx context.Context) (*control.Status, error) {
	return c.call(ctx, control.MethodClearRecording, nil)
}

// StartPlayback replays the recording; a nil cfg uses the daemon default.
func (c *Client) StartPlayback(ctx context.Context, cfg *click.PlaybackConfig) (*control.Status, error) {
	req, err := control.EncodeStartPlayback(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	return c.call(ctx, control.MethodStartPlayback, req)
}

// StopPlayback cancels the active playback.
func (c *Client) StopPlayback(ctx context.Context) (*control.Status, error) {
	return c.call(ctx, control.MethodStopPlayback, nil)
}

// GetStatus returns a snapshot of the daemon.
func (c *Client) GetStatus(ctx context.Context) (*control.Status, error) {
	return c.call(ctx, control.MethodGetStatus, nil)
}

// call invokes one unary method and decodes the status reply.
func (c *Client) call(ctx context.Context, method string, req *structpb.Struct) (*control.Status, error) {
	if c == nil || c.conn == nil {
		return nil, errNotConnected
	}

	if req == nil {
		req = new(structpb.Struct)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, control.FullMethod(method), req, resp); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	st, err := control.DecodeStatus(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	return st, nil
}

// errNotConnected is returned by calls on a client that was never dialled.
var errNotConnected = errors.New("client is not connected")

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
