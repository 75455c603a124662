package clicker

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
	"github.com/oshokin/autoclicker/internal/api/ws"
	"github.com/oshokin/autoclicker/internal/config"
	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/common"
	"github.com/oshokin/autoclicker/internal/service/input"
	"github.com/oshokin/autoclicker/internal/service/sink"
	"github.com/oshokin/autoclicker/internal/service/status"
	"github.com/oshokin/autoclicker/internal/version"
)

// Options controls the autoclicker daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the control_addr setting.
	ListenAddress string
	// StatusAddress overrides the status_addr setting.
	StatusAddress string
	// NoHotkeys disables global input listening.
	NoHotkeys bool
}

// executableFallback is used when the binary name cannot be determined.
const executableFallback = "autoclicker"

// Run starts the daemon and blocks until ctx is cancelled or a server fails.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithKV(logger.WithName(ctx, "autoclicker"), "instance", uuid.NewString())

	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(settings, opts)

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	warnOtherInstances(ctx)

	bus := status.NewBus(nil)

	mirror := bus.Subscribe(logEvent(logger.WithName(ctx, "status")), 0)
	defer mirror.Cancel()

	var listener *input.Listener
	if !opts.NoHotkeys && !settings.Hotkeys.Disabled {
		listener = input.NewListener(input.HookSource{}, bus, nil)
	}

	daemon, err := New(Deps{
		Settings:  settings,
		Sink:      sink.NewRobot(),
		Pointer:   sink.RobotPointer{},
		Publisher: bus,
		Listener:  listener,
	})
	if err != nil {
		return fmt.Errorf("initialise daemon: %w", err)
	}

	if err := daemon.BindHotkeys(); err != nil {
		return err
	}

	return Serve(ctx, settings, daemon, bus, listener)
}

// Serve runs the control server, the optional status feed and the input
// listener until ctx is done, then shuts the daemon down. listener may be nil.
func Serve(ctx context.Context, settings *config.Config, daemon *Daemon, bus *status.Bus, listener *input.Listener) error {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", settings.ControlAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.ControlAddress, err)
	}

	var statusLis net.Listener

	if settings.StatusAddress != "" {
		statusLis, err = lc.Listen(ctx, "tcp", settings.StatusAddress)
		if err != nil {
			_ = lis.Close()

			return fmt.Errorf("listen on %s: %w", settings.StatusAddress, err)
		}
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 3)

	listenerDone := make(chan struct{})

	if listener != nil {
		go func() {
			defer close(listenerDone)

			// An unavailable listener is reported on the status stream; the daemon keeps running.
			_ = listener.Run(serveCtx)
		}()
	} else {
		close(listenerDone)
	}

	if statusLis != nil {
		broadcaster := ws.NewBroadcaster(serveCtx)

		feed := bus.Subscribe(broadcaster.Handle, 0)
		defer feed.Cancel()

		go func() {
			errs <- ws.Serve(serveCtx, statusLis, ws.NewHandler(broadcaster))
		}()

		logger.InfoKV(ctx, "Status feed listening", "listen_address", settings.StatusAddress)
	}

	grpcServer := grpc.NewServer()
	control.RegisterControlServer(grpcServer, control.NewServer(daemon))

	logger.InfoKV(ctx, "Autoclicker daemon listening",
		"listen_address", settings.ControlAddress,
		"version", version.Short(),
		"slots", settings.Slots,
		"hotkeys", listener != nil,
	)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-serveCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errs <- fmt.Errorf("serve gRPC: %w", err)
		}
	}()

	var result error

	select {
	case <-ctx.Done():
	case result = <-errs:
	}

	cancel()
	<-done

	// No hotkey may re-arm a slot once shutdown starts.
	<-listenerDone

	daemon.Shutdown(context.WithoutCancel(ctx))
	logger.Info(ctx, "Autoclicker daemon stopped")

	return result
}

// applyOverrides copies command-line overrides into settings.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.ListenAddress != "" {
		settings.ControlAddress = opts.ListenAddress
	}

	if opts.StatusAddress != "" {
		settings.StatusAddress = opts.StatusAddress
	}
}

// warnOtherInstances logs other processes of this binary. go-ps cannot tell a
// daemon from a short-lived client command, so the notice says so.
func warnOtherInstances(ctx context.Context) {
	pids, err := common.FindInstances(common.ExecutableName(executableFallback))
	if err != nil {
		logger.DebugKV(ctx, "Process scan failed", "error", err)

		return
	}

	if msg := instancesNotice(pids); msg != "" {
		logger.WarnKV(ctx, msg, "pids", pids)
	}
}

// instancesNotice describes pids for the startup log; empty when there are none.
func instancesNotice(pids []int) string {
	if len(pids) == 0 {
		return ""
	}

	return fmt.Sprintf("Found %d other autoclicker process(es); if one is a daemon, both will drive the pointer", len(pids))
}

// logEvent mirrors status events into the log.
func logEvent(ctx context.Context) func(status.Event) {
	return func(e status.Event) {
		if e.Err != nil {
			logger.WarnKV(ctx, e.Message, "kind", e.Kind, "error", e.Err)

			return
		}

		logger.InfoKV(ctx, e.Message, "kind", e.Kind)
	}
}
