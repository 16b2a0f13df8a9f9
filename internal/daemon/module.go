// Package daemon wires the conversa daemon with fx: storage, backend,
// conversation manager and the gRPC server on the workspace socket.
package daemon

import (
	"context"

	"github.com/matheus3301/conversa/internal/api"
	"github.com/matheus3301/conversa/internal/backend"
	"github.com/matheus3301/conversa/internal/blob"
	"github.com/matheus3301/conversa/internal/bus"
	"github.com/matheus3301/conversa/internal/config"
	"github.com/matheus3301/conversa/internal/conversation"
	"github.com/matheus3301/conversa/internal/logging"
	"github.com/matheus3301/conversa/internal/metrics"
	"github.com/matheus3301/conversa/internal/overlay"
	"github.com/matheus3301/conversa/internal/presence"
	"github.com/matheus3301/conversa/internal/present"
	"github.com/matheus3301/conversa/internal/status"
	"github.com/matheus3301/conversa/internal/store"
	convsync "github.com/matheus3301/conversa/internal/sync"
	"github.com/matheus3301/conversa/internal/workspace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Params holds the resolved workspace passed to the fx module.
type Params struct {
	Workspace string
	// SocketPath overrides the workspace socket, for tests.
	SocketPath string
	// Config skips reading config.toml when set.
	Config *config.Workspace
	Debug  bool
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideBlobStore,
			provideBackend,
			provideFormatter,
			provideManager,
			provideService,
			provideMetrics,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Workspace, error) {
	if p.Config != nil {
		return p.Config, p.Config.Validate()
	}
	return config.LoadWorkspace(workspace.ConfigPath(p.Workspace))
}

func provideLogger(p Params) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if p.Debug {
		level = zapcore.DebugLevel
	}
	return logging.New(workspace.LogPath(p.Workspace), p.Workspace, level)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*workspace.Lock, error) {
	if err := workspace.EnsureDir(p.Workspace); err != nil {
		return nil, err
	}
	l, err := workspace.AcquireLock(workspace.Dir(p.Workspace))
	if err != nil {
		return nil, err
	}
	logger.Info("workspace lock acquired")
	return l, nil
}

func provideBlobStore(p Params, cfg *config.Workspace, logger *zap.Logger) (blob.Store, error) {
	if cfg.Storage.Driver == "s3" {
		s3 := cfg.Storage.S3
		logger.Info("object storage", zap.String("driver", "s3"), zap.String("bucket", s3.Bucket))
		return blob.NewS3(context.Background(), blob.S3Config{
			Bucket:          s3.Bucket,
			Region:          s3.Region,
			Endpoint:        s3.Endpoint,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			PathStyle:       s3.PathStyle,
			PublicBaseURL:   s3.PublicBaseURL,
		})
	}
	dir := workspace.MediaDir(p.Workspace)
	logger.Info("object storage", zap.String("driver", "local"), zap.String("dir", dir))
	return blob.NewLocal(dir, cfg.Storage.BaseURL), nil
}

func provideBackend(p Params, cfg *config.Workspace, blobs blob.Store, b *bus.Bus, logger *zap.Logger) *backend.Client {
	dbPath := cfg.Backend.DBPath
	if dbPath == "" {
		dbPath = workspace.DBPath(p.Workspace)
	}
	return backend.New(backend.Config{DBPath: dbPath}, blobs, b, logger.Named("backend"))
}

func provideFormatter(cfg *config.Workspace) (*present.Formatter, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return present.NewFormatter(cfg.Display.Locale, loc), nil
}

func provideManager(cfg *config.Workspace, be *backend.Client, b *bus.Bus, machine *status.Machine, f *present.Formatter, logger *zap.Logger) *conversation.Manager {
	return conversation.NewManager(be, b, machine, f, conversation.Options{
		Self: cfg.SelfID,
		Sync: convsync.Options{
			Interval: cfg.Sync.Interval.Duration,
			Mode:     convsync.ParseMode(cfg.Sync.Mode),
			Unscoped: cfg.Sync.Unscoped,
		},
		Typing: presence.ChannelOptions{
			IdleTimeout: cfg.Presence.IdleTimeout.Duration,
			Rewrite:     cfg.Presence.Rewrite.Duration,
		},
		TypingRefresh: cfg.Presence.Refresh.Duration,
		Overlay: overlay.Options{
			LongPress:  cfg.Overlay.LongPress.Duration,
			CloseDelay: cfg.Overlay.CloseDelay.Duration,
			Highlight:  cfg.Overlay.Highlight.Duration,
		},
		MaxUploadBytes: cfg.Composer.MaxUploadBytes,
		RecorderMIME:   cfg.Composer.RecorderMIME,
	}, logger.Named("conversation"))
}

func provideService(p Params, machine *status.Machine, be *backend.Client, mgr *conversation.Manager, b *bus.Bus, logger *zap.Logger) *api.Service {
	return api.NewService(p.Workspace, machine, be, mgr, b, logger.Named("api"))
}

func provideMetrics(cfg *config.Workspace, logger *zap.Logger) *metrics.Server {
	if cfg.MetricsAddr == "" {
		return nil
	}
	return metrics.NewServer(cfg.MetricsAddr, logger)
}

type lifecycleDeps struct {
	fx.In

	Config  *config.Workspace
	Server  *Server
	Lock    *workspace.Lock
	Backend *backend.Client
	Manager *conversation.Manager
	Machine *status.Machine
	Metrics *metrics.Server `optional:"true"`
	Logger  *zap.Logger
}

func registerLifecycle(lc fx.Lifecycle, d lifecycleDeps) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = d.Machine.Transition(status.Connecting)
			if err := d.Backend.Connect(ctx); err != nil {
				_ = d.Machine.Transition(status.Error)
				return err
			}
			if err := ensureSelf(ctx, d.Backend, d.Config); err != nil {
				_ = d.Machine.Transition(status.Error)
				return err
			}
			_ = d.Machine.Transition(status.Syncing)

			go func() {
				if err := d.Server.Start(); err != nil {
					d.Logger.Error("gRPC server error", zap.Error(err))
				}
			}()
			if d.Metrics != nil {
				d.Metrics.Start()
			}

			n, err := d.Backend.MessageCount(ctx)
			d.Machine.ObserveSync(err)
			d.Logger.Info("daemon ready", zap.String("self", d.Config.SelfID), zap.Int("messages", n))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Server.Stop(ctx)
			d.Manager.CloseAll(ctx)
			if err := d.Manager.SetOnline(ctx, false); err != nil {
				d.Logger.Warn("mark offline failed", zap.Error(err))
			}
			if d.Metrics != nil {
				if err := d.Metrics.Stop(ctx); err != nil {
					d.Logger.Warn("metrics server stop", zap.Error(err))
				}
			}
			if err := d.Backend.Close(); err != nil {
				d.Logger.Warn("backend close", zap.Error(err))
			}
			if err := d.Lock.Release(); err != nil {
				d.Logger.Warn("error releasing lock", zap.Error(err))
			}
			d.Logger.Info("daemon stopped")
			return nil
		},
	})
}

// ensureSelf creates the profile of the signed-in user on first start and
// marks it online.
func ensureSelf(ctx context.Context, be *backend.Client, cfg *config.Workspace) error {
	p, err := be.GetProfile(ctx, cfg.SelfID)
	if err != nil {
		return err
	}
	if p == nil {
		p = &store.Profile{ID: cfg.SelfID, Name: cfg.SelfName}
	}
	p.Status = conversation.StatusOnline
	return be.UpsertProfile(ctx, p)
}
