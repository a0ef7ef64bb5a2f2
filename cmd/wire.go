package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bnema/billboard-cli/internal/adapters/chain/ethrpc"
	billboardrender "github.com/bnema/billboard-cli/internal/adapters/render/billboard"
	tomlrepo "github.com/bnema/billboard-cli/internal/adapters/repo/toml"
	"github.com/bnema/billboard-cli/internal/adapters/telemetry"
	"github.com/bnema/billboard-cli/internal/adapters/wallet/bridge"
	"github.com/bnema/billboard-cli/internal/adapters/wallet/injected"
	"github.com/bnema/billboard-cli/internal/application"
	"github.com/bnema/billboard-cli/internal/config"
	"github.com/bnema/billboard-cli/internal/ports"
	"github.com/bnema/billboard-cli/internal/version"
	"github.com/charmbracelet/log"
)

var errAppNotLoaded = errors.New("configuration not loaded")

type app struct {
	settings config.Settings
	logger   *log.Logger
	sessions ports.SessionRepository
	renderer func(application.Snapshot, billboardrender.RenderOptions) (string, error)
	shutdown telemetry.ShutdownFunc
	loaded   bool
}

// runtime is one command's live graph of adapters. close releases every
// connection it opened.
type runtime struct {
	sessions   *application.SessionManager
	controller *application.SyncController
	closers    []func()
}

type runtimeOptions struct {
	watch bool
}

func (a *app) load(ctx context.Context, configPath string, stderr io.Writer) error {
	v, err := config.Load(configPath)
	if err != nil {
		return err
	}

	settings, err := config.Resolve(v)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(stderr, settings.LogLevel)
	if err != nil {
		return err
	}

	repo, err := tomlrepo.NewSessionRepository(v)
	if err != nil {
		return fmt.Errorf("wire session repository: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       settings.OtelEndpoint,
		Disabled:       settings.OtelDisabled,
		ServiceName:    "billboard-cli",
		ServiceVersion: version.Version,
	})
	if err != nil {
		logger.Warn("tracing disabled", "err", err)
	}

	a.settings = settings
	a.logger = logger
	a.sessions = repo
	a.renderer = billboardrender.Render
	a.shutdown = shutdown
	a.loaded = true
	return nil
}

func (a *app) close(ctx context.Context) {
	if a.shutdown == nil {
		return
	}
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("flush traces", "err", err)
	}
}

func (a *app) newRuntime(ctx context.Context, opts runtimeOptions) (*runtime, error) {
	if !a.loaded {
		return nil, errAppNotLoaded
	}

	endpoint, err := application.ResolveReadEndpoint(a.settings.RPCURL, a.settings.InjectedURL)
	if err != nil {
		return nil, err
	}

	rt := &runtime{}

	client, err := ethrpc.Dial(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, client.Close)

	contract, err := ethrpc.NewContract(client, ethrpc.Config{
		Address:      a.settings.ContractAddress,
		DeployBlock:  a.settings.DeployBlock,
		PollInterval: a.settings.PollInterval,
		DropTimeout:  a.settings.DropTimeout,
		Logger:       a.logger,
	})
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("wire billboard contract: %w", err)
	}

	var injectedProvider ports.InjectedProvider
	if a.settings.InjectedURL != "" {
		walletClient, err := injected.Dial(ctx, a.settings.InjectedURL)
		if err != nil {
			a.logger.Debug("injected wallet unavailable", "url", a.settings.InjectedURL, "err", err)
		} else {
			rt.closers = append(rt.closers, walletClient.Close)
			injectedProvider = injected.NewProvider(walletClient, injected.Config{
				PollInterval: a.settings.PollInterval,
				Logger:       a.logger,
			})
		}
	}

	var remote ports.RemoteSessionProtocol
	if a.settings.BridgeURL != "" {
		remote = bridge.Client{
			BaseURL:         a.settings.BridgeURL,
			HTTPClient:      http.DefaultClient,
			PollInterval:    a.settings.PollInterval,
			ApprovalTimeout: a.settings.ApprovalTimeout,
			Logger:          a.logger,
		}
	}

	rt.sessions = application.NewSessionManager(application.SessionManagerConfig{
		Injected: injectedProvider,
		Remote:   remote,
		Sessions: a.sessions,
		Clock:    ports.SystemClock{},
		Logger:   a.logger,
	})
	rt.closers = append(rt.closers, rt.sessions.Close)

	var watcher ports.UpdateWatcher
	if opts.watch {
		watcher = contract
	}

	rt.controller = application.NewSyncController(
		rt.sessions,
		application.NewContractGateway(contract, a.logger),
		application.NewProviderResolver(rt.sessions, injectedProvider, remote),
		watcher,
		application.NewStateStore(),
		application.SyncControllerConfig{TokenID: a.settings.TokenID, Logger: a.logger},
	)
	rt.closers = append(rt.closers, rt.controller.Close)

	return rt, nil
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
