package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	filesource "github.com/bnema/sms-rce/internal/adapters/allowlist/file"
	staticsource "github.com/bnema/sms-rce/internal/adapters/allowlist/static"
	"github.com/bnema/sms-rce/internal/adapters/exec/shell"
	"github.com/bnema/sms-rce/internal/adapters/inbound/httpapi"
	passstore "github.com/bnema/sms-rce/internal/adapters/secrets/pass"
	"github.com/bnema/sms-rce/internal/adapters/state/memory"
	tomlstate "github.com/bnema/sms-rce/internal/adapters/state/toml"
	"github.com/bnema/sms-rce/internal/adapters/vonage"
	"github.com/bnema/sms-rce/internal/application"
	"github.com/bnema/sms-rce/internal/config"
	"github.com/bnema/sms-rce/internal/domain"
	"github.com/bnema/sms-rce/internal/ports"
)

type app struct {
	gateway *application.AuthorizationService
	server  *httpapi.Server
	// watchAllowList is nil unless an allow-list file is configured.
	watchAllowList func(context.Context) error
}

func wireApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	client, err := wireVonageClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var (
		allowList ports.AllowListSource
		watch     func(context.Context) error
	)
	if cfg.AllowList.File != "" {
		source, err := filesource.New(cfg.AllowList.File, domain.NewAllowList(cfg.AllowList.Numbers...), logger.Named("allowlist"))
		if err != nil {
			return nil, fmt.Errorf("wire allow-list file: %w", err)
		}
		allowList = source
		watch = source.Watch
	} else {
		allowList = staticsource.New(cfg.AllowList.Numbers...)
	}

	verified, err := wireVerifiedStore(cfg)
	if err != nil {
		return nil, err
	}

	verifier := application.NewVerificationService(client, client, application.VerificationOptions{
		Brand:             cfg.Verify.Brand,
		RedirectURL:       cfg.RedirectURL(),
		SilentAuthSandbox: cfg.Verify.SilentAuthSandbox,
		FraudCheckTimeout: cfg.Verify.FraudCheckTimeout,
	}, logger.Named("verify"))

	gateway := application.NewAuthorizationService(
		allowList,
		application.State{
			Blocked:  memory.NewBlockedSet(),
			Pending:  memory.NewPendingTable(),
			Verified: verified,
		},
		verifier,
		application.NewDispatcher(client, cfg.Messages.ChunkSize, logger.Named("dispatch")),
		wireExecutor(cfg, logger),
		ports.SystemClock{},
		application.AuthorizationOptions{
			Cooldown:   cfg.Verify.Cooldown,
			LockShards: cfg.Locks.Shards,
		},
		logger.Named("auth"),
	)

	router := httpapi.NewRouter(httpapi.NewHandler(gateway, logger.Named("webhook")), logger.Named("http"))

	return &app{
		gateway:        gateway,
		server:         httpapi.NewServer(cfg.ListenAddr(), router, logger.Named("http")),
		watchAllowList: watch,
	}, nil
}

func wireVonageClient(ctx context.Context, cfg config.Config, logger *zap.Logger) (*vonage.Client, error) {
	secrets := passstore.NewStore()

	creds := vonage.Credentials{ApplicationID: cfg.Vonage.ApplicationID}
	if cfg.UsableAPIKey() {
		secret, err := secrets.Resolve(ctx, cfg.Vonage.APISecret)
		if err != nil {
			return nil, fmt.Errorf("wire vonage api secret: %w", err)
		}
		creds.APIKey = cfg.Vonage.APIKey
		creds.APISecret = secret
	}
	if cfg.HasApplication() {
		pem, err := secrets.Resolve(ctx, cfg.Vonage.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("wire vonage private key: %w", err)
		}
		key, err := vonage.LoadPrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("wire vonage credentials: %w", err)
		}
		creds.PrivateKey = key
	}

	client, err := vonage.NewClient(creds, vonage.Options{
		BaseURL:            cfg.API.BaseURL,
		NetworkBaseURL:     cfg.API.NetworkBaseURL,
		MessagesURL:        cfg.Messages.URL,
		MessagesSandboxURL: cfg.Messages.SandboxURL,
		SandboxChannels:    cfg.SandboxChannels(),
		RequestTimeout:     cfg.API.Timeout,
	}, logger.Named("vonage"))
	if err != nil {
		return nil, fmt.Errorf("wire vonage client: %w", err)
	}
	return client, nil
}

func wireVerifiedStore(cfg config.Config) (ports.VerifiedStore, error) {
	if cfg.State.VerifiedFile == "" {
		return memory.NewVerifiedSet(), nil
	}
	store, err := tomlstate.NewVerifiedStore(cfg.State.VerifiedFile)
	if err != nil {
		return nil, fmt.Errorf("wire verified senders file: %w", err)
	}
	return store, nil
}

func wireExecutor(cfg config.Config, logger *zap.Logger) *shell.Executor {
	return shell.New(shell.Options{
		Shell:          cfg.Exec.Shell,
		Timeout:        cfg.Exec.Timeout,
		MaxOutputBytes: cfg.Exec.MaxOutputBytes,
	}, logger.Named("exec"))
}
