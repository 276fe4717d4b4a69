package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bnema/rclctl/internal/adapters/events/ws"
	"github.com/bnema/rclctl/internal/adapters/rcl2"
	tomlrepo "github.com/bnema/rclctl/internal/adapters/repo/toml"
	chainstore "github.com/bnema/rclctl/internal/adapters/secrets/chain"
	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/logging"
	"github.com/bnema/rclctl/internal/ports"
)

const (
	configDir       = ".config/rclctl"
	configName      = "config"
	configType      = "toml"
	envPrefix       = "RCLCTL"
	defaultTokenRef = "rclctl/default/api_key"

	keyBaseURL        = "backend.base_url"
	keyWSPath         = "backend.ws_path"
	keyTimeout        = "backend.timeout"
	keyTokenRef       = "backend.token_ref"
	keyAPIKey         = "backend.api_key"
	keyReconnectDelay = "ws.reconnect_delay"
	keyRefreshDelay   = "restraints.refresh_delay"
	keyAuditLimit     = "audit.limit"
	keyDecisionLimit  = "decisions.limit"
	keyLogFile        = "log.file"
	keyLogLevel       = "log.level"
)

type app struct {
	cfg         *viper.Viper
	profiles    ports.ProfileRepository
	secretStore ports.SecretStore
	httpClient  *http.Client
	clock       ports.Clock
	now         func() time.Time

	// set from persistent flags before any RunE
	profileName string
	baseURL     string

	logger *zap.Logger
}

// backend is everything a command needs once the connection is resolved.
type backend struct {
	conn     connection
	client   *rcl2.Client
	service  *application.Service
	debt     *application.DebtService
	panels   []application.Panel
	registry map[string]application.Panel
}

type connection struct {
	Profile  string
	BaseURL  string
	WSPath   string
	TokenRef string
	APIKey   string
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg, err := loadConfig(homeDir)
	if err != nil {
		return nil, err
	}

	repo, err := tomlrepo.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(homeDir, configDir, "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	return &app{
		cfg:         cfg,
		profiles:    repo,
		secretStore: secretStore,
		httpClient:  http.DefaultClient,
		clock:       ports.SystemClock{},
		now:         time.Now,
		logger:      zap.NewNop(),
	}, nil
}

func loadConfig(homeDir string) (*viper.Viper, error) {
	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))

	cfg.SetDefault(keyBaseURL, "http://127.0.0.1:8000")
	cfg.SetDefault(keyWSPath, ws.DefaultPath)
	cfg.SetDefault(keyTimeout, 30*time.Second)
	cfg.SetDefault(keyTokenRef, "")
	cfg.SetDefault(keyReconnectDelay, ws.DefaultReconnectDelay)
	cfg.SetDefault(keyRefreshDelay, application.DefaultRefreshDelay)
	cfg.SetDefault(keyAuditLimit, 20)
	cfg.SetDefault(keyDecisionLimit, 20)
	cfg.SetDefault(keyLogFile, "")
	cfg.SetDefault(keyLogLevel, "info")
	cfg.SetDefault(tomlrepo.ProfilesPathKey, filepath.Join(homeDir, configDir, "profiles.toml"))

	for key, env := range map[string]string{
		keyBaseURL:  "BASE_URL",
		keyWSPath:   "WS_PATH",
		keyTokenRef: "TOKEN_REF",
		keyAPIKey:   "API_KEY",
		keyLogFile:  "LOG_FILE",
		keyLogLevel: "LOG_LEVEL",
	} {
		if err := cfg.BindEnv(key, envPrefix+"_"+env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}

func (a *app) initLogger() error {
	logger, err := logging.New(a.cfg.GetString(keyLogLevel), a.cfg.GetString(keyLogFile))
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// resolveConnection picks the backend to talk to. A --base-url flag wins,
// then --profile, then the active profile, then config and environment.
func (a *app) resolveConnection(ctx context.Context) (connection, error) {
	conn := connection{
		BaseURL:  a.cfg.GetString(keyBaseURL),
		WSPath:   a.cfg.GetString(keyWSPath),
		TokenRef: a.cfg.GetString(keyTokenRef),
	}

	profile, found, err := a.selectedProfile(ctx)
	if err != nil {
		return connection{}, err
	}
	if found {
		conn.Profile = profile.Name
		conn.BaseURL = profile.BaseURL
		if profile.WSPath != "" {
			conn.WSPath = profile.WSPath
		}
		if profile.TokenRef != "" {
			conn.TokenRef = profile.TokenRef
		}
	}
	if a.baseURL != "" {
		conn.BaseURL = a.baseURL
	}

	key, err := a.resolveAPIKey(ctx, conn)
	if err != nil {
		return connection{}, err
	}
	conn.APIKey = key
	return conn, nil
}

func (a *app) selectedProfile(ctx context.Context) (domain.Profile, bool, error) {
	if name := strings.TrimSpace(a.profileName); name != "" {
		profile, err := a.profiles.GetByName(ctx, name)
		if err != nil {
			return domain.Profile{}, false, fmt.Errorf("load profile %q: %w", name, err)
		}
		return profile, true, nil
	}

	profile, err := a.profiles.Active(ctx)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return domain.Profile{}, false, nil
	}
	if err != nil {
		return domain.Profile{}, false, fmt.Errorf("load active profile: %w", err)
	}
	return profile, true, nil
}

// resolveAPIKey returns "" when no key is configured anywhere; a configured
// reference that points at nothing is an error.
func (a *app) resolveAPIKey(ctx context.Context, conn connection) (string, error) {
	if key := strings.TrimSpace(a.cfg.GetString(keyAPIKey)); key != "" {
		return key, nil
	}

	ref := conn.TokenRef
	explicit := ref != ""
	if !explicit {
		ref = defaultTokenRef
	}

	key, err := a.secretStore.Get(ctx, ref)
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, domain.ErrSecretNotFound) && !explicit:
		return "", nil
	case errors.Is(err, domain.ErrSecretNotFound):
		return "", fmt.Errorf("no API key stored under %q; run rclctl token set: %w", ref, err)
	default:
		return "", fmt.Errorf("load API key %q: %w", ref, err)
	}
}

func (a *app) connect(ctx context.Context) (*backend, error) {
	conn, err := a.resolveConnection(ctx)
	if err != nil {
		return nil, err
	}

	client, err := rcl2.New(conn.BaseURL,
		rcl2.WithHTTPClient(a.httpClient),
		rcl2.WithAPIKey(conn.APIKey),
		rcl2.WithRequestTimeout(a.cfg.GetDuration(keyTimeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("wire backend client: %w", err)
	}

	limits := application.DefaultPanelLimits()
	limits.Audit = a.cfg.GetInt(keyAuditLimit)
	limits.Decisions = a.cfg.GetInt(keyDecisionLimit)

	panels := application.NewPanels(client, limits)
	registry := make(map[string]application.Panel, len(panels))
	for _, panel := range panels {
		registry[panel.Name()] = panel
	}

	return &backend{
		conn:     conn,
		client:   client,
		service:  application.NewService(client),
		debt:     application.NewDebtService(client),
		panels:   panels,
		registry: registry,
	}, nil
}

func (b *backend) panel(name string) application.Panel {
	return b.registry[name]
}

func (a *app) newSession(b *backend) *application.RestraintSession {
	return application.NewRestraintSession(b.client, a.clock, a.cfg.GetDuration(keyRefreshDelay))
}

func (a *app) newChannel(b *backend, observer ws.Observer) (*ws.Channel, error) {
	eventURL, err := ws.EventURL(b.conn.BaseURL, b.conn.WSPath)
	if err != nil {
		return nil, fmt.Errorf("resolve event url: %w", err)
	}

	opts := []ws.Option{
		ws.WithAPIKey(b.conn.APIKey),
		ws.WithReconnectDelay(a.cfg.GetDuration(keyReconnectDelay)),
		ws.WithLogger(a.logger),
	}
	if observer != nil {
		opts = append(opts, ws.WithObserver(observer))
	}
	return ws.NewChannel(eventURL, opts...), nil
}
