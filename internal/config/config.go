// Package config resolves settings from an optional TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	passstore "github.com/bnema/sms-rce/internal/adapters/secrets/pass"
	"github.com/bnema/sms-rce/internal/domain"
)

const (
	KeyAPIKey            = "vonage.api_key"
	KeyAPISecret         = "vonage.api_secret"
	KeyApplicationID     = "vonage.application_id"
	KeyPrivateKey        = "vonage.private_key"
	KeyServerURL         = "server.url"
	KeyServerPort        = "server.port"
	KeyAllowListNumbers  = "allowlist.numbers"
	KeyAllowListFile     = "allowlist.file"
	KeyBrand             = "verify.brand"
	KeyCooldown          = "verify.cooldown"
	KeySilentAuthSandbox = "verify.silent_auth_sandbox"
	KeyFraudCheckTimeout = "verify.fraud_check_timeout"
	KeyChunkSize         = "messages.chunk_size"
	KeyMessagesURL       = "messages.url"
	KeyMessagesSandbox   = "messages.sandbox_url"
	KeySandboxChannels   = "messages.sandbox_channels"
	KeyAPIBaseURL        = "api.base_url"
	KeyNetworkBaseURL    = "api.network_base_url"
	KeyAPITimeout        = "api.timeout"
	KeyShell             = "exec.shell"
	KeyExecTimeout       = "exec.timeout"
	KeyExecMaxOutput     = "exec.max_output_bytes"
	KeyLockShards        = "locks.shards"
	KeyVerifiedFile      = "state.verified_file"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"

	// RegistrationPath is where the silent auth redirect lands.
	RegistrationPath = "/register/complete"

	defaultConfigName = "rce"

	minAPIKeyLength    = 7
	minAPISecretLength = 16
)

// envBindings lists the accepted variables per key, preferred name first.
var envBindings = map[string][]string{
	KeyAPIKey:            {"VONAGE_API_KEY", "VCR_API_ACCOUNT_ID"},
	KeyAPISecret:         {"VONAGE_API_SECRET", "VCR_API_ACCOUNT_SECRET"},
	KeyApplicationID:     {"VONAGE_APPLICATION_ID", "VCR_API_APPLICATION_ID"},
	KeyPrivateKey:        {"VONAGE_PRIVATE_KEY_PATH", "VCR_PRIVATE_KEY"},
	KeyServerURL:         {"VONAGE_HACKATHON_SERVER_URL", "RCE_SERVER_URL"},
	KeyServerPort:        {"VCR_PORT", "RCE_PORT"},
	KeyAllowListNumbers:  {"TO_NUMBER", "RCE_ALLOWED_NUMBERS"},
	KeyAllowListFile:     {"RCE_ALLOWLIST_FILE"},
	KeyBrand:             {"RCE_BRAND"},
	KeyCooldown:          {"RCE_VERIFY_COOLDOWN"},
	KeySilentAuthSandbox: {"RCE_SILENT_AUTH_SANDBOX"},
	KeyFraudCheckTimeout: {"RCE_FRAUD_CHECK_TIMEOUT"},
	KeyChunkSize:         {"RCE_CHUNK_SIZE"},
	KeyMessagesURL:       {"RCE_MESSAGES_URL"},
	KeyMessagesSandbox:   {"RCE_MESSAGES_SANDBOX_URL"},
	KeySandboxChannels:   {"RCE_SANDBOX_CHANNELS"},
	KeyAPIBaseURL:        {"RCE_API_BASE_URL"},
	KeyNetworkBaseURL:    {"RCE_NETWORK_API_BASE_URL"},
	KeyAPITimeout:        {"RCE_API_TIMEOUT"},
	KeyShell:             {"RCE_SHELL"},
	KeyExecTimeout:       {"RCE_EXEC_TIMEOUT"},
	KeyExecMaxOutput:     {"RCE_EXEC_MAX_OUTPUT"},
	KeyLockShards:        {"RCE_LOCK_SHARDS"},
	KeyVerifiedFile:      {"RCE_VERIFIED_FILE"},
	KeyLogLevel:          {"RCE_LOG_LEVEL"},
	KeyLogFormat:         {"RCE_LOG_FORMAT"},
}

type Config struct {
	Vonage    VonageConfig    `json:"vonage"`
	Server    ServerConfig    `json:"server"`
	AllowList AllowListConfig `json:"allowlist"`
	Verify    VerifyConfig    `json:"verify"`
	Messages  MessagesConfig  `json:"messages"`
	API       APIConfig       `json:"api"`
	Exec      ExecConfig      `json:"exec"`
	Locks     LocksConfig     `json:"locks"`
	State     StateConfig     `json:"state"`
	Log       LogConfig       `json:"log"`
	// File is the config file that was read, if any.
	File string `json:"file,omitempty"`
}

type VonageConfig struct {
	APIKey        string `json:"api_key,omitempty"`
	APISecret     string `json:"api_secret,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
	// PrivateKey is PEM text, a path to a PEM file or a pass reference.
	PrivateKey string `json:"private_key,omitempty"`
}

type ServerConfig struct {
	URL  string `json:"url"`
	Port int    `json:"port"`
}

type AllowListConfig struct {
	Numbers []string `json:"numbers"`
	File    string   `json:"file,omitempty"`
}

type VerifyConfig struct {
	Brand             string        `json:"brand"`
	Cooldown          time.Duration `json:"cooldown"`
	SilentAuthSandbox bool          `json:"silent_auth_sandbox"`
	FraudCheckTimeout time.Duration `json:"fraud_check_timeout"`
}

type MessagesConfig struct {
	ChunkSize       int      `json:"chunk_size"`
	URL             string   `json:"url"`
	SandboxURL      string   `json:"sandbox_url"`
	SandboxChannels []string `json:"sandbox_channels"`
}

type APIConfig struct {
	BaseURL        string        `json:"base_url"`
	NetworkBaseURL string        `json:"network_base_url"`
	Timeout        time.Duration `json:"timeout"`
}

type ExecConfig struct {
	Shell          string        `json:"shell"`
	Timeout        time.Duration `json:"timeout"`
	MaxOutputBytes int           `json:"max_output_bytes"`
}

type LocksConfig struct {
	Shards int `json:"shards"`
}

type StateConfig struct {
	// VerifiedFile persists verified senders across restarts. Empty keeps
	// them in memory only.
	VerifiedFile string `json:"verified_file,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Error is a configuration problem that prevents serving traffic.
type Error struct {
	Key string
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Msg)
}

func invalid(key, format string, args ...any) error {
	return &Error{Key: key, Msg: fmt.Sprintf(format, args...)}
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, names := range envBindings {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerPort, 8080)
	v.SetDefault(KeyBrand, "Hackathon")
	v.SetDefault(KeyCooldown, 2*time.Minute)
	v.SetDefault(KeySilentAuthSandbox, true)
	v.SetDefault(KeyFraudCheckTimeout, 5*time.Second)
	v.SetDefault(KeyChunkSize, 1000)
	v.SetDefault(KeyMessagesURL, "https://api.nexmo.com/v1/messages")
	v.SetDefault(KeyMessagesSandbox, "https://messages-sandbox.nexmo.com/v1/messages")
	v.SetDefault(KeySandboxChannels, []string{"whatsapp", "viber_service", "messenger"})
	v.SetDefault(KeyAPIBaseURL, "https://api.nexmo.com")
	v.SetDefault(KeyNetworkBaseURL, "https://api-eu.vonage.com")
	v.SetDefault(KeyAPITimeout, 15*time.Second)
	v.SetDefault(KeyShell, "sh")
	v.SetDefault(KeyExecTimeout, 5*time.Minute)
	v.SetDefault(KeyExecMaxOutput, 64*1024)
	v.SetDefault(KeyLockShards, 64)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
}

// Load resolves the configuration and validates it.
func Load(path string) (Config, error) {
	cfg, err := Resolve(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve reads path when given, otherwise rce.toml from the working
// directory if present, then applies the environment. It does not validate.
func Resolve(path string) (Config, error) {
	v := New()
	v.SetConfigType("toml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	return Read(v)
}

// Read decodes v without validating.
func Read(v *viper.Viper) (Config, error) {
	port, err := intValue(v, KeyServerPort)
	if err != nil {
		return Config{}, err
	}
	chunkSize, err := intValue(v, KeyChunkSize)
	if err != nil {
		return Config{}, err
	}
	maxOutput, err := intValue(v, KeyExecMaxOutput)
	if err != nil {
		return Config{}, err
	}
	shards, err := intValue(v, KeyLockShards)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Vonage: VonageConfig{
			APIKey:        strings.TrimSpace(v.GetString(KeyAPIKey)),
			APISecret:     strings.TrimSpace(v.GetString(KeyAPISecret)),
			ApplicationID: strings.TrimSpace(v.GetString(KeyApplicationID)),
			PrivateKey:    strings.TrimSpace(v.GetString(KeyPrivateKey)),
		},
		Server: ServerConfig{
			URL:  strings.TrimSpace(v.GetString(KeyServerURL)),
			Port: port,
		},
		AllowList: AllowListConfig{
			Numbers: stringList(v.Get(KeyAllowListNumbers)),
			File:    strings.TrimSpace(v.GetString(KeyAllowListFile)),
		},
		Verify: VerifyConfig{
			Brand:             v.GetString(KeyBrand),
			Cooldown:          v.GetDuration(KeyCooldown),
			SilentAuthSandbox: v.GetBool(KeySilentAuthSandbox),
			FraudCheckTimeout: v.GetDuration(KeyFraudCheckTimeout),
		},
		Messages: MessagesConfig{
			ChunkSize:       chunkSize,
			URL:             v.GetString(KeyMessagesURL),
			SandboxURL:      v.GetString(KeyMessagesSandbox),
			SandboxChannels: stringList(v.Get(KeySandboxChannels)),
		},
		API: APIConfig{
			BaseURL:        v.GetString(KeyAPIBaseURL),
			NetworkBaseURL: v.GetString(KeyNetworkBaseURL),
			Timeout:        v.GetDuration(KeyAPITimeout),
		},
		Exec: ExecConfig{
			Shell:          v.GetString(KeyShell),
			Timeout:        v.GetDuration(KeyExecTimeout),
			MaxOutputBytes: maxOutput,
		},
		Locks: LocksConfig{Shards: shards},
		State: StateConfig{
			VerifiedFile: strings.TrimSpace(v.GetString(KeyVerifiedFile)),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		File: v.ConfigFileUsed(),
	}, nil
}

// Validate reports every problem at once, each as an *Error.
func (c Config) Validate() error {
	var errs []error

	if c.Server.URL == "" {
		errs = append(errs, invalid(KeyServerURL, "server URL is required"))
	} else if parsed, err := url.Parse(c.Server.URL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, invalid(KeyServerURL, "%q is not an absolute http(s) URL", c.Server.URL))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, invalid(KeyServerPort, "port %d is out of range", c.Server.Port))
	}

	if len(c.AllowList.Numbers) == 0 && c.AllowList.File == "" {
		errs = append(errs, invalid(KeyAllowListNumbers, "at least one allowed number or an allow-list file is required"))
	}

	if c.Vonage.ApplicationID != "" {
		if _, err := uuid.Parse(c.Vonage.ApplicationID); err != nil {
			errs = append(errs, invalid(KeyApplicationID, "%q is not a valid UUID", c.Vonage.ApplicationID))
		}
	}
	if !c.HasApplication() && !c.UsableAPIKey() {
		errs = append(errs, invalid("vonage", "either application id and private key, or an API key and secret, are required"))
	}

	if c.Messages.ChunkSize <= 0 {
		errs = append(errs, invalid(KeyChunkSize, "must be positive, got %d", c.Messages.ChunkSize))
	}
	for _, raw := range c.Messages.SandboxChannels {
		if _, err := domain.ParseChannel(raw); err != nil {
			errs = append(errs, invalid(KeySandboxChannels, "%v", err))
		}
	}

	if c.Verify.Cooldown < 0 {
		errs = append(errs, invalid(KeyCooldown, "must not be negative"))
	}
	if c.Verify.FraudCheckTimeout < 0 {
		errs = append(errs, invalid(KeyFraudCheckTimeout, "must not be negative"))
	}
	if c.Exec.Timeout < 0 {
		errs = append(errs, invalid(KeyExecTimeout, "must not be negative"))
	}
	if c.Exec.MaxOutputBytes < 0 {
		errs = append(errs, invalid(KeyExecMaxOutput, "must not be negative"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, invalid(KeyLogFormat, "unsupported format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func (c Config) HasApplication() bool {
	return c.Vonage.ApplicationID != "" && c.Vonage.PrivateKey != ""
}

// UsableAPIKey reports whether the key pair looks like real credentials. A
// secret stored in pass is taken at face value.
func (c Config) UsableAPIKey() bool {
	if len(c.Vonage.APIKey) < minAPIKeyLength {
		return false
	}
	return passstore.IsRef(c.Vonage.APISecret) || len(c.Vonage.APISecret) >= minAPISecretLength
}

func (c Config) RedirectURL() string {
	return strings.TrimRight(c.Server.URL, "/") + RegistrationPath
}

func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func (c Config) SandboxChannels() []domain.Channel {
	channels := make([]domain.Channel, 0, len(c.Messages.SandboxChannels))
	for _, raw := range c.Messages.SandboxChannels {
		if channel, err := domain.ParseChannel(raw); err == nil {
			channels = append(channels, channel)
		}
	}
	return channels
}

// Redacted hides secrets for display. Key paths and pass references are kept.
func (c Config) Redacted() Config {
	out := c
	out.AllowList.Numbers = append([]string(nil), c.AllowList.Numbers...)
	out.Messages.SandboxChannels = append([]string(nil), c.Messages.SandboxChannels...)
	if out.Vonage.APISecret != "" && !passstore.IsRef(out.Vonage.APISecret) {
		out.Vonage.APISecret = redactedValue
	}
	if strings.HasPrefix(out.Vonage.PrivateKey, "-----BEGIN") {
		out.Vonage.PrivateKey = redactedValue
	}
	return out
}

const redactedValue = "********"

// stringList accepts a TOML array or a comma separated string.
func stringList(raw any) []string {
	var items []string
	switch value := raw.(type) {
	case nil:
		return nil
	case string:
		items = strings.FieldsFunc(value, func(r rune) bool {
			return r == ',' || r == ';' || r == '\n'
		})
	case []string:
		items = value
	case []any:
		for _, item := range value {
			items = append(items, fmt.Sprint(item))
		}
	default:
		items = []string{fmt.Sprint(value)}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func intValue(v *viper.Viper, key string) (int, error) {
	raw := v.Get(key)
	switch value := raw.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, invalid(key, "%q is not an integer", value)
		}
		return n, nil
	default:
		return v.GetInt(key), nil
	}
}
