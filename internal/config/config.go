package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "GREENPLATE"

var (
	ErrInvalidStoreDriver        = errors.New("store.driver must be sqlite or postgres")
	ErrInvalidClaimPolicy        = errors.New("deals.claim_policy must be decrement or single")
	ErrInvalidVerificationMode   = errors.New("verification.mode must be manual or backend")
	ErrMissingBackendBaseURL     = errors.New("backend.base_url is required")
	ErrNonPositiveBackendTimeout = errors.New("backend.timeout must be positive")
)

type AppConfig struct {
	App          *AppSection
	API          *APIConfig
	Gin          *GinConfig
	Backend      *BackendConfig
	Firebase     *FirebaseConfig
	Payment      *PaymentConfig
	Store        *StoreConfig
	Deals        *DealsConfig
	Menu         *MenuConfig
	Verification *VerificationConfig
}

type AppSection struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`
}

// APIConfig configures the loopback server that hosts the payment widget.
type APIConfig struct {
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	EnableSwagger      bool     `mapstructure:"enable_swagger"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type FirebaseConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	IdentityURL string        `mapstructure:"identity_url"`
	TokenURL    string        `mapstructure:"token_url"`
	RefreshSkew time.Duration `mapstructure:"refresh_skew"`
}

type PaymentConfig struct {
	SDKURL       string `mapstructure:"sdk_url"`
	MerchantName string `mapstructure:"merchant_name"`
	Description  string `mapstructure:"description"`
	ThemeColor   string `mapstructure:"theme_color"`
	OpenBrowser  bool   `mapstructure:"open_browser"`
}

type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type DealsConfig struct {
	ClaimPolicy  string `mapstructure:"claim_policy"`
	PickupPrefix string `mapstructure:"pickup_prefix"`
}

type MenuConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type VerificationConfig struct {
	Mode string `mapstructure:"mode"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "greenplate.log")

	v.SetDefault("api.port", "8787")
	v.SetDefault("api.base_url", "http://localhost:8787")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:8787", "https://checkout.razorpay.com", "https://api.razorpay.com"})
	v.SetDefault("api.enable_swagger", false)

	v.SetDefault("gin.mode", "release")

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout", 10*time.Second)

	v.SetDefault("firebase.identity_url", "https://identitytoolkit.googleapis.com/v1")
	v.SetDefault("firebase.token_url", "https://securetoken.googleapis.com/v1/token")
	v.SetDefault("firebase.refresh_skew", 5*time.Minute)

	v.SetDefault("payment.sdk_url", "https://checkout.razorpay.com/v1/checkout.js")
	v.SetDefault("payment.merchant_name", "GreenPlate")
	v.SetDefault("payment.description", "Food Order Payment")
	v.SetDefault("payment.theme_color", "#10B981")
	v.SetDefault("payment.open_browser", true)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "greenplate.db")
	v.SetDefault("store.port", "5432")
	v.SetDefault("store.ssl_mode", "disable")

	v.SetDefault("deals.claim_policy", "decrement")
	v.SetDefault("deals.pickup_prefix", "GP")

	v.SetDefault("menu.cache_ttl", time.Minute)

	v.SetDefault("verification.mode", "manual")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DATABASE_URL is honoured without the prefix, like most hosting platforms set it.
	_ = v.BindEnv("store.url", envPrefix+"_STORE_URL", "DATABASE_URL")

	return v
}

// Load reads the yml file at path. A missing file is not an error; defaults and
// environment variables still apply.
func Load(path string) (*AppConfig, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{
		App:          &AppSection{},
		API:          &APIConfig{},
		Gin:          &GinConfig{},
		Backend:      &BackendConfig{},
		Firebase:     &FirebaseConfig{},
		Payment:      &PaymentConfig{},
		Store:        &StoreConfig{},
		Deals:        &DealsConfig{},
		Menu:         &MenuConfig{},
		Verification: &VerificationConfig{},
	}

	sections := map[string]any{
		"app":          conf.App,
		"api":          conf.API,
		"gin":          conf.Gin,
		"backend":      conf.Backend,
		"firebase":     conf.Firebase,
		"payment":      conf.Payment,
		"store":        conf.Store,
		"deals":        conf.Deals,
		"menu":         conf.Menu,
		"verification": conf.Verification,
	}
	for key, target := range sections {
		if err := v.UnmarshalKey(key, target); err != nil {
			return nil, fmt.Errorf("v.UnmarshalKey(%s) -> %w", key, err)
		}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *AppConfig) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return ErrInvalidStoreDriver
	}

	switch c.Deals.ClaimPolicy {
	case "decrement", "single":
	default:
		return ErrInvalidClaimPolicy
	}

	switch c.Verification.Mode {
	case "manual", "backend":
	default:
		return ErrInvalidVerificationMode
	}

	if c.Backend.BaseURL == "" {
		return ErrMissingBackendBaseURL
	}
	if c.Backend.Timeout <= 0 {
		return ErrNonPositiveBackendTimeout
	}

	return nil
}

// Watch reloads the file at path on change and hands the new log level to onLevel.
// Only the log level is hot-reloadable; everything else needs a restart.
func Watch(path string, onLevel func(level string)) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		zap.L().Warn("config watch disabled", zap.String("path", path), zap.Error(err))
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := v.GetString("app.log_level")
		zap.L().Info("config changed", zap.String("file", e.Name), zap.String("log_level", level))
		onLevel(level)
	})
	v.WatchConfig()
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
