package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the storefront API.
// Tags used:
// - mapstructure: env key read by viper
// - default: value applied when the key is missing
// - required: if "true", Load fails when the value is empty
type AppConfig struct {
	// Environment specifies the runtime environment (development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the HTTP server listens.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// BaseURL is the public URL of the storefront. Empty means derive it from the request.
	BaseURL string `mapstructure:"APP_BASE_URL"`
	// HTTPTimeoutSeconds bounds every outbound HTTP call.
	HTTPTimeoutSeconds int `mapstructure:"HTTP_TIMEOUT_SECONDS" default:"10"`

	MercadoPago MercadoPagoConfig `mapstructure:",squash"`
	Shipping    ShippingConfig    `mapstructure:",squash"`
	Redis       RedisConfig       `mapstructure:",squash"`
	Store       StoreConfig       `mapstructure:",squash"`
	Auth        AuthConfig        `mapstructure:",squash"`
	Messages    MessagesConfig    `mapstructure:",squash"`
}

// MercadoPagoConfig holds the payment gateway credentials.
type MercadoPagoConfig struct {
	// AccessToken is the private bearer token for the Mercado Pago API.
	AccessToken string `mapstructure:"MP_ACCESS_TOKEN" required:"true"`
	// APIURL is the base URL of the Mercado Pago REST API.
	APIURL string `mapstructure:"MP_API_URL" default:"https://api.mercadopago.com"`
}

// ShippingConfig holds the postal lookup and estimator settings.
type ShippingConfig struct {
	// ViaCEPURL is the base URL of the ViaCEP postal code service.
	ViaCEPURL string `mapstructure:"VIACEP_URL" default:"https://viacep.com.br"`
	// OriginPostalCode is the store's pickup postal code (8 digits).
	OriginPostalCode string `mapstructure:"SHIPPING_ORIGIN_POSTAL_CODE" default:"14680057"`
	// PostalCacheTTLSeconds is how long postal lookups stay cached.
	PostalCacheTTLSeconds int `mapstructure:"POSTAL_CACHE_TTL_SECONDS" default:"86400"`
}

// RedisConfig holds the Redis connection URL.
type RedisConfig struct {
	// URL has the form redis://[:password@]host[:port][/database].
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	// Driver is either "mongo" or "memory".
	Driver string `mapstructure:"STORE_DRIVER" default:"mongo"`
	// MongoURI is the MongoDB connection string.
	MongoURI string `mapstructure:"MONGO_URI" default:"mongodb://localhost:27017"`
	// MongoDatabase is the database holding the storefront collections.
	MongoDatabase string `mapstructure:"MONGO_DATABASE" default:"storefront"`
}

// AuthConfig holds the bearer token verification secret.
type AuthConfig struct {
	// JWTSecret signs and verifies HS256 tokens.
	JWTSecret string `mapstructure:"AUTH_JWT_SECRET" required:"true"`
}

// MessagesConfig limits the public contact form.
type MessagesConfig struct {
	// RateLimitPerMinute is how many messages one client IP may send per minute.
	RateLimitPerMinute int `mapstructure:"MESSAGES_RATE_LIMIT_PER_MINUTE" default:"5"`
}

// HTTPTimeout returns the outbound HTTP timeout as a duration.
func (c *AppConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// PostalCacheTTL returns the postal lookup cache TTL as a duration.
func (c ShippingConfig) PostalCacheTTL() time.Duration {
	return time.Duration(c.PostalCacheTTLSeconds) * time.Second
}

// Load loads configuration from a .env file in path and from environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg AppConfig

	walkFields(reflect.ValueOf(&cfg).Elem(), func(field reflect.StructField, _ reflect.Value) error {
		key := field.Tag.Get("mapstructure")
		if key == "" {
			return nil
		}
		_ = v.BindEnv(key)
		if def := field.Tag.Get("default"); def != "" {
			v.SetDefault(key, def)
		}
		return nil
	})

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateRequired checks that fields tagged required:"true" are set.
func validateRequired(cfg *AppConfig) error {
	return walkFields(reflect.ValueOf(cfg).Elem(), func(field reflect.StructField, value reflect.Value) error {
		if field.Tag.Get("required") == "true" && value.IsZero() {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
		return nil
	})
}

// walkFields calls fn for every leaf field, descending into squashed structs.
func walkFields(val reflect.Value, fn func(reflect.StructField, reflect.Value) error) error {
	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() == reflect.Struct {
			if err := walkFields(val.Field(i), fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(field, val.Field(i)); err != nil {
			return err
		}
	}
	return nil
}
