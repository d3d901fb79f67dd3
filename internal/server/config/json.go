package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
	"github.com/dmitrijs2005/shopkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the server config. Every field is a
// pointer so that keys absent from the file leave the current value alone.
type JsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	StorageBackend        *string         `json:"storage_backend"`
	DatabaseDSN           *string         `json:"database_dsn"`
	MongoURI              *string         `json:"mongo_uri"`
	MongoDatabase         *string         `json:"mongo_database"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	CartSize              *int            `json:"cart_size"`
	CollapseLoginErrors   *bool           `json:"collapse_login_errors"`
	RedisAddr             *string         `json:"redis_addr"`
	RedisPassword         *string         `json:"redis_password"`
	RedisDB               *int            `json:"redis_db"`
	AuthRateLimit         *int            `json:"auth_rate_limit"`
	AuthRateWindow        *timex.Duration `json:"auth_rate_window"`
	S3RootUser            *string         `json:"s3_root_user"`
	S3RootPassword        *string         `json:"s3_root_password"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
	PublicBaseURL         *string         `json:"public_base_url"`
	Environment           *string         `json:"environment"`
	Debug                 *bool           `json:"debug"`
}

// parseJson overlays values from the JSON file named by -c/-config (or the
// CONFIG environment variable) onto config. Without a file it does nothing.
// An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.CartSize != nil {
		config.CartSize = *c.CartSize
	}
	if c.CollapseLoginErrors != nil {
		config.CollapseLoginErrors = *c.CollapseLoginErrors
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.AuthRateWindow != nil {
		config.AuthRateWindow = c.AuthRateWindow.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.Environment, c.Environment)
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
