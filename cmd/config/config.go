package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ListenAddr string

	DatabaseDSN      string
	DatabasePoolSize int

	JWTSecret string

	HostKind           string
	HostPublicKey      string
	HostPrivateKey     string
	HostURLEndpoint    string
	HostUploadEndpoint string
	CredentialTTL      time.Duration

	AWSRegion string
	S3Bucket  string
)

func Load() {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("cmd/config/")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("database.pool_size", 10)
	viper.SetDefault("media_host.kind", "signed")
	viper.SetDefault("media_host.credential_ttl", "30m")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error reading config file, %s", err)
		}
	}

	ListenAddr = viper.GetString("server.addr")

	DatabaseDSN = viper.GetString("database.dsn")
	DatabasePoolSize = viper.GetInt("database.pool_size")
	if DatabaseDSN == "" {
		log.Fatal("database.dsn is required (set DATABASE_DSN or config.yaml)")
	}

	JWTSecret = viper.GetString("auth.jwt_secret")

	HostKind = viper.GetString("media_host.kind")
	HostPublicKey = viper.GetString("media_host.public_key")
	HostPrivateKey = viper.GetString("media_host.private_key")
	HostURLEndpoint = viper.GetString("media_host.url_endpoint")
	HostUploadEndpoint = viper.GetString("media_host.upload_endpoint")
	CredentialTTL = viper.GetDuration("media_host.credential_ttl")

	AWSRegion = viper.GetString("aws.region")
	S3Bucket = viper.GetString("aws.s3_bucket")
}
