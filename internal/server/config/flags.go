package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/totpkeeper/internal/flagx"
)

var serverFlags = []string{"-a", "-m", "-l", "-s", "-d", "-o", "-n", "-u", "-p", "-b", "-g", "-e", "-k", "-w", "-t", "-i"}

// parseFlags applies the server's short flags from args:
//
//	-a  gRPC bind address        -m  metrics bind address
//	-l  log level                -s  storage backend
//	-d  PostgreSQL DSN           -o  MongoDB URL
//	-n  MongoDB database         -u  S3 root user
//	-p  S3 root password         -b  S3 bucket
//	-g  S3 region                -e  S3 base endpoint
//	-k  encryption key           -w  password hasher
//	-t  bcrypt cost              -i  TOTP issuer
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend (postgres|mongo|s3|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURL, "o", config.MongoURL, "MongoDB URL")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "base64 AES-256 key for TOTP secrets")
	fs.StringVar(&config.PasswordHasher, "w", config.PasswordHasher, "password hasher (bcrypt|argon2id)")
	fs.IntVar(&config.BcryptCost, "t", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.TOTPIssuer, "i", config.TOTPIssuer, "issuer shown in authenticator apps")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
