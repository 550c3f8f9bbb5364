package main

import (
	"context"
	_ "embed"
	"flag"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"salvagedb/pkg/auth"
	"salvagedb/pkg/blob"
	"salvagedb/pkg/config"
	"salvagedb/pkg/docstore"
	"salvagedb/pkg/imaging"
	"salvagedb/pkg/inventory"
	"salvagedb/pkg/log"
	"salvagedb/pkg/scratch"
	"salvagedb/pkg/server"
)

//go:embed VERSION
var Version string

func main() {
	// Initialize logger first
	_ = log.Logger

	addr := flag.String("addr", "", "Listen address (overrides SALVAGEDB_LISTEN_ADDR)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *debug || cfg.Debug {
		log.SetDebugMode()
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	scratchDir, err := scratch.New(cfg.ScratchDir)
	if err != nil {
		log.Fatal().Err(err).Str("scratch_dir", cfg.ScratchDir).Msg("Failed to create scratch directory")
	}

	docs, err := docstore.NewStore(cfg.DBPath, cfg.AdminID)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("Failed to open document store")
	}
	defer func() {
		if err := docs.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close document store")
		}
	}()

	blobs := blob.New(s3Client(cfg), cfg.Bucket, cfg.PublicURLFormat, scratchDir, cfg.StoreTimeout)
	svc := inventory.New(blobs, docs, imaging.New(scratchDir), cfg.AssetRoot)

	authenticator := auth.New(auth.Config{
		Users: cfg.AllowedUsers,
		Admin: cfg.AdminID,
	})

	srv := server.New(svc, authenticator, strings.TrimSpace(Version))
	if err := srv.Start(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	os.Exit(0)
}

func s3Client(cfg *config.Config) *s3.Client {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	// Static credentials when configured, the SDK default chain otherwise.
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load object-store configuration")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})
}
