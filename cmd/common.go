package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"blockfold/internal/audit"
	"blockfold/internal/config"
	"blockfold/internal/logsetup"
	"blockfold/internal/progress"
	"blockfold/internal/sink"
	"blockfold/internal/source"
)

// s3Flags holds the bucket/region/key triple shared by every subcommand
// that can read from or write to S3, mirroring DNShield's S3Config flag
// set but scoped to a single object instead of a polling bucket prefix.
type s3Flags struct {
	bucket string
	region string
	key    string
}

func (f *s3Flags) register(cmd *cobra.Command, prefix string) {
	cmd.Flags().StringVar(&f.bucket, prefix+"-bucket", "", "S3 bucket for "+prefix)
	cmd.Flags().StringVar(&f.region, prefix+"-region", "us-east-1", "S3 region for "+prefix)
	cmd.Flags().StringVar(&f.key, prefix+"-key", "", "S3 object key (output: key prefix) for "+prefix)
}

func (f *s3Flags) set() bool { return f.bucket != "" }

// buildSources turns the given file paths and optional S3 flags into a
// Source slice, local files first, S3 last, matching the order files
// were named on the command line. fileS3 supplies the config file's S3
// credentials (if any) as the last fallback in
// config.GetAWSCredentials's priority order.
func buildSources(ctx context.Context, paths []string, s3f s3Flags, fileS3 config.S3Config) ([]source.Source, error) {
	srcs := make([]source.Source, 0, len(paths)+1)
	for _, p := range paths {
		srcs = append(srcs, source.FileSource{Path: p})
	}

	if s3f.set() {
		s3src, err := source.NewS3Source(ctx, source.S3Config{
			Region:      s3f.region,
			Bucket:      s3f.bucket,
			Key:         s3f.key,
			AccessKeyID: fileS3.AccessKeyID,
			SecretKey:   fileS3.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("cmd: build s3 source: %w", err)
		}
		srcs = append(srcs, s3src)
	}

	if len(srcs) == 0 {
		return nil, fmt.Errorf("cmd: no input sources given (pass --input or an S3 flag set)")
	}
	return srcs, nil
}

// openOutputSink picks the OutputSink for outputPath/s3f, matching
// DNShield's run command pattern of resolving a destination once up
// front rather than threading flags through the pipeline itself.
// outputPath "-" means stdout.
func openOutputSink(ctx context.Context, outputPath string, s3f s3Flags, fileS3 config.S3Config) (sink.Sink, error) {
	if s3f.set() {
		client, err := buildS3Client(ctx, s3f, fileS3)
		if err != nil {
			return nil, err
		}
		return sink.NewS3Sink(client, s3f.bucket, s3f.key), nil
	}

	if outputPath == "" || outputPath == "-" {
		return sink.NewFileSinkWriter(os.Stdout, nil), nil
	}
	return sink.NewFileSink(outputPath)
}

// buildS3Client constructs an s3.Client, resolving credentials through
// config.GetAWSCredentials the same way internal/source.NewS3Source
// does, so an IAM role or environment variable takes priority over any
// static credentials left in a config file.
func buildS3Client(ctx context.Context, s3f s3Flags, fileS3 config.S3Config) (*s3.Client, error) {
	creds, err := config.GetAWSCredentials(&fileS3)
	if err != nil {
		return nil, fmt.Errorf("cmd: resolve aws credentials: %w", err)
	}

	if creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		loaded, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(s3f.region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, "")),
		)
		if err != nil {
			return nil, fmt.Errorf("cmd: load aws config: %w", err)
		}
		return s3.NewFromConfig(loaded), nil
	}

	loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s3f.region))
	if err != nil {
		return nil, fmt.Errorf("cmd: load aws config: %w", err)
	}
	return s3.NewFromConfig(loaded), nil
}

// maybeStartProgress starts a progress.Server bound to addr in the
// background when addr is non-empty, mirroring the optional nature of
// DNShield's dashboard listener: the pipeline runs identically whether
// or not anyone is watching.
func maybeStartProgress(addr string) *progress.Server {
	if addr == "" {
		return nil
	}

	server := progress.NewServer()
	go server.Run()
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/progress", server.ServeWS)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("cmd: progress server exited")
		}
	}()
	return server
}

// loadConfigOrDefault loads, validates, and applies a configuration
// file's log level, returning it for callers to pull limits/S3 defaults
// from.
func loadConfigOrDefault(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("cmd: load config: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("cmd: invalid config: %w", err)
	}
	logsetup.Init(cfg.Logging.Level)

	logrus.WithFields(config.SanitizeConfigForLogging(cfg)).Debug("cmd: loaded configuration")

	for _, warning := range config.ValidateCredentialSecurity(cfg) {
		logrus.Warnf("SECURITY WARNING: %s", warning)
	}

	if err := audit.Initialize(); err != nil {
		logrus.WithError(err).Warn("cmd: failed to initialize audit logging")
	}

	return cfg, nil
}
