package demodata

import (
	"context"
	"embed"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/biasharahq/platform/internal/config"
)

//go:embed bundles/*.yaml
var bundleFS embed.FS

// Store serves demo bundles from object storage, falling back to the
// bundles compiled into the binary when storage is unconfigured or the
// object is missing.
type Store struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

func NewStore(cfg *config.Config, logger zerolog.Logger) *Store {
	st := &Store{
		bucket: cfg.DemoBundleBucket,
		logger: logger.With().Str("component", "demodata").Logger(),
	}

	if cfg.S3Endpoint != "" && cfg.DemoBundleBucket != "" {
		st.client = s3.New(s3.Options{
			BaseEndpoint: aws.String(cfg.S3Endpoint),
			Region:       cfg.S3Region,
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
			UsePathStyle: true,
		})
	}

	return st
}

// Bundle returns the docs of the named bundle.
func (s *Store) Bundle(ctx context.Context, name string) ([]Doc, error) {
	if name == "" {
		name = DefaultBundle
	}

	if s.client != nil {
		docs, err := s.fetchRemote(ctx, name)
		if err == nil {
			return docs, nil
		}
		s.logger.Warn().Str("bundle", name).Err(err).Msg("remote bundle unavailable, using builtin")
	}

	return s.builtin(name)
}

func (s *Store) fetchRemote(ctx context.Context, name string) ([]Doc, error) {
	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name + ".yaml"),
	})
	if err != nil {
		return nil, fmt.Errorf("get bundle object %s: %w", name, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("read bundle object %s: %w", name, err)
	}
	return parseBundle(name, data)
}

func (s *Store) builtin(name string) ([]Doc, error) {
	data, err := bundleFS.ReadFile("bundles/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no builtin bundle %q", name)
	}
	return parseBundle(name, data)
}

func parseBundle(name string, data []byte) ([]Doc, error) {
	var bundle Bundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", name, err)
	}
	if len(bundle.Docs) == 0 {
		return nil, fmt.Errorf("bundle %s has no docs", name)
	}
	return bundle.Docs, nil
}
