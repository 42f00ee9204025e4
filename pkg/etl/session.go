package etl

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/audiolake/audiolake/pkg/io/s3io"
)

// Session is the shared run context: logger, configuration, surrogate-key
// node, and a lazily built S3 client. Both stages use one Session; they run
// sequentially and never mutate it after construction.
type Session struct {
	Log  *zap.Logger
	Cfg  Config
	Node *snowflake.Node

	s3 *s3io.Client
}

func NewSession(cfg Config) (*Session, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	// Node id varies per process so ids never collide across concurrent
	// runs against the same output.
	node, err := snowflake.NewNode(int64(os.Getpid() % 1024))
	if err != nil {
		return nil, fmt.Errorf("session: snowflake node: %w", err)
	}
	return &Session{Log: log, Cfg: cfg, Node: node}, nil
}

func (s *Session) Close() {
	_ = s.Log.Sync()
}

func (s *Session) s3Client() (*s3io.Client, error) {
	if s.s3 != nil {
		return s.s3, nil
	}
	c, err := s3io.NewClient(s.Cfg.AWS.Region, s3io.Credentials{
		AccessKeyID:     s.Cfg.AWS.AccessKeyID,
		SecretAccessKey: s.Cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	s.s3 = c
	return c, nil
}

// StageInput resolves the configured input root to a local directory,
// downloading it from S3 into a temp dir when necessary. The returned
// cleanup removes any staging dir.
func (s *Session) StageInput(ctx context.Context) (string, func(), error) {
	in := s.Cfg.S3.InputPath
	if !s3io.IsURL(in) {
		return in, func() {}, nil
	}
	bucket, prefix, err := s3io.ParseURL(in)
	if err != nil {
		return "", nil, err
	}
	client, err := s.s3Client()
	if err != nil {
		return "", nil, err
	}
	dir, err := os.MkdirTemp("", "audiolake-in-")
	if err != nil {
		return "", nil, err
	}
	n, err := client.DownloadPrefix(ctx, bucket, prefix, dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	s.Log.Info("staged input from s3",
		zap.String("bucket", bucket), zap.String("prefix", prefix), zap.Int("objects", n))
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// StageOutput resolves the configured output root to a local directory to
// write into. For S3 outputs the stages write to a temp dir which
// PublishOutput later uploads.
func (s *Session) StageOutput() (string, func(), error) {
	out := s.Cfg.S3.OutputPath
	if !s3io.IsURL(out) {
		return out, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "audiolake-out-")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// PublishOutput uploads a local output dir to the configured S3 output
// root. No-op for local outputs.
func (s *Session) PublishOutput(ctx context.Context, localOut string) error {
	out := s.Cfg.S3.OutputPath
	if !s3io.IsURL(out) {
		return nil
	}
	bucket, prefix, err := s3io.ParseURL(out)
	if err != nil {
		return err
	}
	client, err := s.s3Client()
	if err != nil {
		return err
	}
	n, err := client.UploadDir(ctx, localOut, bucket, prefix)
	if err != nil {
		return err
	}
	s.Log.Info("published output to s3",
		zap.String("bucket", bucket), zap.String("prefix", prefix), zap.Int("files", n))
	return nil
}
