// Package s3io stages data between S3 prefixes and the local filesystem.
package s3io

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// IsURL reports whether path addresses an S3 location.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "s3a://")
}

// ParseURL splits an s3:// or s3a:// URL into bucket and key prefix.
func ParseURL(raw string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		rest, ok = strings.CutPrefix(raw, "s3a://")
	}
	if !ok {
		return "", "", fmt.Errorf("s3io: not an s3 url: %q", raw)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3io: missing bucket in %q", raw)
	}
	return bucket, prefix, nil
}

// Credentials are static keys threaded from configuration. Empty fields
// fall back to the SDK's default provider chain.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

type Client struct {
	s3         *s3.S3
	downloader *s3manager.Downloader
	uploader   *s3manager.Uploader
	workers    int
}

func NewClient(region string, creds Credentials) (*Client, error) {
	cfg := aws.NewConfig().WithRegion(region)
	if creds.AccessKeyID != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(creds.AccessKeyID, creds.SecretAccessKey, ""))
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("s3io: session: %w", err)
	}
	return &Client{
		s3:         s3.New(sess),
		downloader: s3manager.NewDownloader(sess),
		uploader:   s3manager.NewUploader(sess),
		workers:    runtime.NumCPU() * 2,
	}, nil
}

// DownloadPrefix downloads every object under bucket/prefix into dest,
// preserving key structure relative to the prefix. Returns the object count.
func (c *Client) DownloadPrefix(ctx context.Context, bucket, prefix, dest string) (int, error) {
	var keys []string
	err := c.s3.ListObjectsV2PagesWithContext(ctx,
		&s3.ListObjectsV2Input{Bucket: aws.String(bucket), Prefix: aws.String(prefix)},
		func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				if !strings.HasSuffix(*obj.Key, "/") {
					keys = append(keys, *obj.Key)
				}
			}
			return !lastPage
		})
	if err != nil {
		return 0, fmt.Errorf("s3io: list s3://%s/%s: %w", bucket, prefix, err)
	}

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for _, key := range keys {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := c.downloadOne(ctx, bucket, k, prefix, dest); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(key)
	}
	wg.Wait()
	if firstErr != nil {
		return 0, firstErr
	}
	return len(keys), nil
}

func (c *Client) downloadOne(ctx context.Context, bucket, key, prefix, dest string) error {
	rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
	path := filepath.Join(dest, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = c.downloader.DownloadWithContext(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("s3io: download s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// UploadDir uploads every file under dir to bucket/prefix, preserving
// relative paths as key suffixes. Returns the file count.
func (c *Client) UploadDir(ctx context.Context, dir, bucket, prefix string) (int, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for _, path := range paths {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := c.uploadOne(ctx, p, dir, bucket, prefix); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(path)
	}
	wg.Wait()
	if firstErr != nil {
		return 0, firstErr
	}
	return len(paths), nil
}

func (c *Client) uploadOne(ctx context.Context, path, dir, bucket, prefix string) error {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return err
	}
	key := strings.TrimSuffix(prefix, "/")
	if key != "" {
		key += "/"
	}
	key += filepath.ToSlash(rel)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("s3io: upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
