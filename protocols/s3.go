package protocols

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// maxPutSize is the largest object a single PutObject accepts.
const maxPutSize = 5 << 30

// S3FileSystem maps a bucket prefix onto a volume. Directories are common
// prefixes; Mkdir writes a "dir/" marker object so empty directories survive.
type S3FileSystem struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	RootPath  string
	Timeout   time.Duration
	client    *s3.Client
}

func (s *S3FileSystem) Init() error {
	if s.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if s.Timeout == 0 {
		s.Timeout = 60 * time.Second
	}
	ctx, cancel := s.ctx()
	defer cancel()

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(s.Region)}
	if s.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = true
	})

	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.Bucket)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", s.Bucket, err)
	}
	return nil
}

func (s *S3FileSystem) Name() string {
	return "s3://" + path.Join(s.Bucket, s.RootPath)
}

func (s *S3FileSystem) Close() error {
	return nil
}

func (s *S3FileSystem) Commit() error {
	return nil
}

func (s *S3FileSystem) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.Timeout)
}

func (s *S3FileSystem) key(p string) string {
	return strings.TrimPrefix(path.Join("/", s.RootPath, path.Clean("/"+p)), "/")
}

func (s *S3FileSystem) dirPrefix(p string) string {
	k := s.key(p)
	if k == "" {
		return ""
	}
	return k + "/"
}

func mapS3Error(op, p string, err error) error {
	if err == nil {
		return nil
	}
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return fmt.Errorf("%s %s: %w: %w", op, p, ErrNotFound, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "EntityTooLarge", "QuotaExceeded":
			return fmt.Errorf("%s %s: %w: %w", op, p, ErrResourceExhausted, err)
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%s %s: %w: %w", op, p, ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s %s: %w", op, p, err)
}

// deleteErrors turns the per-key failures of a quiet DeleteObjects call into
// an error naming the first failing key.
func deleteErrors(errs []types.Error) error {
	if len(errs) == 0 {
		return nil
	}
	e := errs[0]
	err := &smithy.GenericAPIError{Code: aws.ToString(e.Code), Message: aws.ToString(e.Message)}
	return fmt.Errorf("key %s (%d failed): %w", aws.ToString(e.Key), len(errs), err)
}

func (s *S3FileSystem) dirExists(p string) (bool, error) {
	prefix := s.dirPrefix(p)
	if prefix == "" {
		return true, nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.Bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, mapS3Error("list", p, err)
	}
	return aws.ToInt32(out.KeyCount) > 0, nil
}

func (s *S3FileSystem) OpenDir(p string) (DirLister, error) {
	ok, err := s.dirExists(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("opendir %s: %w", p, ErrNotFound)
	}
	prefix := s.dirPrefix(p)
	pager := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.Bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	return &s3Lister{fs: s, pager: pager, prefix: prefix, dir: path.Clean("/" + p)}, nil
}

// s3Lister turns ListObjectsV2 pages into listing pages.
type s3Lister struct {
	fs      *S3FileSystem
	pager   *s3.ListObjectsV2Paginator
	prefix  string
	dir     string
	pending []FileEntry
}

func (l *s3Lister) fill() error {
	ctx, cancel := l.fs.ctx()
	defer cancel()
	page, err := l.pager.NextPage(ctx)
	if err != nil {
		return mapS3Error("list", l.dir, err)
	}
	for _, cp := range page.CommonPrefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), l.prefix), "/")
		if name == "" {
			continue
		}
		l.pending = append(l.pending, FileEntry{
			Name:       name,
			IsDir:      true,
			Attributes: AttrDirectory,
			Path:       path.Join(l.dir, name),
		})
	}
	for _, obj := range page.Contents {
		name := strings.TrimPrefix(aws.ToString(obj.Key), l.prefix)
		if name == "" {
			continue
		}
		l.pending = append(l.pending, FileEntry{
			Name:       name,
			Size:       aws.ToInt64(obj.Size),
			ModTime:    aws.ToTime(obj.LastModified),
			Attributes: AttrNone,
			Path:       path.Join(l.dir, name),
		})
	}
	return nil
}

func (l *s3Lister) Next(n int) ([]FileEntry, error) {
	if n <= 0 {
		n = 1
	}
	for len(l.pending) == 0 {
		if !l.pager.HasMorePages() {
			return nil, io.EOF
		}
		if err := l.fill(); err != nil {
			return nil, err
		}
	}
	if n > len(l.pending) {
		n = len(l.pending)
	}
	page := l.pending[:n]
	l.pending = l.pending[n:]
	return page, nil
}

func (l *s3Lister) Close() error {
	l.pending = nil
	return nil
}

func (s *S3FileSystem) Stat(p string) (*FileEntry, error) {
	name := path.Base(path.Clean("/" + p))
	if s.key(p) != "" {
		ctx, cancel := s.ctx()
		out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(s.key(p)),
		})
		cancel()
		if err == nil {
			return &FileEntry{
				Name:    name,
				Size:    aws.ToInt64(out.ContentLength),
				ModTime: aws.ToTime(out.LastModified),
				Path:    p,
			}, nil
		}
		if err = mapS3Error("stat", p, err); !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	ok, err := s.dirExists(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("stat %s: %w", p, ErrNotFound)
	}
	return &FileEntry{Name: name, IsDir: true, Attributes: AttrDirectory, Path: p}, nil
}

func (s *S3FileSystem) Open(p string) (io.ReadCloser, error) {
	ctx, cancel := s.ctx()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		cancel()
		return nil, mapS3Error("get", p, err)
	}
	return &cancelReadCloser{ReadCloser: out.Body, cancel: cancel}, nil
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// Create buffers the object and uploads it on Close.
func (s *S3FileSystem) Create(p string) (io.WriteCloser, error) {
	return &s3Writer{fs: s, path: p}, nil
}

type s3Writer struct {
	fs   *S3FileSystem
	path string
	buf  bytes.Buffer
}

func (w *s3Writer) Write(b []byte) (int, error) {
	if int64(w.buf.Len()+len(b)) > maxPutSize {
		return 0, fmt.Errorf("put %s: %w: object exceeds %d bytes", w.path, ErrResourceExhausted, int64(maxPutSize))
	}
	return w.buf.Write(b)
}

func (w *s3Writer) Close() error {
	ctx, cancel := w.fs.ctx()
	defer cancel()
	_, err := w.fs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.fs.Bucket),
		Key:           aws.String(w.fs.key(w.path)),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(int64(w.buf.Len())),
	})
	return mapS3Error("put", w.path, err)
}

func (s *S3FileSystem) Mkdir(p string) error {
	ok, err := s.dirExists(p)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("mkdir %s: %w", p, ErrAlreadyExists)
	}
	ctx, cancel := s.ctx()
	defer cancel()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(s.dirPrefix(p)),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	})
	return mapS3Error("mkdir", p, err)
}

// Remove deletes one object. DeleteObject succeeds on a missing key, so the
// object is looked up first.
func (s *S3FileSystem) Remove(p string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(p)),
	}); err != nil {
		return mapS3Error("delete", p, err)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(p)),
	})
	return mapS3Error("delete", p, err)
}

// RemoveAll deletes every object under the directory prefix, one listing
// page per DeleteObjects batch.
func (s *S3FileSystem) RemoveAll(p string) error {
	prefix := s.dirPrefix(p)
	pager := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(prefix),
	})
	for pager.HasMorePages() {
		ctx, cancel := s.ctx()
		page, err := pager.NextPage(ctx)
		if err != nil {
			cancel()
			return mapS3Error("removeall", p, err)
		}
		var ids []types.ObjectIdentifier
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		if len(ids) > 0 {
			var out *s3.DeleteObjectsOutput
			out, err = s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.Bucket),
				Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			if err == nil && out != nil {
				err = deleteErrors(out.Errors)
			}
		}
		cancel()
		if err != nil {
			return mapS3Error("removeall", p, err)
		}
	}
	return nil
}
