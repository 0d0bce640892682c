package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kjk/insurancedb/atomicfile"
	"github.com/kjk/insurancedb/log"
)

// RemoteConfig describes an S3-compatible bucket for snapshots
type RemoteConfig struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	Access   string `yaml:"access"`
	Secret   string `yaml:"secret"`
	Region   string `yaml:"region"`
	Secure   bool   `yaml:"secure"`
	// snapshots are stored under this prefix, "backups/" if empty
	Prefix string `yaml:"prefix"`

	RequestTrace io.Writer `yaml:"-"`
}

// IsEnabled returns false if remote backups are not configured
func (c *RemoteConfig) IsEnabled() bool {
	return c != nil && c.Endpoint != "" && c.Bucket != ""
}

func (c *RemoteConfig) validate() error {
	if c == nil {
		return errors.New("must provide config")
	}
	if c.Access == "" || c.Secret == "" || c.Bucket == "" || c.Endpoint == "" {
		return errors.New("must provide endpoint, bucket, access and secret in remote config")
	}
	return nil
}

func (c *RemoteConfig) prefix() string {
	if c.Prefix == "" {
		return "backups/"
	}
	return strings.TrimSuffix(c.Prefix, "/") + "/"
}

// Remote stores snapshots in an S3-compatible bucket
type Remote struct {
	client *minio.Client
	config *RemoteConfig
}

// NewRemote connects to the bucket described by config.
// The bucket must already exist.
func NewRemote(ctx context.Context, config *RemoteConfig) (*Remote, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	mc, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Access, config.Secret, ""),
		Region: config.Region,
		Secure: config.Secure,
	})
	if err != nil {
		return nil, err
	}
	if config.RequestTrace != nil {
		mc.TraceOn(config.RequestTrace)
	}
	found, err := mc.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bucket '%s' doesn't exist", config.Bucket)
	}
	return &Remote{
		client: mc,
		config: config,
	}, nil
}

// RemotePath returns the object name for a local snapshot
func (r *Remote) RemotePath(snapshotPath string) string {
	return r.config.prefix() + filepath.Base(snapshotPath)
}

// Upload uploads a snapshot and returns its object name
func (r *Remote) Upload(ctx context.Context, snapshotPath string) (string, error) {
	remotePath := r.RemotePath(snapshotPath)
	opts := minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	}
	info, err := r.client.FPutObject(ctx, r.config.Bucket, remotePath, snapshotPath, opts)
	if err != nil {
		return "", fmt.Errorf("upload of '%s' as '%s' failed with '%w'", snapshotPath, remotePath, err)
	}
	log.Verbosef("backup: uploaded '%s' as '%s' (%d bytes)\n", snapshotPath, remotePath, info.Size)
	return remotePath, nil
}

// List returns names of snapshots in the bucket, oldest first
func (r *Remote) List(ctx context.Context) ([]string, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    r.config.prefix(),
		Recursive: true,
	}
	var res []string
	for obj := range r.client.ListObjects(ctx, r.config.Bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := path.Base(obj.Key)
		if isSnapshotName(name) {
			res = append(res, name)
		}
	}
	slices.Sort(res)
	return res, nil
}

// Download saves snapshot name (as returned by List) to dstPath
func (r *Remote) Download(ctx context.Context, name string, dstPath string) error {
	remotePath := r.config.prefix() + path.Base(name)
	obj, err := r.client.GetObject(ctx, r.config.Bucket, remotePath, minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	// ensure there's a dir for destination file
	if err = os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	f, err := atomicfile.New(dstPath)
	if err != nil {
		return err
	}
	defer f.RemoveIfNotClosed()
	if _, err = io.Copy(f, obj); err != nil {
		return err
	}
	return f.Close()
}
