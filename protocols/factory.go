package protocols

import (
	"fmt"

	"dualpane/config"
)

// New builds and initializes the volume described by cfg.
func New(cfg config.Volume, label string) (Volume, error) {
	switch cfg.Type {
	case "local":
		fs := &LocalFileSystem{RootPath: cfg.Path}
		return fs, fs.Init()
	case "memory":
		fs := NewMemoryFileSystem(label)
		return fs, fs.Init()
	case "sftp":
		if cfg.Auth == nil {
			return nil, fmt.Errorf("auth required for sftp")
		}
		fs := &SFTPFileSystem{
			Host:     cfg.Auth.Host,
			Port:     cfg.Auth.Port,
			User:     cfg.Auth.User,
			Password: cfg.Auth.Password,
			RootPath: cfg.Path,
		}
		return fs, fs.Init()
	case "ftp":
		if cfg.Auth == nil {
			return nil, fmt.Errorf("auth required for ftp")
		}
		fs := &FTPFileSystem{
			Host:     cfg.Auth.Host,
			Port:     cfg.Auth.Port,
			User:     cfg.Auth.User,
			Password: cfg.Auth.Password,
			RootPath: cfg.Path,
		}
		return fs, fs.Init()
	case "s3":
		if cfg.S3 == nil {
			return nil, fmt.Errorf("s3 settings required for s3")
		}
		fs := &S3FileSystem{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			RootPath:  cfg.Path,
		}
		return fs, fs.Init()
	default:
		return nil, fmt.Errorf("unknown fs type: %s", cfg.Type)
	}
}
