package protocols

import (
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type SFTPFileSystem struct {
	Host     string
	Port     int
	User     string
	Password string
	RootPath string
	client   *sftp.Client
	sshConn  *ssh.Client
}

func (s *SFTPFileSystem) Init() error {
	config := &ssh.ClientConfig{
		User: s.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(s.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	conn, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return err
	}
	s.sshConn = conn

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return err
	}
	s.client = client
	return nil
}

func (s *SFTPFileSystem) Name() string {
	return fmt.Sprintf("sftp://%s@%s:%d%s", s.User, s.Host, s.Port, s.RootPath)
}

func (s *SFTPFileSystem) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	if s.sshConn != nil {
		s.sshConn.Close()
	}
	return nil
}

func (s *SFTPFileSystem) Commit() error {
	return nil
}

func (s *SFTPFileSystem) fullPath(p string) string {
	return path.Join(s.RootPath, path.Clean("/"+p))
}

// OpenDir reads the full directory; ReadDir already drains SSH_FXP_READDIR.
func (s *SFTPFileSystem) OpenDir(relPath string) (DirLister, error) {
	entries, err := s.client.ReadDir(s.fullPath(relPath))
	if err != nil {
		return nil, mapOSError("readdir", relPath, err)
	}

	var files []FileEntry
	for _, entry := range entries {
		if entry.Mode()&os.ModeSymlink != 0 {
			continue
		}
		files = append(files, FileEntry{
			Name:       entry.Name(),
			Size:       entry.Size(),
			ModTime:    entry.ModTime(),
			IsDir:      entry.IsDir(),
			Attributes: attributesFor(entry.IsDir()),
			Path:       path.Join(relPath, entry.Name()),
		})
	}
	return newSliceLister(files), nil
}

func (s *SFTPFileSystem) Open(relPath string) (io.ReadCloser, error) {
	f, err := s.client.Open(s.fullPath(relPath))
	if err != nil {
		return nil, mapOSError("open", relPath, err)
	}
	return f, nil
}

func (s *SFTPFileSystem) Create(relPath string) (io.WriteCloser, error) {
	f, err := s.client.Create(s.fullPath(relPath))
	if err != nil {
		return nil, mapOSError("create", relPath, err)
	}
	return f, nil
}

func (s *SFTPFileSystem) Mkdir(relPath string) error {
	return mapOSError("mkdir", relPath, s.client.Mkdir(s.fullPath(relPath)))
}

func (s *SFTPFileSystem) Stat(relPath string) (*FileEntry, error) {
	info, err := s.client.Stat(s.fullPath(relPath))
	if err != nil {
		return nil, mapOSError("stat", relPath, err)
	}
	return &FileEntry{
		Name:       info.Name(),
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		IsDir:      info.IsDir(),
		Attributes: attributesFor(info.IsDir()),
		Path:       relPath,
	}, nil
}

func (s *SFTPFileSystem) Remove(relPath string) error {
	return mapOSError("remove", relPath, s.client.Remove(s.fullPath(relPath)))
}

func (s *SFTPFileSystem) RemoveAll(relPath string) error {
	fullPath := s.fullPath(relPath)
	if fullPath == s.fullPath("/") {
		entries, err := s.client.ReadDir(fullPath)
		if err != nil {
			return mapOSError("removeall", relPath, err)
		}
		for _, e := range entries {
			if err := s.client.RemoveAll(path.Join(fullPath, e.Name())); err != nil {
				return mapOSError("removeall", relPath, err)
			}
		}
		return nil
	}
	return mapOSError("removeall", relPath, s.client.RemoveAll(fullPath))
}
