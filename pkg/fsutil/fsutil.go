// Package fsutil provides the file system safety primitives used when
// treewrite rewrites files in place: content hashing, modification detection,
// backups and atomic writes.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNilFileInfo is returned when a nil FileInfo is passed.
	ErrNilFileInfo = errors.New("nil FileInfo")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrModified indicates the file changed on disk after it was read.
	ErrModified = errors.New("file modified since it was read")
)

// FileInfo captures the state of a file at the time it was read.
type FileInfo struct {
	// Path is the absolute or relative path to the file.
	Path string

	// Mode is the file's permission and mode bits.
	Mode os.FileMode

	// ModTime is the file's modification time.
	ModTime time.Time

	// Size is the file size in bytes.
	Size int64

	// Hash is the SHA-256 hash of the file content.
	Hash [32]byte
}

// ReadFile reads a file and returns its content along with metadata.
// The returned FileInfo can be used for modification detection.
func ReadFile(ctx context.Context, path string) ([]byte, *FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("read file: %w", ctx.Err())
	default:
	}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, nil, fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
		}
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, nil, fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
		}
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	info := &FileInfo{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}

	return content, info, nil
}

// CheckModified returns true if the file has changed since info was taken.
// Mod time and size are compared first; when they match the content is
// hashed again.
func CheckModified(ctx context.Context, info *FileInfo) (bool, error) {
	if info == nil {
		return false, ErrNilFileInfo
	}

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("check modified: %w", ctx.Err())
	default:
	}

	stat, err := os.Stat(info.Path)
	if err != nil {
		if os.IsNotExist(err) {
			// A deleted file counts as modified.
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", info.Path, err)
	}

	if !stat.ModTime().Equal(info.ModTime) || stat.Size() != info.Size {
		return true, nil
	}

	content, err := os.ReadFile(info.Path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", info.Path, err)
	}

	return sha256.Sum256(content) != info.Hash, nil
}

// WriteOutcome reports what WriteResult did.
type WriteOutcome struct {
	// Written is false when content matched the file already.
	Written bool

	// BackupPath is the backup created before writing, if any.
	BackupPath string
}

// WriteResult replaces the file described by info with content.
// It fails with ErrModified if the file changed since it was read, backs the
// original up according to backup, and writes atomically with the original
// mode. Identical content is not written.
func WriteResult(ctx context.Context, info *FileInfo, content []byte, backup BackupConfig) (WriteOutcome, error) {
	if info == nil {
		return WriteOutcome{}, ErrNilFileInfo
	}

	if Equal(info, content) {
		return WriteOutcome{}, nil
	}

	modified, err := CheckModified(ctx, info)
	if err != nil {
		return WriteOutcome{}, err
	}
	if modified {
		return WriteOutcome{}, fmt.Errorf("%w: %s", ErrModified, info.Path)
	}

	var outcome WriteOutcome
	created, err := CreateBackup(ctx, info.Path, backup)
	if err != nil {
		return WriteOutcome{}, err
	}
	if created {
		outcome.BackupPath = BackupPath(info.Path, backup.Mode)
	}

	if err := WriteAtomic(ctx, info.Path, content, info.Mode.Perm()); err != nil {
		return outcome, err
	}
	outcome.Written = true

	return outcome, nil
}

// Equal reports whether content matches the bytes info was taken from.
func Equal(info *FileInfo, content []byte) bool {
	return info != nil && int64(len(content)) == info.Size && sha256.Sum256(content) == info.Hash
}
