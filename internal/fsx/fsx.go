package fsx

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// IsRegularFile returns true IFF a non-directory file exists at the provided path.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)

	if os.IsNotExist(err) {
		return false
	}

	if err != nil {
		return false
	}

	return !info.IsDir()
}

// DirExists returns true IFF a directory exists at the provided path.
func DirExists(path string) bool {
	info, err := os.Stat(path)

	if os.IsNotExist(err) {
		return false
	}

	if err != nil {
		return false
	}

	return info.IsDir()
}

func MkDirs(perm fs.FileMode, paths ...string) (err error) {
	for _, p := range paths {
		if err = os.MkdirAll(p, perm); err != nil {
			return errors.Wrapf(err, "unable to create directory: %s", p)
		}
	}

	return nil
}

func IgnoreIsNotExist(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

func IgnoreIsExist(err error) error {
	if errors.Is(err, os.ErrExist) {
		return nil
	}

	return err
}

// Publish writes the data to the path exactly once. the content is staged in a
// hidden temporary file within the same directory and then hard linked into
// place so readers never observe a partially written file. returns an error
// satisfying errors.Is(err, os.ErrExist) when the path is already present.
func Publish(path string, data []byte, perm fs.FileMode) (err error) {
	var (
		tmp *os.File
		dir = filepath.Dir(path)
	)

	if tmp, err = os.CreateTemp(dir, "."+filepath.Base(path)+".*"); err != nil {
		return errors.Wrapf(err, "unable to stage file: %s", path)
	}
	defer os.Remove(tmp.Name())

	if err = stage(tmp, data, perm); err != nil {
		return errors.Wrapf(err, "unable to stage file: %s", path)
	}

	if err = os.Link(tmp.Name(), path); err == nil {
		return nil
	} else if errors.Is(err, os.ErrExist) {
		return errors.Wrapf(err, "already published: %s", path)
	}

	// some shared filesystems refuse hard links, fall back to an exclusive create.
	return exclusive(path, data, perm)
}

func stage(tmp *os.File, data []byte, perm fs.FileMode) (err error) {
	defer tmp.Close()

	if _, err = tmp.Write(data); err != nil {
		return err
	}

	if err = tmp.Chmod(perm); err != nil {
		return err
	}

	return tmp.Sync()
}

func exclusive(path string, data []byte, perm fs.FileMode) (err error) {
	var (
		dst *os.File
	)

	if dst, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm); err != nil {
		if errors.Is(err, os.ErrExist) {
			return errors.Wrapf(err, "already published: %s", path)
		}

		return errors.Wrapf(err, "unable to create file: %s", path)
	}

	if _, err = dst.Write(data); err != nil {
		dst.Close()
		return errors.Wrapf(err, "unable to write file: %s", path)
	}

	return errors.Wrapf(dst.Close(), "unable to close file: %s", path)
}
