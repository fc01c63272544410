package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const PidName = "lyricsync.pid"

// DefaultPidPath returns ~/.cache/lyricsync/lyricsync.pid
func DefaultPidPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lyricsync", PidName), nil
}

// PidFile records the process serving a given state directory
type PidFile struct {
	Path string
}

// CheckExisting fails when the file names a live process other than this one.
// Stale or unparsable files are ignored.
func (p PidFile) CheckExisting() error {
	data, err := os.ReadFile(p.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 || pid == os.Getpid() {
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return nil
	}

	return fmt.Errorf("server already running with PID %d", pid)
}

func (p PidFile) Create() error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.Path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p PidFile) Remove() error {
	err := os.Remove(p.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
