package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// acquirePIDFile writes the process ID to path. With lock set the file is
// held under an exclusive flock so a second server refuses to start. The
// returned release func removes the file.
func acquirePIDFile(path string, lock bool) (release func(), err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		if lock {
			if err := ownerAlive(path); err != nil {
				return nil, err
			}
		}
		file, err = os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0644)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open PID file: %w", err)
	}

	if lock {
		if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
			file.Close()
			if errors.Is(err, syscall.EWOULDBLOCK) {
				return nil, errors.New("another server instance holds the PID lock")
			}
			return nil, fmt.Errorf("lock failed: %w", err)
		}
	}

	if _, err := fmt.Fprintf(file, "%d\n", os.Getpid()); err == nil {
		err = file.Sync()
	}
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("cannot write PID file: %w", err)
	}

	return func() {
		// Closing the descriptor drops the flock
		file.Close()
		os.Remove(path)
	}, nil
}

// ownerAlive fails when the PID recorded in path belongs to a live process.
// A missing or dead owner leaves the file free to reuse.
func ownerAlive(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read existing PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		// Unreadable content, treat as stale
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("process %d owns %s and cannot be checked: %v", pid, path, err)
	}
	return fmt.Errorf("process %d is already running with %s", pid, path)
}
