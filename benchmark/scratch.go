//
// Copyright 2024 - 2026 Flight-HAL Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package benchmark

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// isMountPoint reports whether path is a mountpoint by comparing its
// device id against its parent's, the same fast check the teacher's
// mount.IsMountPoint uses instead of parsing /proc/self/mountinfo.
func isMountPoint(path string) (bool, error) {
	if path == "/" {
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat path: %w", err)
	}
	parent, err := os.Stat(filepath.Join(path, ".."))
	if err != nil {
		return false, fmt.Errorf("stat parent: %w", err)
	}

	fileStat, ok1 := info.Sys().(*syscall.Stat_t)
	parentStat, ok2 := parent.Sys().(*syscall.Stat_t)
	if !ok1 || !ok2 {
		return false, fmt.Errorf("no Stat_t for %s", path)
	}

	return fileStat.Dev != parentStat.Dev, nil
}

// pickScratchDir chooses the directory to benchmark storage against: the
// first of preferred, os.TempDir(), /var/tmp and /tmp that exists, is a
// directory, and can be stat'ed together with its parent by isMountPoint.
// Whether the candidate is a mount point, and its filesystem type (tmpfs or
// otherwise), are not checked. Falls back to os.TempDir() if no candidate
// qualifies.
func pickScratchDir(preferred string) string {
	candidates := []string{preferred, os.TempDir(), "/var/tmp", "/tmp"}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		fi, err := os.Stat(c)
		if err != nil || !fi.IsDir() {
			continue
		}
		if _, err := isMountPoint(c); err == nil {
			return c
		}
	}

	return os.TempDir()
}

// storageWorkload writes then reads a scratch file under dir until the
// iteration deadline, returning bytes/sec throughput.
func storageWorkload(dir string) workload {
	resolved := pickScratchDir(dir)

	return func(deadline time.Time) float64 {
		path := filepath.Join(resolved, ".hal-bench-scratch")
		defer os.Remove(path)

		buf := make([]byte, 64*1024)
		for i := range buf {
			buf[i] = byte(i)
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
		if err != nil {
			return 0
		}
		defer f.Close()

		var bytesMoved float64
		for time.Now().Before(deadline) {
			if _, err := f.WriteAt(buf, 0); err != nil {
				break
			}
			if _, err := f.ReadAt(buf, 0); err != nil {
				break
			}
			bytesMoved += float64(len(buf) * 2)
		}

		return bytesMoved
	}
}
