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

//go:build linux
// +build linux

package probe

import (
	"bufio"
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

var log = logrus.WithField("component", "probe")

// appFs is swappable in tests, the same pattern as linuxUtils.appFs.
var appFs afero.Fs = afero.NewOsFs()

// LinuxProber reads /proc and issues a handful of syscalls to enrich the
// compile-time baseline with runtime CPU/memory/IO detail.
type LinuxProber struct {
	ScratchDir string
}

// NewLinuxProber returns a Prober that probes the live host. scratchDir is
// the path statfs'd for the primary filesystem type (defaults to "/").
func NewLinuxProber(scratchDir string) *LinuxProber {
	if scratchDir == "" {
		scratchDir = "/"
	}
	return &LinuxProber{ScratchDir: scratchDir}
}

func (p *LinuxProber) Probe() Features {
	var f Features
	var warnings []string

	cpu, err := probeCPU()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("cpu: %v", err))
	}
	f.CPU = cpu

	mem, err := probeMemory()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("memory: %v", err))
	}
	f.Memory = mem

	io, err := probeIO(p.ScratchDir)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("io: %v", err))
	}
	f.IO = io

	// No GPU enumeration library in the pack; GPU stays compile-time-only.
	f.GPU = GPUFeatures{Vendor: "unknown"}

	if len(warnings) > 0 {
		f.Warning = strings.Join(warnings, "; ")
		log.WithField("warnings", f.Warning).Warn("probe completed with partial results")
	}

	return f
}

func probeCPU() (CPUFeatures, error) {
	cpu := CPUFeatures{
		Architecture: runtime.GOARCH,
		ThreadCount:  runtime.NumCPU(),
		HasFPU:       true,
	}

	data, err := afero.ReadFile(appFs, "/proc/cpuinfo")
	if err != nil {
		return cpu, err
	}

	coreIDs := map[string]struct{}{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "core id":
			coreIDs[val] = struct{}{}
		case "flags", "Features":
			if strings.Contains(val, "sse") || strings.Contains(val, "avx") ||
				strings.Contains(val, "neon") || strings.Contains(val, "asimd") {
				cpu.HasSIMD = true
			}
		case "cache size":
			kb := strings.TrimSuffix(strings.TrimSpace(val), " KB")
			if n, err := strconv.Atoi(kb); err == nil {
				cpu.CacheLineKB = n
			}
		case "cpu MHz":
			if n, err := strconv.ParseFloat(val, 64); err == nil {
				cpu.ClockMHz = int(n)
			}
		}
	}

	if len(coreIDs) > 0 {
		cpu.CoreCount = len(coreIDs)
	} else {
		cpu.CoreCount = cpu.ThreadCount
	}

	return cpu, scanner.Err()
}

func probeMemory() (MemoryFeatures, error) {
	mem := MemoryFeatures{PageSizeBytes: uint64(unix.Getpagesize())}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return mem, err
	}

	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	mem.TotalBytes = uint64(info.Totalram) * unit
	mem.AvailableBytes = uint64(info.Freeram) * unit

	return mem, nil
}

func probeIO(scratchDir string) (IOFeatures, error) {
	io := IOFeatures{HasAsyncIO: true}

	var statfs unix.Statfs_t
	if err := unix.Statfs(scratchDir, &statfs); err != nil {
		return io, err
	}
	io.PrimaryFsType = fsTypeName(statfs.Type)

	count := 0
	err := godirwalk.Walk("/sys/class/block", &godirwalk.Options{
		Callback: func(_ string, de *godirwalk.Dirent) error {
			if de.IsSymlink() || de.IsDir() {
				count++
			}
			return nil
		},
		ErrorCallback: func(_ string, _ error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
		Unsorted: true,
	})
	if err != nil {
		return io, err
	}
	if count > 0 {
		count--
	}
	io.BlockDeviceCount = count

	return io, nil
}
