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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeCpuinfo = `processor	: 0
vendor_id	: GenuineIntel
cpu MHz		: 2800.000
cache size	: 8192 KB
core id		: 0
flags		: fpu vme de pse tsc msr sse sse2 avx

processor	: 1
vendor_id	: GenuineIntel
cpu MHz		: 2800.000
cache size	: 8192 KB
core id		: 1
flags		: fpu vme de pse tsc msr sse sse2 avx
`

func withFakeCpuinfo(t *testing.T, contents string) func() {
	t.Helper()
	orig := appFs
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/proc/cpuinfo", []byte(contents), 0644))
	appFs = mem
	return func() { appFs = orig }
}

func TestProbeCPUParsesCpuinfo(t *testing.T) {
	defer withFakeCpuinfo(t, fakeCpuinfo)()

	cpu, err := probeCPU()
	require.NoError(t, err)
	assert.Equal(t, 2, cpu.CoreCount)
	assert.True(t, cpu.HasSIMD)
	assert.Equal(t, 8192, cpu.CacheLineKB)
	assert.Equal(t, 2800, cpu.ClockMHz)
}

func TestProbeCPUMissingFileIsNonFatal(t *testing.T) {
	orig := appFs
	appFs = afero.NewMemMapFs()
	defer func() { appFs = orig }()

	cpu, err := probeCPU()
	assert.Error(t, err)
	assert.Equal(t, "unknown", fsTypeName(999999))
	assert.NotEmpty(t, cpu.Architecture)
}

func TestLinuxProberProbeIsIdempotent(t *testing.T) {
	defer withFakeCpuinfo(t, fakeCpuinfo)()

	p := NewLinuxProber("/")
	a := p.Probe()
	b := p.Probe()
	assert.Equal(t, a.CPU, b.CPU)
}

func TestFsTypeNameFallsBackToUnknown(t *testing.T) {
	assert.Equal(t, "unknown", fsTypeName(0x12345))
}
