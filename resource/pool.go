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

package resource

import (
	"fmt"
	"sync"

	"github.com/birbparty/flight-hal/result"
)

// PoolConfig describes one typed block pool.
type PoolConfig struct {
	Type         Type
	BlockSize    uint64
	Alignment    uint64
	InitialCount int
	MaxCount     int
	ThreadSafe   bool
}

// Pool is a preallocated bank of fixed-size blocks for low-latency
// acquisition, guarded by its own lock only when ThreadSafe is set (per-pool
// locking, §5).
type Pool struct {
	cfg       PoolConfig
	mu        sync.Mutex
	free      []uint64 // free block indices
	inUse     map[uint64]bool
	nextBlock uint64
}

func newPool(cfg PoolConfig) *Pool {
	p := &Pool{cfg: cfg, inUse: make(map[uint64]bool)}
	for i := 0; i < cfg.InitialCount; i++ {
		p.free = append(p.free, p.nextBlock)
		p.nextBlock++
	}
	return p
}

func (p *Pool) lock() {
	if p.cfg.ThreadSafe {
		p.mu.Lock()
	}
}

func (p *Pool) unlock() {
	if p.cfg.ThreadSafe {
		p.mu.Unlock()
	}
}

// Acquire returns a free block index, growing the pool up to MaxCount if
// none are free.
func (p *Pool) Acquire() result.Result[uint64] {
	p.lock()
	defer p.unlock()

	if len(p.free) == 0 {
		if p.cfg.MaxCount > 0 && len(p.inUse)+len(p.free) >= p.cfg.MaxCount {
			return result.Err[uint64](result.New(result.Resource, CodeResourceExhausted,
				"pool exhausted").WithContext(p.cfg.Type.String()))
		}
		p.free = append(p.free, p.nextBlock)
		p.nextBlock++
	}

	blk := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.inUse[blk] = true
	return result.Ok(blk)
}

// Release returns a block to the free list.
func (p *Pool) Release(block uint64) result.Result[result.Unit] {
	p.lock()
	defer p.unlock()

	if !p.inUse[block] {
		return result.Err[result.Unit](result.New(result.Validation, CodeInvalidState,
			"block not in use").WithContext(fmt.Sprintf("block=%d", block)))
	}
	delete(p.inUse, block)
	p.free = append(p.free, block)
	return result.Ok(result.Unit{})
}

// InUseCount returns how many blocks are currently checked out.
func (p *Pool) InUseCount() int {
	p.lock()
	defer p.unlock()
	return len(p.inUse)
}

// Resize grows or shrinks the pool's total block count, never below the
// number of blocks currently in use.
func (p *Pool) Resize(newCount int) result.Result[result.Unit] {
	p.lock()
	defer p.unlock()

	if newCount < len(p.inUse) {
		return result.Err[result.Unit](result.New(result.Configuration, CodeInvalidParameter,
			"cannot resize pool below in-use block count"))
	}
	if p.cfg.MaxCount > 0 && newCount > p.cfg.MaxCount {
		return result.Err[result.Unit](result.New(result.Configuration, CodeInvalidParameter,
			"requested count exceeds pool max"))
	}

	total := len(p.inUse) + len(p.free)
	if newCount > total {
		for i := total; i < newCount; i++ {
			p.free = append(p.free, p.nextBlock)
			p.nextBlock++
		}
	} else if newCount < total {
		shrinkBy := total - newCount
		if shrinkBy > len(p.free) {
			shrinkBy = len(p.free)
		}
		p.free = p.free[:len(p.free)-shrinkBy]
	}
	return result.Ok(result.Unit{})
}

// poolKey identifies one (type, block size) pool within a PoolManager.
type poolKey struct {
	t         Type
	blockSize uint64
}

// PoolManager owns every typed block pool, keyed by (type, block size).
type PoolManager struct {
	mu    sync.RWMutex
	pools map[poolKey]*Pool
}

// NewPoolManager constructs an empty PoolManager.
func NewPoolManager() *PoolManager {
	return &PoolManager{pools: make(map[poolKey]*Pool)}
}

// CreatePool registers a new pool for (cfg.Type, cfg.BlockSize).
func (pm *PoolManager) CreatePool(cfg PoolConfig) result.Result[result.Unit] {
	key := poolKey{t: cfg.Type, blockSize: cfg.BlockSize}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	if _, exists := pm.pools[key]; exists {
		return result.Err[result.Unit](result.New(result.Configuration, CodeInvalidParameter,
			"pool already exists for type/block-size"))
	}
	pm.pools[key] = newPool(cfg)
	return result.Ok(result.Unit{})
}

// Pool returns the pool for (t, blockSize), if one was created.
func (pm *PoolManager) Pool(t Type, blockSize uint64) (*Pool, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.pools[poolKey{t: t, blockSize: blockSize}]
	return p, ok
}
