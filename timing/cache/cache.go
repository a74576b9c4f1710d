// Package cache models the instruction and data caches in front of the
// machine's heap using Akita cache components.
//
// The model only tracks tags. Words are always read from the heap itself;
// the cache decides how long the access takes.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// ArrayShift places the array identifier above every possible word offset
// in a cache address.
const ArrayShift = 34

// Address maps a word of an array onto the byte address space seen by the
// cache.
func Address(array, offset uint32) uint64 {
	return uint64(array)<<ArrayShift | uint64(offset)<<2
}

// ArrayOf returns the array identifier encoded in a cache address.
func ArrayOf(addr uint64) uint32 {
	return uint32(addr >> ArrayShift)
}

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `toml:"size"`
	// Associativity (number of ways)
	Associativity int `toml:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `toml:"block_size"`
	// HitLatency in cycles
	HitLatency uint64 `toml:"hit_latency"`
	// MissLatency in cycles
	MissLatency uint64 `toml:"miss_latency"`
}

// DefaultICacheConfig returns the default instruction cache: 16KB, 4-way,
// 64B lines.
func DefaultICacheConfig() Config {
	return Config{
		Size:          16 * 1024,
		Associativity: 4,
		BlockSize:     64,
		HitLatency:    0,
		MissLatency:   10,
	}
}

// DefaultDCacheConfig returns the default data cache: 32KB, 8-way, 64B
// lines.
func DefaultDCacheConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    1,
		MissLatency:   20,
	}
}

// Validate checks that the geometry describes at least one whole set.
func (c Config) Validate() error {
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be > 0")
	}
	if c.BlockSize <= 0 || c.BlockSize%4 != 0 {
		return fmt.Errorf("block_size must be a positive multiple of 4, got %d", c.BlockSize)
	}
	if c.Size <= 0 || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size %d is not a multiple of associativity*block_size", c.Size)
	}
	return nil
}

// NumSets returns the number of sets the geometry yields.
func (c Config) NumSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Evicted is true if a valid block was replaced.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint64
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads         uint64
	Writes        uint64
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Writebacks    uint64
	Invalidations uint64
}

// HitRate returns hits over all accesses, or 0 before the first access.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a write-allocate, write-back cache whose tags live in an Akita
// directory with LRU replacement.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// New creates a new cache with the given configuration. The configuration
// must pass Validate.
func New(config Config) *Cache {
	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			config.NumSets(),
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return addr / uint64(c.config.BlockSize) * uint64(c.config.BlockSize)
}

// Read looks up addr for a read.
func (c *Cache) Read(addr uint64) AccessResult {
	c.stats.Reads++
	return c.access(addr, false)
}

// Write looks up addr for a write. Misses allocate the line.
func (c *Cache) Write(addr uint64) AccessResult {
	c.stats.Writes++
	return c.access(addr, true)
}

func (c *Cache) access(addr uint64, isWrite bool) AccessResult {
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		if isWrite {
			block.IsDirty = true
		}
		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++
	return c.fill(blockAddr, isWrite)
}

func (c *Cache) fill(blockAddr uint64, isWrite bool) AccessResult {
	result := AccessResult{Latency: c.config.MissLatency}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag
		if victim.IsDirty {
			c.stats.Writebacks++
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = isWrite
	c.directory.Visit(victim)

	return result
}

// Invalidate marks the line holding addr as invalid without writeback.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
		c.stats.Invalidations++
	}
}

// InvalidateArray drops every line that belongs to array. Dirty lines are
// discarded since the array no longer exists. It returns the number of
// lines dropped.
func (c *Cache) InvalidateArray(array uint32) int {
	dropped := 0
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && ArrayOf(block.Tag) == array {
				block.IsValid = false
				block.IsDirty = false
				dropped++
			}
		}
	}
	c.stats.Invalidations += uint64(dropped)
	return dropped
}

// Reset invalidates all cache lines without writeback and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
