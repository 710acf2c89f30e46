// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package dispatch runs a per-invocation kernel over a 2D grid the way a
// compute dispatch does: the grid is cut into square workgroups, every
// invocation of a workgroup runs the kernel once, and invocations that fall
// past the grid edge are still launched and must return early.
//
// It is the CPU stand-in for the compose shader when no GPU adapter is
// available, and the reference the shader's indexing is checked against.
package dispatch

import (
	"sync/atomic"

	"github.com/gogpu/dualscreen/internal/parallel"
)

// DefaultWorkgroupSize matches @workgroup_size(8, 8) in compose.wgsl.
const DefaultWorkgroupSize = 8

// Invocation identifies one kernel invocation. Fields follow the WGSL
// builtins of the same names, in (x, y) order.
type Invocation struct {
	GlobalID    [2]uint32
	LocalID     [2]uint32
	WorkgroupID [2]uint32
}

// InBounds reports whether the invocation maps to a cell of a w×h grid.
func (inv Invocation) InBounds(w, h int) bool {
	return int(inv.GlobalID[0]) < w && int(inv.GlobalID[1]) < h
}

// Kernel is the body run for each invocation.
type Kernel func(Invocation)

// WorkgroupCount returns the number of workgroups along each axis needed
// to cover a w×h grid.
func WorkgroupCount(w, h, size int) (x, y int) {
	return (w + size - 1) / size, (h + size - 1) / size
}

// Dispatcher launches kernels on a worker pool.
type Dispatcher struct {
	pool *parallel.WorkerPool
	size int
}

// New returns a Dispatcher using pool and square workgroups of size×size
// invocations. size <= 0 selects DefaultWorkgroupSize.
func New(pool *parallel.WorkerPool, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultWorkgroupSize
	}
	return &Dispatcher{pool: pool, size: size}
}

// WorkgroupSize returns the workgroup edge length.
func (d *Dispatcher) WorkgroupSize() int {
	return d.size
}

// Dispatch runs k for every invocation of the workgroups covering a w×h
// grid and returns when all have finished. Each pool worker claims whole
// workgroups from a shared counter, so workgroups run in no fixed order.
func (d *Dispatcher) Dispatch(w, h int, k Kernel) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	gx, gy := WorkgroupCount(w, h, d.size)
	total := int64(gx * gy)

	var next atomic.Int64
	jobs := make([]func(), min(d.pool.Workers(), int(total)))
	for i := range jobs {
		jobs[i] = func() {
			for {
				g := next.Add(1) - 1
				if g >= total {
					return
				}
				d.runWorkgroup(int(g)%gx, int(g)/gx, k)
			}
		}
	}
	return d.pool.ExecuteAll(jobs)
}

func (d *Dispatcher) runWorkgroup(wx, wy int, k Kernel) {
	size := uint32(d.size) //nolint:gosec // positive by construction
	inv := Invocation{WorkgroupID: [2]uint32{uint32(wx), uint32(wy)}} //nolint:gosec // small grid
	for ly := uint32(0); ly < size; ly++ {
		for lx := uint32(0); lx < size; lx++ {
			inv.LocalID = [2]uint32{lx, ly}
			inv.GlobalID = [2]uint32{inv.WorkgroupID[0]*size + lx, inv.WorkgroupID[1]*size + ly}
			k(inv)
		}
	}
}
