// Package compute holds the compute command backend node.
package compute

import (
	"github.com/Carmen-Shannon/oxy-render/engine/backend"
	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
)

// ComputeCommand dispatches a compute shader over a grid of work groups. A manual command counts down its frame count
// and disables itself once the count is spent.
type ComputeCommand struct {
	backend.BackendNode
	workGroups [3]int32
	runType    frontend.ComputeRunType

	// requestedFrameCount is the last front-end value; frameCount is what remains of it.
	requestedFrameCount int32
	frameCount          int32
	reachedFrameCount   bool
}

var _ backend.Node = &ComputeCommand{}

// NewComputeCommand returns a continuous command with one work group per axis.
func NewComputeCommand() *ComputeCommand {
	return &ComputeCommand{workGroups: [3]int32{1, 1, 1}}
}

func (c *ComputeCommand) WorkGroups() [3]int32 { return c.workGroups }

func (c *ComputeCommand) RunType() frontend.ComputeRunType { return c.runType }

// FrameCount returns the number of frames a manual command still dispatches.
func (c *ComputeCommand) FrameCount() int32 { return c.frameCount }

// HasReachedFrameCount reports whether a manual command spent its frame count.
func (c *ComputeCommand) HasReachedFrameCount() bool { return c.reachedFrameCount }

func (c *ComputeCommand) SyncFromFrontEnd(fe frontend.Node, firstTime bool) {
	node, ok := fe.(frontend.ComputeCommand)
	if !ok {
		return
	}
	dirty := c.SyncCommon(fe, firstTime) || firstTime
	if groups := [3]int32{node.WorkGroupX, node.WorkGroupY, node.WorkGroupZ}; c.workGroups != groups {
		c.workGroups = groups
		dirty = true
	}
	if c.runType != node.RunType {
		c.runType = node.RunType
		dirty = true
	}
	if firstTime || c.requestedFrameCount != node.FrameCount {
		c.requestedFrameCount = node.FrameCount
		c.frameCount = node.FrameCount
		c.reachedFrameCount = false
		dirty = true
	}
	if c.reachedFrameCount && c.IsEnabled() {
		// The front end re-enabled a spent command without re-arming it.
		c.SetEnabled(false)
	}
	if dirty {
		c.MarkDirtyFrom(backend.ComputeDirty, c)
	}
}

// UpdateFrameCount consumes one frame of a manual command, disabling it once the count reaches zero.
// Continuous and disabled commands are left untouched.
//
// Returns:
//   - bool: true if this call spent the last frame
func (c *ComputeCommand) UpdateFrameCount() bool {
	if c.runType != frontend.ComputeRunManual || !c.IsEnabled() || c.reachedFrameCount {
		return false
	}
	c.frameCount--
	if c.frameCount > 0 {
		return false
	}
	c.frameCount = 0
	c.reachedFrameCount = true
	c.SetEnabled(false)
	return true
}

func (c *ComputeCommand) Cleanup() {
	c.ResetCommon()
	c.workGroups = [3]int32{1, 1, 1}
	c.runType = frontend.ComputeRunContinuous
	c.requestedFrameCount = 0
	c.frameCount = 0
	c.reachedFrameCount = false
}
