package jobs

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/compute"
	"github.com/Carmen-Shannon/oxy-render/engine/manager"
)

// UpdateComputeCommandsJob counts down the frames of enabled manual compute commands. Commands that reach zero
// disable themselves and are reported through Finished.
type UpdateComputeCommandsJob struct {
	managers *manager.NodeManagers
	finished []common.NodeId
}

func NewUpdateComputeCommandsJob(m *manager.NodeManagers) *UpdateComputeCommandsJob {
	return &UpdateComputeCommandsJob{managers: m}
}

// Finished returns the commands that ran their last frame during the last run.
func (j *UpdateComputeCommandsJob) Finished() []common.NodeId { return j.finished }

func (j *UpdateComputeCommandsJob) Run() {
	j.finished = j.finished[:0]
	j.managers.ComputeCommands.Range(func(id common.NodeId, c *compute.ComputeCommand) bool {
		if c.IsEnabled() && c.UpdateFrameCount() {
			j.finished = append(j.finished, id)
		}
		return true
	})
}
