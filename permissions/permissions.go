// Package permissions derives what the current user may do with a task or a
// project. The result only drives which controls are enabled and which
// fields go into an update; the record store enforces the real policy.
package permissions

import (
	"errors"

	"dashboard-project/backend/dashboard-service/models"
)

var ErrNotPermitted = errors.New("not permitted to modify this record")

var (
	TaskLimitedFields    = []string{"status", "priority"}
	ProjectLimitedFields = []string{"status", "progress"}
)

// Capabilities is the permission snapshot of one record for one user. It is
// recomputed on every read and never stored.
type Capabilities struct {
	CanFullyEdit           bool `json:"can_fully_edit"`
	CanUpdateLimitedFields bool `json:"can_update_limited_fields"`
	CanDelete              bool `json:"can_delete"`
}

// CanMutate reports whether any update is allowed.
func (c Capabilities) CanMutate() bool {
	return c.CanFullyEdit || c.CanUpdateLimitedFields
}

// LimitedOnly reports whether updates must be restricted to the limited
// fields.
func (c Capabilities) LimitedOnly() bool {
	return !c.CanFullyEdit && c.CanUpdateLimitedFields
}

// Evaluate is the owner/assignee rule shared by tasks and projects. exists is
// false in creation mode. An empty currentID matches neither the creator nor
// any member.
func Evaluate(currentID string, exists bool, createdBy string, members []string) Capabilities {
	if !exists {
		return Capabilities{CanFullyEdit: true}
	}
	isCreator := currentID != "" && currentID == createdBy
	return Capabilities{
		CanFullyEdit:           isCreator,
		CanUpdateLimitedFields: isMember(currentID, members),
		CanDelete:              isCreator,
	}
}

func ForTask(currentID models.ID, task *models.Task) Capabilities {
	if task == nil {
		return Evaluate(string(currentID), false, "", nil)
	}
	return Evaluate(string(currentID), true, string(task.CreatedBy), task.AssignedTo.IDs)
}

func ForProject(currentID models.ID, project *models.Project) Capabilities {
	if project == nil {
		return Evaluate(string(currentID), false, "", nil)
	}
	return Evaluate(string(currentID), true, string(project.CreatedBy), project.TeamMembers.IDs)
}

// ScopePatch returns the payload a user with caps may send. Full editors get
// the full patch. Limited editors get only the limited columns plus any
// always columns (timestamps), so stale form values for other fields never
// reach the store.
func ScopePatch(caps Capabilities, full models.Patch, limited []string, always ...string) (models.Patch, error) {
	switch {
	case caps.CanFullyEdit:
		return full.Clone(), nil
	case caps.CanUpdateLimitedFields:
		return full.Only(append(append([]string{}, limited...), always...)...), nil
	}
	return nil, ErrNotPermitted
}

func isMember(id string, members []string) bool {
	if id == "" {
		return false
	}
	for _, m := range members {
		if m == id {
			return true
		}
	}
	return false
}
