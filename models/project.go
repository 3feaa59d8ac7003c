package models

import "time"

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

type Project struct {
	ID          ID            `json:"id" bson:"_id"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description" bson:"description"`
	Status      ProjectStatus `json:"status" bson:"status"`
	Progress    int           `json:"progress" bson:"progress"`
	StartDate   *string       `json:"start_date" bson:"start_date"`
	EndDate     *string       `json:"end_date" bson:"end_date"`
	TeamMembers MemberSet     `json:"team_members" bson:"team_members"`
	CreatedBy   ID            `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}
