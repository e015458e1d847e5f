package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/taskflow-backend/internal/domain"
)

// Event is the wire form of a committed project or task change.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Action    string          `json:"action"`
	ProjectID uuid.UUID       `json:"project_id"`
	TaskID    *uuid.UUID      `json:"task_id,omitempty"`
	ActorID   uuid.UUID       `json:"actor_id"`
	Details   json.RawMessage `json:"details,omitempty"`
	At        time.Time       `json:"at"`
}

const projectDeletedAction = domain.ActionProjectDeleted

func EventFromActivity(a *domain.ActivityEntry) Event {
	return Event{
		ID:        a.ID,
		Action:    a.Action,
		ProjectID: a.ProjectID,
		TaskID:    a.TaskID,
		ActorID:   a.ActorID,
		Details:   json.RawMessage(a.Details),
		At:        a.CreatedAt,
	}
}
