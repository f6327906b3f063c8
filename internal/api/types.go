package api

import "time"

// Message is the wire representation of a single chat message within a task.
type Message struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"taskId,omitempty"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	Sequence  *int64         `json:"sequence,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// MessagePage is the response envelope for a message listing.
type MessagePage struct {
	Items []Message `json:"items"`
	Total int       `json:"total"`
}

// Task statuses used by the crew API.
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// Task represents a server-side unit of work a conversation belongs to.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	AgentID     string    `json:"agentId,omitempty"`
	TeamID      string    `json:"teamId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Agent represents a configured agent on the server.
type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	Model     string    `json:"model,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Team groups agents under a shared name.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AgentIDs  []string  `json:"agentIds,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats summarizes resource counts for the dashboard.
type Stats struct {
	Agents        int            `json:"agents"`
	Teams         int            `json:"teams"`
	Tasks         int            `json:"tasks"`
	TasksByStatus map[string]int `json:"tasksByStatus,omitempty"`
}
