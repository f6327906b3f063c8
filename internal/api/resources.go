package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListTasks returns all tasks visible to the caller.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var out struct {
		Items []Task `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetTask fetches one task by id.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTaskRequest is the payload for CreateTask.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AgentID     string `json:"agentId,omitempty"`
	TeamID      string `json:"teamId,omitempty"`
}

// CreateTask creates a task and returns the server copy.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task and its conversation.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// ListAgents returns all agents.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var out struct {
		Items []Agent `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/agents", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateAgentRequest is the payload for CreateAgent.
type CreateAgentRequest struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Model string `json:"model,omitempty"`
}

// CreateAgent registers a new agent.
func (c *Client) CreateAgent(ctx context.Context, req CreateAgentRequest) (*Agent, error) {
	var agent Agent
	if err := c.do(ctx, http.MethodPost, "/agents", req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// DeleteAgent removes an agent.
func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/agents/"+url.PathEscape(id), nil, nil)
}

// ListTeams returns all teams.
func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	var out struct {
		Items []Team `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/teams", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateTeamRequest is the payload for CreateTeam.
type CreateTeamRequest struct {
	Name     string   `json:"name"`
	AgentIDs []string `json:"agentIds,omitempty"`
}

// CreateTeam creates a team.
func (c *Client) CreateTeam(ctx context.Context, req CreateTeamRequest) (*Team, error) {
	var team Team
	if err := c.do(ctx, http.MethodPost, "/teams", req, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// DeleteTeam removes a team.
func (c *Client) DeleteTeam(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/teams/"+url.PathEscape(id), nil, nil)
}

// GetStats fetches the dashboard counters.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
