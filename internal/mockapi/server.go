// Package mockapi is an in-memory crew API server for local development and
// integration tests. It honors the same wire contract the real API does:
// resource CRUD plus per-task message history with server-assigned
// sequences.
package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/crewdeck/crewdeck/internal/api"
)

// Options configures a Server.
type Options struct {
	// Token, when set, is required as a bearer token on every request.
	Token string
	// ReplyDelay is how long after a posted user message the canned
	// assistant reply appears. Zero disables replies.
	ReplyDelay time.Duration
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server holds the in-memory state behind the handler.
type Server struct {
	token      string
	replyDelay time.Duration
	log        *slog.Logger
	router     *mux.Router

	mu       sync.Mutex
	agents   []api.Agent
	teams    []api.Team
	tasks    []api.Task
	messages map[string][]api.Message
	seqs     map[string]int64
}

// New creates a mock server with empty state.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		token:      opts.Token,
		replyDelay: opts.ReplyDelay,
		log:        log,
		messages:   make(map[string][]api.Message),
		seqs:       make(map[string]int64),
	}
	r := mux.NewRouter()
	r.Use(s.authMiddleware)

	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	r.HandleFunc("/agents", s.handleListAgents).Methods(http.MethodGet)
	r.HandleFunc("/agents", s.handleCreateAgent).Methods(http.MethodPost)
	r.HandleFunc("/agents/{id}", s.handleDeleteAgent).Methods(http.MethodDelete)

	r.HandleFunc("/teams", s.handleListTeams).Methods(http.MethodGet)
	r.HandleFunc("/teams", s.handleCreateTeam).Methods(http.MethodPost)
	r.HandleFunc("/teams/{id}", s.handleDeleteTeam).Methods(http.MethodDelete)

	r.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", s.handleGetTask).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", s.handleDeleteTask).Methods(http.MethodDelete)

	r.HandleFunc("/tasks/{id}/messages", s.handleListMessages).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}/messages", s.handlePostMessage).Methods(http.MethodPost)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != s.token {
				writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := api.Stats{
		Agents:        len(s.agents),
		Teams:         len(s.teams),
		Tasks:         len(s.tasks),
		TasksByStatus: map[string]int{},
	}
	for _, task := range s.tasks {
		stats.TasksByStatus[task.Status]++
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]api.Agent(nil), s.agents...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	agent := api.Agent{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Role:      req.Role,
		Model:     req.Model,
		Status:    "idle",
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.agents = append(s.agents, agent)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, agent)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, agent := range s.agents {
		if agent.ID == id {
			s.agents = append(s.agents[:i], s.agents[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "agent not found")
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]api.Team(nil), s.teams...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	team := api.Team{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		AgentIDs:  req.AgentIDs,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.teams = append(s.teams, team)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, team := range s.teams {
		if team.ID == id {
			s.teams = append(s.teams[:i], s.teams[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "team not found")
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]api.Task(nil), s.tasks...)
	s.mu.Unlock()
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	now := time.Now().UTC()
	task := api.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      api.TaskStatusPending,
		AgentID:     req.AgentID,
		TeamID:      req.TeamID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.messages[task.ID] = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) findTask(id string) (api.Task, bool) {
	for _, task := range s.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return api.Task{}, false
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	task, ok := s.findTask(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, task := range s.tasks {
		if task.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			delete(s.messages, id)
			delete(s.seqs, id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	_, ok := s.findTask(id)
	items := append([]api.Message(nil), s.messages[id]...)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, api.MessagePage{Items: items, Total: len(items)})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	s.mu.Lock()
	if _, ok := s.findTask(id); !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	msg := s.appendLocked(id, "user", strings.TrimSpace(req.Content))
	delay := s.replyDelay
	s.mu.Unlock()

	if delay > 0 {
		time.AfterFunc(delay, func() { s.reply(id, msg.Content) })
	}
	writeJSON(w, http.StatusCreated, msg)
}

// appendLocked assigns the next sequence for the task and stores the
// message. Caller holds the lock.
func (s *Server) appendLocked(taskID, role, content string) api.Message {
	s.seqs[taskID]++
	n := s.seqs[taskID]
	msg := api.Message{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Sequence:  &n,
	}
	s.messages[taskID] = append(s.messages[taskID], msg)
	return msg
}

// reply emits the canned assistant response, if the task still exists.
func (s *Server) reply(taskID, userContent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findTask(taskID); !ok {
		return
	}
	s.appendLocked(taskID, "assistant", "ack: "+userContent)
}

// SeedTask inserts a task directly, for tests and demos.
func (s *Server) SeedTask(task api.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = api.TaskStatusPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	s.tasks = append(s.tasks, task)
}

// SeedMessage appends a message to a task directly, for tests and demos.
func (s *Server) SeedMessage(taskID, role, content string) api.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(taskID, role, content)
}
