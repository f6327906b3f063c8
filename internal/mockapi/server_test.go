package mockapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crewdeck/crewdeck/internal/api"
)

func newTestServer(t *testing.T, opts Options) (*Server, *api.Client) {
	t.Helper()
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	var clientOpts []api.Option
	if opts.Token != "" {
		clientOpts = append(clientOpts, api.WithHeaderInjector(api.BearerToken(opts.Token)))
	}
	return s, api.NewClient(ts.URL, clientOpts...)
}

func TestResourceLifecycle(t *testing.T) {
	_, client := newTestServer(t, Options{})
	ctx := context.Background()

	agent, err := client.CreateAgent(ctx, api.CreateAgentRequest{Name: "researcher", Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	team, err := client.CreateTeam(ctx, api.CreateTeamRequest{Name: "core", AgentIDs: []string{agent.ID}})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	task, err := client.CreateTask(ctx, api.CreateTaskRequest{Title: "triage inbox", AgentID: agent.ID, TeamID: team.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	stats, err := client.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Agents != 1 || stats.Teams != 1 || stats.Tasks != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.TasksByStatus[api.TaskStatusPending] != 1 {
		t.Fatalf("tasks by status = %v", stats.TasksByStatus)
	}

	if err := client.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := client.GetTask(ctx, task.ID); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("get deleted task = %v, want ErrNotFound", err)
	}
	if err := client.DeleteAgent(ctx, agent.ID); err != nil {
		t.Fatalf("delete agent: %v", err)
	}
	if err := client.DeleteTeam(ctx, team.ID); err != nil {
		t.Fatalf("delete team: %v", err)
	}
}

func TestMessagesGetSequences(t *testing.T) {
	s, client := newTestServer(t, Options{})
	ctx := context.Background()

	task, err := client.CreateTask(ctx, api.CreateTaskRequest{Title: "chat"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	s.SeedMessage(task.ID, "system", "task created")
	if err := client.PostMessage(ctx, task.ID, "first"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := client.PostMessage(ctx, task.ID, "second"); err != nil {
		t.Fatalf("post: %v", err)
	}

	msgs, err := client.ListMessages(ctx, task.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	for i, m := range msgs {
		if m.Sequence == nil || *m.Sequence != int64(i+1) {
			t.Fatalf("message %d sequence = %v", i, m.Sequence)
		}
	}
}

func TestUnknownTaskIsNotFound(t *testing.T) {
	_, client := newTestServer(t, Options{})
	ctx := context.Background()

	if _, err := client.ListMessages(ctx, "nope"); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("list unknown task = %v, want ErrNotFound", err)
	}
	if err := client.PostMessage(ctx, "nope", "hi"); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("post unknown task = %v, want ErrNotFound", err)
	}
}

func TestBearerTokenEnforcement(t *testing.T) {
	s := New(Options{Token: "sekrit"})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	anon := api.NewClient(ts.URL)
	if _, err := anon.ListTasks(context.Background()); !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("anonymous list = %v, want ErrUnauthorized", err)
	}

	authed := api.NewClient(ts.URL, api.WithHeaderInjector(api.BearerToken("sekrit")))
	if _, err := authed.ListTasks(context.Background()); err != nil {
		t.Fatalf("authed list: %v", err)
	}
}

func TestCannedAssistantReply(t *testing.T) {
	_, client := newTestServer(t, Options{ReplyDelay: 10 * time.Millisecond})
	ctx := context.Background()

	task, err := client.CreateTask(ctx, api.CreateTaskRequest{Title: "chat"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := client.PostMessage(ctx, task.ID, "ping"); err != nil {
		t.Fatalf("post: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msgs, err := client.ListMessages(ctx, task.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(msgs) == 2 {
			if msgs[1].Role != "assistant" {
				t.Fatalf("second message role = %q", msgs[1].Role)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("assistant reply never arrived")
}
