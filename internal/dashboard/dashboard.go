// Package dashboard aggregates crew API resources into the overview shown
// by the status command.
package dashboard

import (
	"context"
	"sort"
	"sync"

	"github.com/crewdeck/crewdeck/internal/api"
)

// RecentTaskLimit caps how many tasks the overview carries.
const RecentTaskLimit = 10

// Overview is a point-in-time summary of the crew.
type Overview struct {
	Stats       api.Stats
	Agents      []api.Agent
	Teams       []api.Team
	RecentTasks []api.Task
}

// Service fetches overviews.
type Service struct {
	client *api.Client
}

// NewService creates a dashboard service over the given client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Overview fetches the stats and resource listings concurrently; the first
// failure cancels the rest and wins.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
		out   Overview
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		stats, err := s.client.GetStats(ctx)
		record(err)
		if err == nil {
			out.Stats = *stats
		}
	}()
	go func() {
		defer wg.Done()
		agents, err := s.client.ListAgents(ctx)
		record(err)
		out.Agents = agents
	}()
	go func() {
		defer wg.Done()
		teams, err := s.client.ListTeams(ctx)
		record(err)
		out.Teams = teams
	}()
	go func() {
		defer wg.Done()
		tasks, err := s.client.ListTasks(ctx)
		record(err)
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
		if len(tasks) > RecentTaskLimit {
			tasks = tasks[:RecentTaskLimit]
		}
		out.RecentTasks = tasks
	}()
	wg.Wait()

	if first != nil {
		return nil, first
	}
	return &out, nil
}
