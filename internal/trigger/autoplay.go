// Package trigger drives unattended ticking of registered threads on a
// cron schedule, the way the teacher's application/trigger package
// fires scheduled workflow executions.
package trigger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pj4239460/story-graph-assistant/internal/director"
	"github.com/pj4239460/story-graph-assistant/internal/logger"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/storage"
)

// autoplayConcurrency bounds how many targets tickAll drives at once —
// Director itself tolerates concurrent Tick calls across distinct
// thread ids, but an unbounded fan-out would let one autoplay run open
// as many outbound judge/DB calls as there are registered threads.
const autoplayConcurrency = 8

// threadTarget names one (project, thread) pair the autoplay scheduler
// should tick on its own schedule. Unlike the teacher's per-workflow
// triggers, the schedule here is process-global (spec's core has no
// notion of per-storylet scheduling) — each registered target shares
// one cron entry.
type threadTarget struct {
	ProjectID string
	ThreadID  string
}

// Scheduler ticks every registered (project, thread) pair on a single
// cron schedule. It is the operational surface that lets a project run
// unattended instead of only in response to an API call.
type Scheduler struct {
	dir      *director.Director
	projects *storage.ProjectRepository
	ticks    *storage.TickRepository
	log      *logger.Logger

	cron *cron.Cron

	mu      sync.RWMutex
	targets map[threadTarget]bool
}

// NewScheduler returns a Scheduler that has not yet been started.
func NewScheduler(dir *director.Director, projects *storage.ProjectRepository, ticks *storage.TickRepository, log *logger.Logger) *Scheduler {
	return &Scheduler{
		dir:      dir,
		projects: projects,
		ticks:    ticks,
		log:      log,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		targets:  make(map[threadTarget]bool),
	}
}

// Register adds (projectID, threadID) to the autoplay set. Idempotent.
func (s *Scheduler) Register(projectID, threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[threadTarget{ProjectID: projectID, ThreadID: threadID}] = true
}

// Unregister removes (projectID, threadID) from the autoplay set.
func (s *Scheduler) Unregister(projectID, threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, threadTarget{ProjectID: projectID, ThreadID: threadID})
}

// Start adds the autoplay job under spec and starts the cron scheduler.
// spec follows robfig/cron syntax, e.g. "@every 1m" or "0 */5 * * * *".
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.tickAll)
	if err != nil {
		return fmt.Errorf("invalid autoplay schedule %q: %w", spec, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any in-flight tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// tickAll runs one Director.Tick per registered target concurrently
// (bounded by autoplayConcurrency), logging — never propagating —
// per-target failures so one stuck thread never blocks the rest of the
// fleet and never aborts the whole run via errgroup's error channel.
func (s *Scheduler) tickAll() {
	s.mu.RLock()
	targets := make([]threadTarget, 0, len(s.targets))
	for t := range s.targets {
		targets = append(targets, t)
	}
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var cacheMu sync.Mutex
	projectCache := make(map[string]*model.Project, len(targets))
	loadProject := func(id string) (*model.Project, error) {
		cacheMu.Lock()
		if p, ok := projectCache[id]; ok {
			cacheMu.Unlock()
			return p, nil
		}
		cacheMu.Unlock()

		p, err := s.projects.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		cacheMu.Lock()
		projectCache[id] = p
		cacheMu.Unlock()
		return p, nil
	}

	var g errgroup.Group
	g.SetLimit(autoplayConcurrency)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			project, err := loadProject(t.ProjectID)
			if err != nil {
				s.log.ErrorContext(ctx, "autoplay: failed to load project", "error", err, "project_id", t.ProjectID)
				return nil
			}

			record, err := s.dir.Tick(ctx, project, t.ThreadID)
			if err != nil {
				s.log.ErrorContext(ctx, "autoplay: tick failed", "error", err, "project_id", t.ProjectID, "thread_id", t.ThreadID)
				return nil
			}

			if s.ticks != nil {
				if err := s.ticks.Append(ctx, t.ProjectID, t.ThreadID, record); err != nil {
					s.log.ErrorContext(ctx, "autoplay: failed to persist tick", "error", err, "thread_id", t.ThreadID)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}
