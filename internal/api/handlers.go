package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pj4239460/story-graph-assistant/internal/director"
	"github.com/pj4239460/story-graph-assistant/internal/logger"
	"github.com/pj4239460/story-graph-assistant/internal/model"
	"github.com/pj4239460/story-graph-assistant/internal/storage"
)

// Handlers wires the director, its lint pass, and the project/tick
// repositories into gin handlers. It mirrors the teacher's
// ExecutionHandlers shape: thin HTTP adapters calling into the domain,
// translating domain errors to APIError responses.
type Handlers struct {
	Dir      *director.Director
	Projects *storage.ProjectRepository
	Ticks    *storage.TickRepository
	Log      *logger.Logger
}

// NewHandlers returns a Handlers instance.
func NewHandlers(dir *director.Director, projects *storage.ProjectRepository, ticks *storage.TickRepository, log *logger.Logger) *Handlers {
	return &Handlers{Dir: dir, Projects: projects, Ticks: ticks, Log: log}
}

func respondJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, NewAPIError("ERROR", message, status))
}

func respondAPIError(c *gin.Context, err error) {
	apiErr := translateError(err)
	c.JSON(apiErr.HTTPStatus, apiErr)
}

// HandleCreateProject handles POST /projects: validates and persists a
// project document.
func (h *Handlers) HandleCreateProject(c *gin.Context) {
	var project model.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		respondAPIError(c, NewAPIError("INVALID_JSON", err.Error(), http.StatusBadRequest))
		return
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if err := project.Validate(); err != nil {
		respondAPIError(c, err)
		return
	}
	if err := h.Projects.Save(c.Request.Context(), &project); err != nil {
		h.Log.ErrorContext(c.Request.Context(), "failed to save project", "error", err, "project_id", project.ID)
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, project)
}

// HandleGetProject handles GET /projects/:project_id.
func (h *Handlers) HandleGetProject(c *gin.Context) {
	projectID := c.Param("project_id")
	project, err := h.Projects.FindByID(c.Request.Context(), projectID)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, project)
}

// HandleLintProject handles GET /projects/:project_id/lint, returning
// authoring-time diagnostics for storylets that can structurally never
// fire.
func (h *Handlers) HandleLintProject(c *gin.Context) {
	projectID := c.Param("project_id")
	project, err := h.Projects.FindByID(c.Request.Context(), projectID)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	findings := director.Lint(project)
	respondJSON(c, http.StatusOK, findings)
}

// HandleTick handles POST /projects/:project_id/threads/:thread_id/tick.
func (h *Handlers) HandleTick(c *gin.Context) {
	projectID := c.Param("project_id")
	threadID := c.Param("thread_id")

	if claims, ok := claimsFrom(c); ok && !claims.AllowsProject(projectID) {
		respondError(c, http.StatusForbidden, "token is not scoped to this project")
		return
	}

	project, err := h.Projects.FindByID(c.Request.Context(), projectID)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	record, err := h.Dir.Tick(c.Request.Context(), project, threadID)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	if h.Ticks != nil {
		if err := h.Ticks.Append(c.Request.Context(), projectID, threadID, record); err != nil {
			h.Log.ErrorContext(c.Request.Context(), "failed to persist tick record", "error", err, "thread_id", threadID)
		}
	}

	respondJSON(c, http.StatusOK, record)
}

// HandleHistory handles GET /projects/:project_id/threads/:thread_id/history.
func (h *Handlers) HandleHistory(c *gin.Context) {
	threadID := c.Param("thread_id")
	records, err := h.Ticks.ListByThread(c.Request.Context(), threadID)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, records)
}

// HandleReplay handles POST /projects/:project_id/replay?from=&to=.
func (h *Handlers) HandleReplay(c *gin.Context) {
	projectID := c.Param("project_id")
	project, err := h.Projects.FindByID(c.Request.Context(), projectID)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	from := queryInt(c, "from", 0)
	to := queryInt(c, "to", 0)

	records, err := h.Dir.Replay(c.Request.Context(), project, from, to)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, records)
}

// HandleExplain handles POST /projects/:project_id/storylets/:storylet_id/explain.
// The request body carries the state snapshot to explain against, since
// Explain never mutates thread state and callers may want to probe a
// hypothetical state rather than a live thread.
func (h *Handlers) HandleExplain(c *gin.Context) {
	projectID := c.Param("project_id")
	storyletID := c.Param("storylet_id")

	project, err := h.Projects.FindByID(c.Request.Context(), projectID)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	var storylet *model.Storylet
	for _, s := range project.Storylets {
		if s.ID == storyletID {
			storylet = s
			break
		}
	}
	if storylet == nil {
		respondError(c, http.StatusNotFound, "storylet not found")
		return
	}

	var body struct {
		State *model.State `json:"state"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.State == nil {
		body.State = project.SeedState
		if body.State == nil {
			body.State = model.NewState()
		}
	}

	reasons, err := h.Dir.Explain(c.Request.Context(), storylet, project.Config.Mode, nil, body.State)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"storylet_id": storyletID, "reasons": reasons})
}

// HandleIssueToken handles POST /auth/token, minting a bearer token
// scoped to the requested project ids. In production this would sit
// behind its own operator-only authentication; left open here since
// the core spec has no concept of operator identity.
func (h *Handlers) HandleIssueToken(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Subject      string   `json:"subject"`
			ProjectScope []string `json:"project_scope"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondAPIError(c, NewAPIError("INVALID_JSON", err.Error(), http.StatusBadRequest))
			return
		}
		token, expiresAt, err := tokens.Issue(req.Subject, req.ProjectScope)
		if err != nil {
			respondAPIError(c, err)
			return
		}
		respondJSON(c, http.StatusOK, gin.H{"token": token, "expires_at": expiresAt.Format(time.RFC3339)})
	}
}

func queryInt(c *gin.Context, name string, defaultValue int) int {
	value := c.Query(name)
	if value == "" {
		return defaultValue
	}
	out, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return out
}
