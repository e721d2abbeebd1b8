package api

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	astroerrors "github.com/mrz1836/astromedia/internal/errors"
	"github.com/mrz1836/astromedia/internal/logging"
	"github.com/mrz1836/astromedia/internal/task"
)

type healthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Tasks       int    `json:"tasks"`
	Subscribers int    `json:"subscribers"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Uptime:      time.Since(s.startTime).Round(time.Second).String(),
		Tasks:       len(s.deps.Feed.Tasks()),
		Subscribers: s.deps.Feed.Subscribers(),
	})
}

func (s *Server) handleListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Agents.List())
}

// createTaskRequest is the body of POST /api/tasks.
type createTaskRequest struct {
	AgentID     string `json:"agent_id"`
	Title       string `json:"title"`
	MaxAttempts int    `json:"max_attempts"`
	Scenario    string `json:"scenario"`
}

type createTaskResponse struct {
	ID   string            `json:"id"`
	Task *domain.AgentTask `json:"task,omitempty"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Scenario != "" && !slices.Contains(s.deps.Tasks.Scenarios(), req.Scenario) {
		abortWithError(c, fmt.Errorf("%w: %q", astroerrors.ErrUnknownScenario, req.Scenario))
		return
	}
	if req.MaxAttempts < 0 || req.MaxAttempts > constants.MaxAttemptsLimit {
		badRequest(c, fmt.Errorf("max_attempts must be between 0 and %d", constants.MaxAttemptsLimit))
		return
	}

	id := s.deps.Tasks.Run(s.taskCtx, task.Request{
		AgentID:     req.AgentID,
		Title:       req.Title,
		MaxAttempts: req.MaxAttempts,
		Scenario:    req.Scenario,
	}, s.deps.Feed.Publish)

	// the initial snapshot is published before Run returns
	snapshot, _ := s.deps.Feed.Task(id)
	c.JSON(http.StatusAccepted, createTaskResponse{ID: id, Task: snapshot})
}

func (s *Server) handleListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Feed.Tasks())
}

func (s *Server) handleGetTask(c *gin.Context) {
	id := c.Param("id")
	snapshot, ok := s.deps.Feed.Task(id)
	if !ok {
		abortWithError(c, fmt.Errorf("%w: %s", astroerrors.ErrTaskNotFound, id))
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleListAssets(c *gin.Context) {
	assets, err := s.deps.Store.Assets(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (s *Server) handleSaveAsset(c *gin.Context) {
	var asset domain.MediaAsset
	if err := c.ShouldBindJSON(&asset); err != nil {
		badRequest(c, err)
		return
	}
	if !asset.Type.IsValid() {
		badRequest(c, fmt.Errorf("unknown media type %q", asset.Type))
		return
	}
	if strings.TrimSpace(asset.URL) == "" {
		abortWithError(c, fmt.Errorf("asset url %w", astroerrors.ErrEmptyValue))
		return
	}
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}

	if err := s.deps.Store.SaveAsset(c.Request.Context(), asset); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asset)
}

func (s *Server) handleDeleteAsset(c *gin.Context) {
	if err := s.deps.Store.DeleteAsset(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListCampaigns(c *gin.Context) {
	campaigns, err := s.deps.Store.Campaigns(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

// createCampaignRequest is the body of POST /api/campaigns.
type createCampaignRequest struct {
	Name        string     `json:"name"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

func (s *Server) handleCreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	campaign, err := s.deps.Store.CreateCampaign(c.Request.Context(), req.Name, req.ScheduledAt)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (s *Server) handleListPosts(c *gin.Context) {
	posts, err := s.deps.Store.Posts(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

type publishResponse struct {
	JobID string `json:"job_id"`
}

func (s *Server) handlePublish(c *gin.Context) {
	var req domain.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	jobID, err := s.deps.Publisher.Publish(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, publishResponse{JobID: jobID})
}

func (s *Server) handleListAccounts(c *gin.Context) {
	accounts, err := s.deps.Store.AccountList(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

type setAccountRequest struct {
	Connected *bool `json:"connected"`
}

func (s *Server) handleSetAccount(c *gin.Context) {
	var req setAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Connected == nil {
		abortWithError(c, fmt.Errorf("connected %w", astroerrors.ErrEmptyValue))
		return
	}

	platform := constants.Platform(strings.ToLower(c.Param("platform")))
	account := domain.Account{Platform: platform, Connected: *req.Connected}

	if !account.Connected {
		if err := s.deps.Store.DisconnectAccount(c.Request.Context(), platform); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
		return
	}

	token, err := s.deps.Store.ConnectAccount(c.Request.Context(), platform)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.logger.Info().Str("platform", string(platform)).Msg("account connected")
	account.Token = logging.MaskSecret(token)
	c.JSON(http.StatusOK, account)
}
