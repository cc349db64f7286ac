// Package handler exposes the qualification context over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadqual_backend/internal/qualification/domain"
	"leadqual_backend/internal/qualification/rubric"
	"leadqual_backend/internal/qualification/scoring"
	"leadqual_backend/internal/qualification/service"
	"leadqual_backend/internal/qualification/transport"
	"leadqual_backend/platform/httpkit"
	"leadqual_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc     *service.Service
	handoff *service.Handoff
	rubrics *rubric.Store
}

func New(svc *service.Service, handoff *service.Handoff, rubrics *rubric.Store) *Handler {
	return &Handler{svc: svc, handoff: handoff, rubrics: rubrics}
}

func (h *Handler) RegisterConversationRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/turns", h.PostTurn)
	rg.GET("/:id/facts", h.GetFacts)
	rg.POST("/:id/assignments", h.PostAssignment)
}

func (h *Handler) RegisterOrganizationRoutes(rg *gin.RouterGroup) {
	rg.GET("/:orgId/rubric", h.GetRubric)
	rg.PUT("/:orgId/rubric", h.PutRubric)
}

func (h *Handler) PostTurn(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.HandleTurn(c.Request.Context(), conversationID, orgID, req.Message)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	resp := transport.TurnResponse{
		Reply:     result.Reply,
		Step:      string(result.Step),
		Completed: result.Completed,
		Degraded:  result.Degraded,
		Facts:     transport.NewFactsResponse(result.Facts, result.Step),
	}
	if result.Score != nil {
		resp.Score = &transport.ScoreResponse{
			Score: result.Score.Score,
			Tier:  string(result.Score.Tier),
		}
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetFacts(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	facts, step, err := h.svc.Facts(c.Request.Context(), conversationID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.NewFactsResponse(facts, step))
}

type assignmentRequest struct {
	OrganizationID string `json:"organizationId" validate:"required,uuid"`
}

// PostAssignment re-runs the handoff for an already qualified conversation,
// for example after new agents joined an organization that had none.
func (h *Handler) PostAssignment(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	orgID, _ := uuid.Parse(req.OrganizationID)

	facts, step, err := h.svc.Facts(c.Request.Context(), conversationID)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to load facts", nil)
		return
	}
	if step != domain.StepComplete {
		httpkit.Error(c, http.StatusConflict, "conversation is not fully qualified yet", gin.H{"currentStep": string(step)})
		return
	}

	cfg, _, err := h.rubrics.Resolve(c.Request.Context(), orgID)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to resolve rubric", nil)
		return
	}
	score := scoring.Score(facts, cfg)

	agent, err := h.handoff.Run(c.Request.Context(), conversationID, orgID, score.Score, string(score.Tier))
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to assign conversation", nil)
		return
	}

	resp := transport.AssignmentResponse{Assigned: agent != nil}
	if agent != nil {
		id := agent.ID.String()
		resp.AgentID = &id
		resp.AgentName = &agent.FullName
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetRubric(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	stored, err := h.rubrics.Get(c.Request.Context(), orgID)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to load rubric", nil)
		return
	}

	if stored == nil {
		doc := rubric.DefaultDocument()
		description, err := rubric.Describe(doc)
		if err != nil {
			httpkit.Error(c, http.StatusInternalServerError, "failed to describe rubric", nil)
			return
		}
		httpkit.OK(c, transport.RubricResponse{Document: doc, Description: description, Default: true})
		return
	}

	httpkit.OK(c, transport.RubricResponse{Document: stored.Document, Description: stored.Description})
}

func (h *Handler) PutRubric(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.RubricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	updatedBy, _ := uuid.Parse(req.UpdatedBy)

	if errs := rubric.Validate(req.Document); len(errs) > 0 {
		httpkit.HandleError(c, rubric.ValidationError(errs))
		return
	}

	description, err := h.rubrics.Save(c.Request.Context(), orgID, updatedBy, req.Document)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to save rubric", nil)
		return
	}

	httpkit.OK(c, transport.RubricResponse{Document: req.Document, Description: description})
}
