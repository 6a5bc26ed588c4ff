package modelhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"llm-evaluator/internal/domain/model"
	modelrequests "llm-evaluator/internal/interfaces/httpserver/requests/models"
	"llm-evaluator/internal/interfaces/httpserver/responses"
	modelresponses "llm-evaluator/internal/interfaces/httpserver/responses/model"
	"llm-evaluator/internal/utils/platformerrors"
)

// ModelHandler handles model CRUD HTTP requests
type ModelHandler struct {
	modelService *model.ModelService
}

// NewModelHandler creates a new model handler
func NewModelHandler(modelService *model.ModelService) *ModelHandler {
	return &ModelHandler{modelService: modelService}
}

// CreateModel registers a model under a provider
func (h *ModelHandler) CreateModel(reqCtx *gin.Context) {
	var req modelrequests.CreateModelRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid model request body", "2c4e6a8d-0b2f-4c4e-8a6d-9f1b3d5a7c0e")
		return
	}

	m, err := h.modelService.CreateModel(reqCtx.Request.Context(), model.CreateModelInput{
		ProviderPublicID: req.ProviderID,
		ModelID:          req.ModelID,
		DisplayName:      req.Name,
		Reasoning:        req.IsReasoning,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to create model")
		return
	}

	reqCtx.JSON(http.StatusCreated, m)
}

// ListModels returns registered models; ?enabled=true restricts to selectable ones
func (h *ModelHandler) ListModels(reqCtx *gin.Context) {
	enabledOnly := reqCtx.Query("enabled") == "true"
	models, err := h.modelService.ListModels(reqCtx.Request.Context(), enabledOnly)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list models")
		return
	}

	reqCtx.JSON(http.StatusOK, models)
}

// GetModel returns one model
func (h *ModelHandler) GetModel(reqCtx *gin.Context) {
	m, err := h.modelService.GetModel(reqCtx.Request.Context(), reqCtx.Param("id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to retrieve model")
		return
	}

	reqCtx.JSON(http.StatusOK, m)
}

// ToggleModel flips whether a model can be selected for evaluation
func (h *ModelHandler) ToggleModel(reqCtx *gin.Context) {
	var req modelrequests.ToggleModelRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid toggle request body", "6e8a0c2d-4b6f-4e6a-9c8d-3f5b7d9a1c2e")
		return
	}

	m, err := h.modelService.SetEnabled(reqCtx.Request.Context(), reqCtx.Param("id"), req.Enabled)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to toggle model")
		return
	}

	reqCtx.JSON(http.StatusOK, m)
}

// DeleteModel removes a model registration
func (h *ModelHandler) DeleteModel(reqCtx *gin.Context) {
	publicID := reqCtx.Param("id")
	if err := h.modelService.DeleteModel(reqCtx.Request.Context(), publicID); err != nil {
		responses.HandleError(reqCtx, err, "failed to delete model")
		return
	}

	reqCtx.JSON(http.StatusOK, modelresponses.DeleteResponse{ID: publicID, Deleted: true})
}
