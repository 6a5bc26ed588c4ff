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

// ProviderHandler handles provider CRUD and sync HTTP requests
type ProviderHandler struct {
	providerService *model.ProviderService
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(providerService *model.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerService: providerService}
}

// CreateProvider registers an OpenAI-compatible endpoint
func (h *ProviderHandler) CreateProvider(reqCtx *gin.Context) {
	var req modelrequests.CreateProviderRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation,
			"invalid provider request body", "8a0c2e4d-6b8f-4a2c-9e4d-1f3b5d7a9c8e")
		return
	}

	provider, err := h.providerService.CreateProvider(reqCtx.Request.Context(), model.CreateProviderInput{
		Name:    req.Name,
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to create provider")
		return
	}

	reqCtx.JSON(http.StatusCreated, provider)
}

// ListProviders returns all registered providers
func (h *ProviderHandler) ListProviders(reqCtx *gin.Context) {
	providers, err := h.providerService.ListProviders(reqCtx.Request.Context())
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list providers")
		return
	}

	reqCtx.JSON(http.StatusOK, providers)
}

// GetProvider returns one provider
func (h *ProviderHandler) GetProvider(reqCtx *gin.Context) {
	provider, err := h.providerService.GetProvider(reqCtx.Request.Context(), reqCtx.Param("id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to retrieve provider")
		return
	}

	reqCtx.JSON(http.StatusOK, provider)
}

// DeleteProvider removes a provider and its models
func (h *ProviderHandler) DeleteProvider(reqCtx *gin.Context) {
	publicID := reqCtx.Param("id")
	if err := h.providerService.DeleteProvider(reqCtx.Request.Context(), publicID); err != nil {
		responses.HandleError(reqCtx, err, "failed to delete provider")
		return
	}

	reqCtx.JSON(http.StatusOK, modelresponses.DeleteResponse{ID: publicID, Deleted: true})
}

// SyncModels pulls the provider's /models listing and registers unseen models
func (h *ProviderHandler) SyncModels(reqCtx *gin.Context) {
	publicID := reqCtx.Param("id")
	added, err := h.providerService.SyncModels(reqCtx.Request.Context(), publicID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to sync provider models")
		return
	}

	reqCtx.JSON(http.StatusOK, modelresponses.SyncResponse{
		ProviderID:  publicID,
		ModelsAdded: added,
	})
}
