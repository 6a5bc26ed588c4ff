package api

import (
	"github.com/gin-gonic/gin"

	"llm-evaluator/internal/interfaces/httpserver/handlers/modelhandler"
)

type ModelRoute struct {
	providerHandler *modelhandler.ProviderHandler
	modelHandler    *modelhandler.ModelHandler
}

func NewModelRoute(
	providerHandler *modelhandler.ProviderHandler,
	modelHandler *modelhandler.ModelHandler,
) *ModelRoute {
	return &ModelRoute{
		providerHandler: providerHandler,
		modelHandler:    modelHandler,
	}
}

func (modelRoute *ModelRoute) RegisterRouter(router gin.IRouter) {
	providerRouter := router.Group("/providers")
	providerRouter.POST("", modelRoute.providerHandler.CreateProvider)
	providerRouter.GET("", modelRoute.providerHandler.ListProviders)
	providerRouter.GET("/:id", modelRoute.providerHandler.GetProvider)
	providerRouter.DELETE("/:id", modelRoute.providerHandler.DeleteProvider)
	providerRouter.POST("/:id/sync_models", modelRoute.providerHandler.SyncModels)

	modelRouter := router.Group("/models")
	modelRouter.POST("", modelRoute.modelHandler.CreateModel)
	modelRouter.GET("", modelRoute.modelHandler.ListModels)
	modelRouter.GET("/:id", modelRoute.modelHandler.GetModel)
	modelRouter.PUT("/:id/toggle", modelRoute.modelHandler.ToggleModel)
	modelRouter.DELETE("/:id", modelRoute.modelHandler.DeleteModel)
}
