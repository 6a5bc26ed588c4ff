package interfaces

import (
	"github.com/google/wire"

	"llm-evaluator/internal/interfaces/httpserver"
)

var InterfacesProvider = wire.NewSet(
	httpserver.NewHttpServer,
)
