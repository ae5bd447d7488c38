// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/meridianfi/arbengine/business/arbitrage/app"
	internalDI "github.com/meridianfi/arbengine/internal/di"
)

// DI tokens for the arbitrage module.
const (
	Engine    = "arbitrage.Engine"
	Evaluator = "arbitrage.Evaluator"
	Reporter  = "arbitrage.Reporter"
)

// GetEngine retrieves the tick orchestrator from the registry.
func GetEngine(sr internalDI.ServiceRegistry) *app.Engine {
	return internalDI.MustGet[*app.Engine](sr, Engine)
}

// GetEvaluator retrieves the opportunity evaluator from the registry.
func GetEvaluator(sr internalDI.ServiceRegistry) *app.Evaluator {
	return internalDI.MustGet[*app.Evaluator](sr, Evaluator)
}

// GetReporter retrieves the configured reporter from the registry.
func GetReporter(sr internalDI.ServiceRegistry) app.Reporter {
	return internalDI.MustGet[app.Reporter](sr, Reporter)
}
