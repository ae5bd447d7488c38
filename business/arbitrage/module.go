// Package arbitrage implements the arbitrage bounded context: it wires the
// graph builder, cycle detector, cost calculators, path optimizer, risk
// assessor, feasibility analyzer, and evaluator into one tick-driven
// Engine that reads prices from the market context and chain/bridge data
// from the chain context.
package arbitrage

import (
	"context"

	"github.com/meridianfi/arbengine/business/arbitrage/app"
	"github.com/meridianfi/arbengine/business/arbitrage/di"
	"github.com/meridianfi/arbengine/business/arbitrage/infra"
	chainDI "github.com/meridianfi/arbengine/business/chain/di"
	marketDI "github.com/meridianfi/arbengine/business/market/di"
	"github.com/meridianfi/arbengine/internal/config"
	internalDI "github.com/meridianfi/arbengine/internal/di"
	"github.com/meridianfi/arbengine/internal/logger"
	"github.com/meridianfi/arbengine/internal/monolith"
)

// Module implements the arbitrage (opportunity detection) bounded context.
type Module struct{}

// RegisterServices wires every detection-pipeline stage and the reporter.
// Every factory is lazy, so wiring order across modules does not matter:
// the market and chain tokens these factories pull from are only resolved
// the first time Engine's factory runs.
func (m *Module) RegisterServices(c internalDI.Container) error {
	internalDI.RegisterToken(c, di.Evaluator, func(sr internalDI.ServiceRegistry) *app.Evaluator {
		cfg := sr.Get("config").(*config.Config)
		risk := app.NewRiskAssessor(cfg.RiskAssessorConfig())
		feas := app.NewFeasibilityAnalyzer(cfg.FeasibilityAnalyzerConfig(), chainDI.GetChainAdapter(sr))
		return app.NewEvaluator(cfg.EvaluatorConfig(), risk, feas)
	})

	internalDI.RegisterToken(c, di.Reporter, func(sr internalDI.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Arbitrage.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter()
	})

	internalDI.RegisterToken(c, di.Engine, func(sr internalDI.ServiceRegistry) *app.Engine {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		mapper := marketDI.GetMapper(sr)
		agg := marketDI.GetAggregator(sr)
		chains := chainDI.GetChainAdapter(sr)
		bridges := chainDI.GetBridgeCatalog(sr)

		graphs := app.NewGraphBuilder(mapper, chains, bridges, cfg.GraphBuilderConfig(), log)
		cycles := app.NewCycleDetector(cfg.CycleDetectorConfig(), log)
		costs := app.NewCostCalculators(cfg.CostCalculatorConfig(), chains)
		optimizer := app.NewPathOptimizer(cfg.PathOptimizerConfig(), costs)
		evaluator := di.GetEvaluator(sr)
		reporter := di.GetReporter(sr)

		return app.NewEngine(cfg.EngineConfig(), log, agg, graphs, cycles, costs, optimizer, evaluator, reporter)
	})

	return nil
}

// Startup starts the reporter and the engine's tick loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	reporter := di.GetReporter(mono.Services())
	engine := di.GetEngine(mono.Services())

	if err := reporter.Start(ctx); err != nil {
		return err
	}
	if err := engine.Start(ctx); err != nil {
		return err
	}

	log.Info(ctx, "arbitrage module started")
	return nil
}
