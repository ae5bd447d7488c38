package app

const (
	tracerName = "github.com/meridianfi/arbengine/business/arbitrage/app"
	meterName  = "github.com/meridianfi/arbengine/business/arbitrage/app"
)
