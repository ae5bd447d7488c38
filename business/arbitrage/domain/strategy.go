package domain

// StrategyKind names one of the path-optimizer's fixed enumeration
// templates. The optimizer evaluates the templates in AllStrategies order,
// up to its configured MaxAlternativePaths, against a detected cycle and
// ranks the resulting candidates; it never invents a new template at
// runtime.
type StrategyKind string

const (
	// StrategyDirect executes every step back-to-back at the detected
	// notional with no resizing or splitting.
	StrategyDirect StrategyKind = "direct"

	// StrategySplit is enumerated at the detected notional with the same
	// costs and simulation as StrategyDirect; the optimizer does not
	// divide it into smaller trades.
	StrategySplit StrategyKind = "split"

	// StrategyDelayed is enumerated at the detected notional with the same
	// costs and simulation as StrategyDirect; the optimizer does not model
	// waiting for later blocks or different gas pricing.
	StrategyDelayed StrategyKind = "delayed"

	// StrategyPartial runs every step of the cycle at half the detected
	// notional; it does not execute a prefix of the cycle.
	StrategyPartial StrategyKind = "partial"

	// StrategyAggressive runs every step of the cycle at 1.5 times the
	// detected notional; the notional is not capped by available
	// liquidity.
	StrategyAggressive StrategyKind = "aggressive"
)

// AllStrategies lists every template the optimizer enumerates, in the
// fixed order used to break ties deterministically.
var AllStrategies = []StrategyKind{
	StrategyDirect,
	StrategySplit,
	StrategyDelayed,
	StrategyPartial,
	StrategyAggressive,
}

func (s StrategyKind) String() string {
	return string(s)
}
