package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumSubscribeFailed:  "Failed to subscribe to Ethereum events",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeBlockNotFound:            "Block not found",
	CodeGasEstimationFailed:      "Gas estimation failed",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// CEX (Binance) errors
	CodeBinanceConnectionFailed: "Failed to connect to Binance API",
	CodeBinanceAPIError:         "Binance API error",
	CodeBinanceRateLimited:      "Binance rate limit exceeded",
	CodeOrderbookFetchFailed:    "Failed to fetch orderbook",
	CodeInvalidOrderbook:        "Invalid orderbook data",

	// DEX (Uniswap) errors
	CodeUniswapQuoteFailed:  "Failed to get Uniswap quote",
	CodeUniswapPoolNotFound: "Uniswap pool not found",
	CodeInvalidQuote:        "Invalid quote data",
	CodeContractCallFailed:  "Smart contract call failed",

	// Arbitrage detection errors
	CodePriceCalculationFailed: "Price calculation failed",
	CodeSpreadCalculationError: "Spread calculation error",
	CodeInsufficientLiquidity:  "Insufficient liquidity for trade size",
	CodeInvalidTradeSize:       "Invalid trade size",

	// Cache errors
	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",

	// Price feed / aggregation
	CodeSourceFetchFailed: "Price source fetch failed",
	CodeSourceParseFailed: "Price source quote parse failed",
	CodeStaleQuote:        "Quote timestamp is stale",
	CodeUnknownAsset:      "Quote references an unknown asset symbol",
	CodeNonPositivePrice:  "Quote price is not positive",
	CodeFutureTimestamp:   "Quote timestamp is in the future",

	// Asset mapper
	CodeDuplicateMapping: "Chain/address pair already mapped to a different asset",
	CodeMappingNotFound:  "No asset mapping for chain/address",

	// Chain / bridge adapter
	CodeChainUnavailable:    "Chain adapter unavailable",
	CodeBridgeNotFound:      "No bridge supports the requested chain pair",
	CodeBridgeFeeOutOfRange: "Bridge fee fell outside configured min/max",

	// Graph / cycle detector
	CodeEmptyGraph:       "Arbitrage graph has no nodes",
	CodeNumericPathology: "Numerical pathology encountered (NaN or non-positive price)",

	// Optimizer / risk / feasibility / evaluator
	CodeInvalidWeights:   "Configured weights are invalid",
	CodeSimulationFailed: "Monte-Carlo simulation failed",
	CodeEvaluationFailed: "Opportunity evaluation failed",

	// KV store
	CodeKVStoreUnavailable: "KV store unavailable",
}
