package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDGoerli   = 5
	ChainIDSepolia  = 11155111
	ChainIDPolygon  = 137
	ChainIDArbitrum = 42161
	ChainIDOptimism = 10
	ChainIDBase     = 8453
	ChainIDBSC      = 56
	ChainIDFantom   = 250
	ChainIDFiat     = 0 // Off-chain / fiat
)

// Well-known token addresses, by chain.
var (
	// Ethereum Mainnet
	AddrUSDCEthereum = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	AddrUSDTEthereum = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	AddrDAIEthereum  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	AddrWETHEthereum = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	AddrWBTCEthereum = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")

	// Polygon
	AddrUSDCPolygon = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	AddrWMATICPolygon = common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270")

	// Arbitrum
	AddrUSDCArbitrum = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")

	// Fantom
	AddrUSDCFantom = common.HexToAddress("0x04068DA6C83AFCFA0e13ba15A6696662335D5B75")
)

// Well-known AssetIDs (per-chain identity — one per (chain, address)).
var (
	// Ethereum Mainnet
	IDEthereumETH  = NewNativeAssetID(ChainIDEthereum)
	IDEthereumUSDC = NewTokenAssetID(ChainIDEthereum, AddrUSDCEthereum)
	IDEthereumUSDT = NewTokenAssetID(ChainIDEthereum, AddrUSDTEthereum)
	IDEthereumWETH = NewTokenAssetID(ChainIDEthereum, AddrWETHEthereum)
	IDEthereumWBTC = NewTokenAssetID(ChainIDEthereum, AddrWBTCEthereum)

	// Polygon
	IDPolygonMATIC = NewNativeAssetID(ChainIDPolygon)
	IDPolygonUSDC  = NewTokenAssetID(ChainIDPolygon, AddrUSDCPolygon)
	IDPolygonWMATIC = NewTokenAssetID(ChainIDPolygon, AddrWMATICPolygon)

	// Arbitrum
	IDArbitrumETH  = NewNativeAssetID(ChainIDArbitrum)
	IDArbitrumUSDC = NewTokenAssetID(ChainIDArbitrum, AddrUSDCArbitrum)

	// Fantom
	IDFantomFTM  = NewNativeAssetID(ChainIDFantom)
	IDFantomUSDC = NewTokenAssetID(ChainIDFantom, AddrUSDCFantom)

	// Fiat
	IDUSD = NewFiatAssetID("USD")
	IDEUR = NewFiatAssetID("EUR")
	IDARS = NewFiatAssetID("ARS")
)

// Well-known Assets (pre-created instances)
var (
	// Ethereum Mainnet
	ETH  = NewAssetWithName(IDEthereumETH, "ETH", "Ethereum", 18)
	USDC = NewAssetWithName(IDEthereumUSDC, "USDC", "USD Coin", 6)
	USDT = NewAssetWithName(IDEthereumUSDT, "USDT", "Tether USD", 6)
	WETH = NewAssetWithName(IDEthereumWETH, "WETH", "Wrapped Ether", 18)
	WBTC = NewAssetWithName(IDEthereumWBTC, "WBTC", "Wrapped Bitcoin", 8)

	// Polygon
	MATIC       = NewAssetWithName(IDPolygonMATIC, "MATIC", "Polygon", 18)
	USDCPolygon = NewAssetWithName(IDPolygonUSDC, "USDC", "USD Coin (Polygon)", 6)
	WMATIC      = NewAssetWithName(IDPolygonWMATIC, "WMATIC", "Wrapped Matic", 18)

	// Arbitrum
	ETHArbitrum  = NewAssetWithName(IDArbitrumETH, "ETH", "Ethereum (Arbitrum)", 18)
	USDCArbitrum = NewAssetWithName(IDArbitrumUSDC, "USDC", "USD Coin (Arbitrum)", 6)

	// Fantom
	FTM       = NewAssetWithName(IDFantomFTM, "FTM", "Fantom", 18)
	USDCFantom = NewAssetWithName(IDFantomUSDC, "USDC", "USD Coin (Fantom)", 6)

	// Fiat
	USD = NewAssetWithName(IDUSD, "USD", "US Dollar", 2)
	EUR = NewAssetWithName(IDEUR, "EUR", "Euro", 2)
	ARS = NewAssetWithName(IDARS, "ARS", "Argentine Peso", 2)
)

// DefaultRegistry returns a registry pre-populated with well-known assets
// spanning the chains the engine ships bridge/chain adapters for.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ETH)
	r.Register(USDC)
	r.Register(USDT)
	r.Register(WETH)
	r.Register(WBTC)

	r.Register(MATIC)
	r.Register(USDCPolygon)
	r.Register(WMATIC)

	r.Register(ETHArbitrum)
	r.Register(USDCArbitrum)

	r.Register(FTM)
	r.Register(USDCFantom)

	r.Register(USD)
	r.Register(EUR)
	r.Register(ARS)

	return r
}

// MustNewToken creates a new ERC20 token asset with the given parameters.
// This is a convenience function for registering custom tokens.
func MustNewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(chainID, address)
	return NewAssetWithName(id, symbol, name, decimals)
}

// MustNewNative creates a new native coin asset.
func MustNewNative(chainID uint64, symbol, name string, decimals uint8) *Asset {
	id := NewNativeAssetID(chainID)
	return NewAssetWithName(id, symbol, name, decimals)
}
