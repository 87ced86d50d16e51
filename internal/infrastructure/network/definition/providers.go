package networkdefinition

import (
	"trenchcard/internal/app/port"
	"trenchcard/internal/domain/entity"
)

// TokenProgramID is the SPL token program that owns fungible token accounts.
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// SolanaMainnet is the built-in network definition.
var SolanaMainnet = entity.NetworkDefinition{ //nolint:gochecknoglobals // static definition
	Name:           "Solana Mainnet",
	Identifier:     "solana",
	NativeName:     "Solana",
	NativeSymbol:   "SOL",
	NativePriceKey: "solana",
	Decimals:       9,
	TokenProgramID: TokenProgramID,
	PrimaryRPCURL:  "https://api.mainnet-beta.solana.com",
	FallbackRPCURLs: []string{
		"https://solana-mainnet.g.alchemy.com/v2/demo",
		"https://solana-api.projectserum.com",
	},
	BlockExplorerURL: "https://solscan.io",
}

// Provider hands out the network definition with configured endpoint overrides applied.
type Provider struct {
	logger port.Logger
	def    entity.NetworkDefinition
}

// NewProvider returns a provider for SolanaMainnet. When rpcEndpoints is
// non-empty it replaces the built-in endpoint list; the first entry becomes
// the primary endpoint.
func NewProvider(rpcEndpoints []string, logger port.Logger) *Provider {
	def := SolanaMainnet
	def.FallbackRPCURLs = append([]string(nil), SolanaMainnet.FallbackRPCURLs...)

	if len(rpcEndpoints) > 0 {
		def.PrimaryRPCURL = rpcEndpoints[0]
		def.FallbackRPCURLs = append([]string(nil), rpcEndpoints[1:]...)
		logger.Info("Using configured RPC endpoints",
			"primary", def.PrimaryRPCURL,
			"fallbacks", len(def.FallbackRPCURLs))
	}

	return &Provider{logger: logger.Named("NetworkDefinitionProvider"), def: def}
}

// Definition returns a copy of the active definition.
func (p *Provider) Definition() entity.NetworkDefinition {
	def := p.def
	def.FallbackRPCURLs = append([]string(nil), p.def.FallbackRPCURLs...)
	return def
}
