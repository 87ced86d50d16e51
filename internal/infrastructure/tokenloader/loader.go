package tokenloader

import (
	"fmt"
	"sort"
	"strings"

	"trenchcard/internal/app/port"
	"trenchcard/internal/domain/entity"
	"trenchcard/internal/pkg/utils"
)

// BuiltinTokens are the SPL tokens known without any configuration.
var BuiltinTokens = []entity.TokenMetadata{
	{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Name: "USD Coin", Symbol: "USDC", PriceKey: "usd-coin"},
	{Mint: "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R", Name: "Raydium", Symbol: "RAY", PriceKey: "raydium"},
	{Mint: "SRMuApVNdxXokk5GT7XD5cUUgXMBCoAz2LHeuAoKWRt", Name: "Serum", Symbol: "SRM", PriceKey: "serum"},
}

// tokenFile is the layout of the optional registry file.
type tokenFile struct {
	Tokens []entity.TokenMetadata `yaml:"tokens"`
}

// Registry implements port.TokenRegistry. It is read-only after construction.
type Registry struct {
	byMint map[string]entity.TokenMetadata
}

// NewRegistry builds a registry from BuiltinTokens plus the entries of the
// YAML file at path. An empty path loads the built-ins only. File entries
// replace built-ins with the same mint.
func NewRegistry(path string, logger port.Logger) (*Registry, error) {
	logger = logger.Named("TokenRegistry")
	r := &Registry{byMint: make(map[string]entity.TokenMetadata, len(BuiltinTokens))}
	for _, t := range BuiltinTokens {
		r.byMint[t.Mint] = t
	}

	if path == "" {
		logger.Info("Token registry loaded", "tokens", len(r.byMint))
		return r, nil
	}

	var file tokenFile
	if err := utils.LoadYAMLFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load token registry: %w", err)
	}
	for i, t := range file.Tokens {
		t.Mint = strings.TrimSpace(t.Mint)
		if t.Mint == "" || t.Symbol == "" || t.PriceKey == "" {
			return nil, fmt.Errorf("token registry %s: entry %d needs mint, symbol and priceKey", path, i)
		}
		if _, err := entity.ParseAddress(t.Mint); err != nil {
			return nil, fmt.Errorf("token registry %s: entry %d: %w", path, i, err)
		}
		if t.Name == "" {
			t.Name = t.Symbol
		}
		if prev, ok := r.byMint[t.Mint]; ok {
			logger.Warn("Token registry file overrides existing entry",
				"mint", t.Mint,
				"previousSymbol", prev.Symbol,
				"symbol", t.Symbol)
		}
		r.byMint[t.Mint] = t
	}

	logger.Info("Token registry loaded",
		"file", path,
		"fileEntries", len(file.Tokens),
		"tokens", len(r.byMint))
	return r, nil
}

// Lookup implements port.TokenRegistry.
func (r *Registry) Lookup(mint string) (entity.TokenMetadata, bool) {
	t, ok := r.byMint[mint]
	return t, ok
}

// PriceKeys implements port.TokenRegistry. Keys are sorted and unique.
func (r *Registry) PriceKeys() []string {
	keys := make([]string, 0, len(r.byMint))
	for _, t := range r.byMint {
		keys = append(keys, t.PriceKey)
	}
	sort.Strings(keys)
	return utils.UniqueStrings(keys)
}
