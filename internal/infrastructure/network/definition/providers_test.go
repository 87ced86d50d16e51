package networkdefinition

import (
	"reflect"
	"testing"

	"trenchcard/internal/pkg/logger"
)

func TestProviderDefaults(t *testing.T) {
	def := NewProvider(nil, logger.NewNop()).Definition()

	want := []string{
		"https://api.mainnet-beta.solana.com",
		"https://solana-mainnet.g.alchemy.com/v2/demo",
		"https://solana-api.projectserum.com",
	}
	if got := def.RPCURLs(); !reflect.DeepEqual(got, want) {
		t.Errorf("RPCURLs() = %v, want %v", got, want)
	}
	if def.Decimals != 9 || def.NativePriceKey != "solana" || def.NativeSymbol != "SOL" {
		t.Errorf("native asset = %+v", def)
	}
}

func TestProviderOverride(t *testing.T) {
	p := NewProvider([]string{"https://a.example.com", "https://b.example.com"}, logger.NewNop())
	def := p.Definition()

	if def.PrimaryRPCURL != "https://a.example.com" {
		t.Errorf("PrimaryRPCURL = %q", def.PrimaryRPCURL)
	}
	if !reflect.DeepEqual(def.FallbackRPCURLs, []string{"https://b.example.com"}) {
		t.Errorf("FallbackRPCURLs = %v", def.FallbackRPCURLs)
	}

	def.FallbackRPCURLs[0] = "mutated"
	if p.Definition().FallbackRPCURLs[0] != "https://b.example.com" {
		t.Error("Definition() must return an independent copy")
	}
	if SolanaMainnet.PrimaryRPCURL != "https://api.mainnet-beta.solana.com" {
		t.Error("override must not change the built-in definition")
	}
}
