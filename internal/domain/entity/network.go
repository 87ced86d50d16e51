package entity

// NetworkDefinition holds the static description of the target chain and the
// ordered list of RPC endpoints used to read it.
type NetworkDefinition struct {
	Name             string   `json:"name" yaml:"name"`
	Identifier       string   `json:"identifier" yaml:"identifier"`
	NativeName       string   `json:"nativeName" yaml:"nativeName"`
	NativeSymbol     string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativePriceKey   string   `json:"nativePriceKey" yaml:"nativePriceKey"`
	Decimals         int32    `json:"decimals" yaml:"decimals"` // lamports per SOL = 10^Decimals
	TokenProgramID   string   `json:"tokenProgramId" yaml:"tokenProgramId"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
}

// RPCURLs returns the primary endpoint followed by the fallbacks, skipping blanks.
func (n NetworkDefinition) RPCURLs() []string {
	urls := make([]string, 0, 1+len(n.FallbackRPCURLs))
	for _, u := range append([]string{n.PrimaryRPCURL}, n.FallbackRPCURLs...) {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
