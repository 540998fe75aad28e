package llm

// price holds per-million-token pricing in USD for one model.
type price struct {
	inputPerMillion  float64
	outputPerMillion float64
}

// pricingTable is a model-specific cost table. An unlisted model reports
// zero cost rather than failing the request.
var pricingTable = map[string]price{
	"gpt-4o":                 {inputPerMillion: 2.50, outputPerMillion: 10.00},
	"gpt-4o-mini":            {inputPerMillion: 0.15, outputPerMillion: 0.60},
	"gpt-4.1":                {inputPerMillion: 2.00, outputPerMillion: 8.00},
	"gpt-4.1-mini":           {inputPerMillion: 0.40, outputPerMillion: 1.60},
	"gpt-4.1-nano":           {inputPerMillion: 0.10, outputPerMillion: 0.40},
	"text-embedding-3-small": {inputPerMillion: 0.02, outputPerMillion: 0},
	"text-embedding-3-large": {inputPerMillion: 0.13, outputPerMillion: 0},
}

// cost computes the USD cost of a completion from raw token counts.
func cost(model string, inputTokens, outputTokens int64) float64 {
	p, ok := pricingTable[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1_000_000*p.inputPerMillion + float64(outputTokens)/1_000_000*p.outputPerMillion
}
