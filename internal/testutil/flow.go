package testutil

// DefaultFlowToken is used when a scenario does not name one.
const DefaultFlowToken = "flow-test"

// FixedFlowGenerator hands out one flow token for every trigger.
//
// Scenario traces compare byte for byte across runs only if flow tokens are
// stable, so harness runs use this instead of UUIDv7 tokens.
type FixedFlowGenerator struct {
	token string
}

// NewFixedFlowGenerator returns a generator for token, or DefaultFlowToken if
// token is empty.
func NewFixedFlowGenerator(token string) *FixedFlowGenerator {
	if token == "" {
		token = DefaultFlowToken
	}
	return &FixedFlowGenerator{token: token}
}

// Generate implements engine.FlowTokenGenerator.
func (g *FixedFlowGenerator) Generate() string {
	return g.token
}
