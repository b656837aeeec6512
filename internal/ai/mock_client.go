package ai

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MockResponse is the canned structured reply used in mock mode.
const MockResponse = `{"condition":"Common Cold or Flu","probability":70,"severity":"mild",` +
	`"description":"This is a mock response. Set MODEL_MOCK_MODE=false to call the model server.",` +
	`"symptoms":[],"recommendations":["Rest and stay hydrated","Monitor your temperature",` +
	`"Consult with a healthcare provider if symptoms persist"],` +
	`"whenToSeekCare":"If symptoms worsen or persist, seek medical attention"}`

// MockQuickResponse is the canned free-text reply for quick symptom checks.
const MockQuickResponse = "These symptoms are consistent with a common cold or flu.\n" +
	"- Rest and stay hydrated\n" +
	"- Monitor your temperature\n" +
	"- Consult a doctor if symptoms persist for more than a few days"

// MockReportResponse is the canned reply for test report analysis.
const MockReportResponse = "This is a mock report analysis. All values appear within normal ranges."

// MockPingResponse is the canned reply to the ping prompt.
const MockPingResponse = "Ollama is working correctly!"

var mockReplies = map[CallKind]string{
	KindSymptoms:      MockResponse,
	KindQuickSymptoms: MockQuickResponse,
	KindReport:        MockReportResponse,
	KindFastReport:    MockReportResponse,
	KindImage:         MockResponse,
	KindPing:          MockPingResponse,
}

// MockClient implements the Client interface with canned replies.
type MockClient struct {
	// Text, when set, is returned for every request kind. Otherwise each
	// kind gets its own canned reply.
	Text string

	// Err, when set, is returned instead of a reply.
	Err error

	mu       sync.Mutex
	requests []Request
	logger   *zap.Logger
}

// NewMockClient creates a mock client that answers with the canned replies.
func NewMockClient(logger *zap.Logger) *MockClient {
	return &MockClient{logger: logger.Named("mock_model_client")}
}

// Generate records the request and returns the canned reply.
func (c *MockClient) Generate(ctx context.Context, req Request) (*Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	c.logger.Debug("mock model call", zap.String("kind", string(req.Kind)), zap.Int("prompt_length", len(req.Prompt)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Err != nil {
		return nil, c.Err
	}

	text := c.Text
	if text == "" {
		text = mockReplies[req.Kind]
	}
	if text == "" {
		text = MockResponse
	}
	return &Response{Model: "mock", Text: text}, nil
}

// Requests returns the requests seen so far.
func (c *MockClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}
