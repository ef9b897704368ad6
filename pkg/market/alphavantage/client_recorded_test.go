package alphavantage

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
)

// Replays a recorded GLOBAL_QUOTE call. Skips when the cassette is absent and
// RECORD_CASSETTES != 1; recording needs ALPHA_VANTAGE_API_KEY.
func TestClient_Quote_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "alphavantage_quote")
	if _, err := os.Stat(cassette + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s.yaml", cassette)
		}
		err := os.MkdirAll(filepath.Dir(cassette), 0o755)
		assert.NoError(t, err, "mkdir cassettes dir should succeed")
	}

	r, err := recorder.New(cassette)
	assert.NoError(t, err, "recorder.New should not error")
	defer func() { _ = r.Stop() }()

	apiKey := os.Getenv("ALPHA_VANTAGE_API_KEY")
	if apiKey == "" {
		apiKey = "demo"
	}
	client := NewClient(apiKey, WithHTTPClient(&http.Client{Transport: r}))
	quote, err := client.Quote(context.Background(), "IBM")
	assert.NoError(t, err, "Quote should not error")
	if assert.NotNil(t, quote) {
		assert.Equal(t, "IBM", quote.Symbol)
		assert.Greater(t, quote.Price, 0.0, "price should be positive")
	}
}
