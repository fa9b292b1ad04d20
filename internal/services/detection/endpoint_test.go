package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGRPCEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		host     string
		tls      bool
	}{
		{"localhost:50052", "localhost:50052", false},
		{"detector:443", "detector:443", true},
		{"detector.example.com", "detector.example.com:443", true},
		{"http://10.0.0.5:9000", "10.0.0.5:9000", false},
		{"https://detector.example.com", "detector.example.com:443", true},
		{"http://detector", "detector:80", false},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			host, creds, err := parseGRPCEndpoint(tt.endpoint)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.tls, creds.Info().SecurityProtocol == "tls")
		})
	}
}

func TestParseGRPCEndpointErrors(t *testing.T) {
	for _, endpoint := range []string{"", "ftp://detector:21", "http://"} {
		_, _, err := parseGRPCEndpoint(endpoint)
		assert.Error(t, err, endpoint)
	}
}
