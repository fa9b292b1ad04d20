package detection

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// tlsPorts are assumed to speak TLS when an endpoint carries no scheme
var tlsPorts = map[int]bool{443: true, 8443: true, 9443: true}

// parseGRPCEndpoint normalizes an endpoint into host:port plus matching credentials.
// "host:50052" is plaintext, "host:443", "detector.example.com" and https:// URLs use TLS.
func parseGRPCEndpoint(endpoint string) (string, credentials.TransportCredentials, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", nil, fmt.Errorf("empty endpoint")
	}

	// Add scheme if missing
	if !strings.Contains(endpoint, "://") {
		host, portStr, found := strings.Cut(endpoint, ":")
		switch {
		case !found:
			endpoint = "https://" + host + ":443"
		default:
			if port, err := strconv.Atoi(portStr); err == nil && tlsPorts[port] {
				endpoint = "https://" + endpoint
			} else {
				endpoint = "http://" + endpoint
			}
		}
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if u.Hostname() == "" {
		return "", nil, fmt.Errorf("endpoint %q has no host", endpoint)
	}

	// Ensure port is set
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = u.Hostname() + ":443"
		case "http":
			host = u.Hostname() + ":80"
		default:
			return "", nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
		}
	}

	var creds credentials.TransportCredentials
	switch u.Scheme {
	case "https":
		creds = credentials.NewTLS(&tls.Config{ServerName: u.Hostname()})
	case "http":
		creds = insecure.NewCredentials()
	default:
		return "", nil, fmt.Errorf("unsupported scheme: %s (supported: http, https)", u.Scheme)
	}

	return host, creds, nil
}
