package boycott

import (
	"context"
	"fmt"
	"net"
	"net/http"

	tls2 "github.com/refraction-networking/utls"
)

// newChromeTransport returns a transport whose TLS handshakes carry a Chrome fingerprint.
func newChromeTransport() *http.Transport {
	return &http.Transport{
		Proxy:          http.ProxyFromEnvironment,
		DialTLSContext: dialTLSChrome,
	}
}

// dialTLSChrome dials addr and performs a Chrome-like handshake. ALPN only offers
// http/1.1 because net/http cannot speak h2 over a custom DialTLSContext connection.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	spec, err := tls2.UTLSIdToSpec(tls2.HelloChrome_Auto)
	if err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("build chrome hello: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls2.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	tlsConn := tls2.UClient(rawConn, &tls2.Config{ServerName: host}, tls2.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("apply chrome hello: %w", err)
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
