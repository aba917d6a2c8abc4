package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewClient tests the Client constructor.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("direct client needs no proxy", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(3 * time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "" {
			t.Errorf("ProxyAddress() = %q, expected empty", client.ProxyAddress())
		}
		if client.Timeout() != 3*time.Second {
			t.Errorf("Timeout() = %v, expected 3s", client.Timeout())
		}
	})

	t.Run("valid proxy address creates client", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(3*time.Second, WithProxy("127.0.0.1:1080"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:1080" {
			t.Errorf("ProxyAddress() = %q, expected %q", client.ProxyAddress(), "127.0.0.1:1080")
		}
	})

	t.Run("invalid proxy address returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewClient(3*time.Second, WithProxy("127.0.0.1"))
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

// TestIsValidProxyAddress tests the proxy address validation function.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid IPv4 with port", "127.0.0.1:1080", true},
		{"valid localhost with port", "localhost:1080", true},
		{"valid IPv6 with port", "[::1]:1080", true},
		{"empty string", "", false},
		{"no port", "127.0.0.1", false},
		{"empty host", ":1080", false},
		{"empty port", "127.0.0.1:", false},
		{"port zero", "127.0.0.1:0", false},
		{"port too large", "127.0.0.1:65536", false},
		{"non numeric port", "127.0.0.1:socks", false},
		{"multiple colons", "127.0.0.1:1080:extra", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isValidProxyAddress(tc.address); got != tc.expected {
				t.Errorf("isValidProxyAddress(%q) = %v, expected %v", tc.address, got, tc.expected)
			}
		})
	}
}

// TestProxyStatus tests the ProxyStatus String and Error methods.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status  ProxyStatus
		str     string
		wantErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.str, func(t *testing.T) {
			t.Parallel()
			if tc.status.String() != tc.str {
				t.Errorf("String() = %q, expected %q", tc.status.String(), tc.str)
			}
			if !errors.Is(tc.status.Error(), tc.wantErr) {
				t.Errorf("Error() = %v, expected %v", tc.status.Error(), tc.wantErr)
			}
		})
	}

	if ProxyStatus(99).String() != "unknown" {
		t.Error("expected unknown status string")
	}
	if ProxyStatus(99).Error() == nil {
		t.Error("expected error for unknown status")
	}
}

// TestHTTPClientInjectsHeaders verifies identification headers reach the server,
// including on redirected requests.
func TestHTTPClientInjectsHeaders(t *testing.T) {
	t.Parallel()

	type seen struct{ ua, contact string }
	headers := make(chan seen, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		headers <- seen{ua: r.Header.Get("User-Agent"), contact: r.Header.Get("X-Contact")}
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(3*time.Second, WithHeaders(map[string]string{
		"User-Agent": "randcrawl-test",
		"X-Contact":  "ops@example.com",
	}))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.HTTPClient().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	got := <-headers
	if got.ua != "randcrawl-test" {
		t.Errorf("User-Agent = %q, expected %q", got.ua, "randcrawl-test")
	}
	if got.contact != "ops@example.com" {
		t.Errorf("X-Contact = %q, expected %q", got.contact, "ops@example.com")
	}
}

func TestHTTPClientTimeout(t *testing.T) {
	t.Parallel()

	client, err := NewClient(5 * time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if got := client.HTTPClient().Timeout; got != 5*time.Second {
		t.Errorf("http.Client.Timeout = %v, expected 5s", got)
	}
}

func TestHTTPClientStopsRedirectLoops(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(3 * time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	resp, err := client.HTTPClient().Do(req)
	if err != nil {
		t.Fatalf("expected last response instead of error, got %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("StatusCode = %d, expected %d", resp.StatusCode, http.StatusFound)
	}
}

// startMockProxy starts a TCP listener whose single connection is handled by fn.
func startMockProxy(t *testing.T, fn func(net.Conn)) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fn(conn)
	}()
	return listener.Addr().String()
}

func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("direct client is always OK", func(t *testing.T) {
		t.Parallel()

		client, _ := NewClient(time.Second)
		if status := client.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})

	t.Run("returns CannotConnect for non-existent proxy", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(time.Second, WithProxy("127.0.0.1:59999"))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})

	t.Run("returns WrongType for non-SOCKS5 server", func(t *testing.T) {
		t.Parallel()

		addr := startMockProxy(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))
		})

		client, _ := NewClient(time.Second, WithProxy(addr))
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns WrongType for SOCKS5 requiring auth", func(t *testing.T) {
		t.Parallel()

		addr := startMockProxy(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0xFF})
		})

		client, _ := NewClient(time.Second, WithProxy(addr))
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns OK for valid SOCKS5 proxy", func(t *testing.T) {
		t.Parallel()

		addr := startMockProxy(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x00})

			connectBuf := make([]byte, 256)
			_, _ = conn.Read(connectBuf)
			// Host unreachable still proves the proxy handled CONNECT.
			_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		})

		client, _ := NewClient(time.Second, WithProxy(addr))
		if status := client.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})
}

func TestDialContextCancelled(t *testing.T) {
	t.Parallel()

	addr := startMockProxy(t, func(conn net.Conn) {
		// Never answer the greeting so the dial blocks.
		time.Sleep(2 * time.Second)
	})

	client, err := NewClient(time.Second, WithProxy(addr))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.DialContext(ctx, "tcp", "example.com:80"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
