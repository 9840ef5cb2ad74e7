package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/positions/internal/urls"
)

const (
	// ServiceType is the mDNS service type positions backends advertise.
	ServiceType = "_positions._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for backend discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is assumed when an entry carries no port
	DefaultPort = 8080

	// TXT record keys
	TXTPath    = "path"    // integration prefix, e.g. /integration/rest
	TXTContext = "context" // application context root prepended to every route
	TXTVersion = "version" // backend version
)

// Scanner handles mDNS backend discovery
type Scanner struct {
	// Timeout is the maximum time to wait for backends to answer
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses for positions backends until the timeout or ctx expires.
// Entries advertised under several addresses are reported once.
func (s *Scanner) Scan(ctx context.Context) ([]*Backend, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu       sync.Mutex
		backends []*Backend
		seen     = map[string]bool{}
		done     = make(chan struct{})
	)

	go func() {
		defer close(done)
		for entry := range entries {
			b := ParseServiceEntry(entry)
			if b == nil {
				continue
			}
			mu.Lock()
			if !seen[b.BaseURL()] {
				seen[b.BaseURL()] = true
				backends = append(backends, b)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// The resolver closes entries once browsing stops.
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]*Backend(nil), backends...), nil
}

// ParseServiceEntry converts a zeroconf service entry to a Backend.
// Returns nil if the entry has no usable address.
func ParseServiceEntry(entry *zeroconf.ServiceEntry) *Backend {
	if entry == nil {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = "[" + entry.AddrIPv6[0].String() + "]"
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Backend{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Advertise registers a positions backend on the local network. The caller
// must call Shutdown on the returned server.
func Advertise(instance string, port int, contextRoot, version string) (*zeroconf.Server, error) {
	txt := []string{
		TXTPath + "=" + urls.IntegrationPrefix,
		TXTVersion + "=" + version,
	}
	if contextRoot != "" {
		txt = append(txt, TXTContext+"="+contextRoot)
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return server, nil
}

// QuickScan performs a fast scan with a 2-second timeout
func QuickScan(ctx context.Context) ([]*Backend, error) {
	scanner := NewScanner()
	scanner.Timeout = 2 * time.Second
	return scanner.Scan(ctx)
}
