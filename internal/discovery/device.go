package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Backend represents a positions backend discovered on the network
type Backend struct {
	// Instance is the advertised service instance name (e.g., "Warehouse A")
	Instance string

	// Hostname is the mDNS hostname (e.g., "erp-01.local.")
	Hostname string

	// IP is the address, IPv6 addresses in brackets
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains the mDNS TXT record data
	// Common fields: "path=/integration/rest", "version=0.4.0"
	Metadata map[string]string

	// DiscoveredAt is when the backend was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the backend
func (b *Backend) String() string {
	return fmt.Sprintf("%s (%s) at %s", b.Instance, strings.TrimSuffix(b.Hostname, "."), b.BaseURL())
}

// BaseURL returns the HTTP base URL for the backend, including the
// advertised context root.
func (b *Backend) BaseURL() string {
	base := fmt.Sprintf("http://%s:%d", b.IP, b.Port)
	if root := strings.Trim(b.GetMetadata(TXTContext), "/"); root != "" {
		base += "/" + root
	}
	return base
}

// Version returns the advertised backend version, if any.
func (b *Backend) Version() string {
	return b.GetMetadata(TXTVersion)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Backend) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
