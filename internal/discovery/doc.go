// Package discovery finds positions backends on the local network over mDNS.
//
// Backends advertise the "_positions._tcp" service type. TXT records carry
// the integration prefix ("path"), an optional application context root
// ("context") and the backend version ("version"). The development backend
// uses Advertise to announce itself.
//
// # Usage Example
//
//	backends, err := discovery.NewScanner().Scan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range backends {
//	    fmt.Println(b.Instance, b.BaseURL())
//	}
package discovery
