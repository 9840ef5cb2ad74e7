// Package urls provides centralized constants and builders for every backend
// route the positions client talks to.
//
// This package exists so route changes on the backend can be followed without
// hunting through code. The client, the development backend and the tests all
// build their paths from here, which keeps both sides of the wire in step.
//
// Usage:
//
//	import "github.com/muurk/positions/internal/urls"
//
//	ep := urls.New("http://erp.local:8080")
//	fmt.Println(ep.Position("42")) // http://erp.local:8080/integration/rest/documentPositions/42.html
package urls
