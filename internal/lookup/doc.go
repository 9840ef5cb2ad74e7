// Package lookup implements the autocomplete inputs of the grid's foreign-key
// columns: product, additional code, pallet and storage location.
//
// Each input is driven by a Controller. Every keystroke cancels the search
// in flight and starts a new one under a fresh generation number; a response
// is applied only if its generation is still the latest, so a slow response
// to an old query can never overwrite suggestions for a newer one.
//
// The product input also feeds a UnitCascade, which waits for typing to
// settle and then pushes the product's unit to a UnitSink.
package lookup
