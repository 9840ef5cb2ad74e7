package lookup

import (
	"fmt"

	"github.com/muurk/positions/internal/positions"
	"github.com/muurk/positions/internal/urls"
)

// Kind identifies a lookup field and the reference data it searches.
type Kind string

const (
	KindProduct         Kind = positions.FieldProduct
	KindAdditionalCode  Kind = positions.FieldAdditionalCode
	KindPallet          Kind = positions.FieldPallet
	KindStorageLocation Kind = positions.FieldStorageLocation
)

// Kinds lists every lookup kind in grid column order.
func Kinds() []Kind {
	return []Kind{KindProduct, KindAdditionalCode, KindPallet, KindStorageLocation}
}

// ParseKind maps a field name to its lookup kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown lookup field %q (valid: product, additional_code, pallet, storage_location)", s)
}

// Endpoint returns the search endpoint of the kind.
func (k Kind) Endpoint(e urls.Endpoints) string {
	switch k {
	case KindProduct:
		return e.Products()
	case KindAdditionalCode:
		return e.AdditionalCodes()
	case KindPallet:
		return e.PalletNumbers()
	case KindStorageLocation:
		return e.StorageLocations()
	}
	return ""
}

// ElementID is the input id the grid gives the field's editor.
func (k Kind) ElementID() string {
	switch k {
	case KindProduct:
		return "square"
	case KindAdditionalCode:
		return "additionalCode"
	case KindPallet:
		return "palletnumber"
	case KindStorageLocation:
		return "storageLocation"
	}
	return string(k)
}
