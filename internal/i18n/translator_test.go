package i18n

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslateColumns(t *testing.T) {
	en, err := New("en")
	require.NoError(t, err)
	pl, err := New("pl")
	require.NoError(t, err)

	require.Equal(t, "Given unit", en.Column("givenunit"))
	require.Equal(t, "Jednostka dodatkowa", pl.Column("givenunit"))
	require.Equal(t, "Saved", en.Translate("qcadooView.message.saveMessage"))
	require.Equal(t, "Zapisano", pl.Translate("qcadooView.message.saveMessage"))
}

func TestUnknownKeyFallsBackToKey(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)
	require.Equal(t, "qcadooView.gridColumn.nope", tr.Column("nope"))
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	tr, err := New("de")
	require.NoError(t, err)
	require.Equal(t, "de", tr.Locale())
	require.Equal(t, "Product", tr.Column("product"))
}

func TestEmptyLocaleIsDefault(t *testing.T) {
	tr, err := New("")
	require.NoError(t, err)
	require.Equal(t, DefaultLocale, tr.Locale())
}

func TestPager(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)
	require.Equal(t, "Page 2 of 5 (700 records)", tr.Pager(2, 5, 700))
}

func TestEveryLocaleHasEveryColumn(t *testing.T) {
	columns := []string{
		"ID", "document", "product", "additional_code", "quantity", "unit", "givenquantity",
		"givenunit", "conversion", "expirationdate", "pallet", "type_of_pallet", "storage_location",
	}
	for _, locale := range []string{"en", "pl"} {
		tr, err := New(locale)
		require.NoError(t, err)
		for _, c := range columns {
			require.NotEqual(t, ColumnKey(c), tr.Column(c), "locale %s column %s", locale, c)
		}
	}
}
