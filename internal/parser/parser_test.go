package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingHTML mimics the structure of a product page with every block the
// extractor knows about.
const listingHTML = `
<!DOCTYPE html>
<html>
<head>
    <title>Dell Latitude 7490 14&quot; FHD Laptop &amp;amp; Dock | eBay</title>
</head>
<body>
    <div class="x-price-primary"><span class="ux-textspans">US $49.99/ea</span></div>
    <div class="x-price-original"><span class="ux-textspans ux-textspans--STRIKETHROUGH">US $89.99</span></div>

    <div class="ux-labels-values col-12 false ux-labels-values--shipping">
        <div class="ux-labels-values__labels"><span class="ux-textspans">Shipping:</span></div>
        <div class="ux-labels-values__values">
            <span class="ux-textspans ux-textspans--BOLD">US $15.00</span>
        </div>
    </div>

    <div class="ux-labels-values__values-content">
        <span class="ux-textspans">Estimated between</span>
        <span class="ux-textspans ux-textspans--BOLD">Mon, Jun 2</span>
        <span class="ux-textspans">and</span>
        <span class="ux-textspans ux-textspans--BOLD">Fri, Jun 6</span>
    </div>

    <dl class="ux-labels-values ux-labels-values--inline col-6 false">
        <dt><span>Condition</span></dt>
        <dd><span>Used</span></dd>
    </dl>
    <dl class="ux-labels-values ux-labels-values--inline col-6 false">
        <dt><span>MPN</span></dt>
        <dd><span>LAT7490</span></dd>
    </dl>
    <dl class="ux-labels-values ux-labels-values--inline col-6 false">
        <dt><span>Brand</span></dt>
        <dd><span>Dell</span></dd>
    </dl>
    <dl class="ux-labels-values ux-labels-values--inline col-6 false">
        <dt><span>Model</span></dt>
        <dd><span>Latitude 7490</span></dd>
    </dl>
</body>
</html>
`

func TestExtractor_FullListing(t *testing.T) {
	extractor, err := New(listingHTML)
	require.NoError(t, err)

	fields := extractor.Extract()

	require.NotNil(t, fields.Price)
	assert.Equal(t, "49.99", *fields.Price)

	require.NotNil(t, fields.Shipping)
	assert.False(t, fields.Shipping.Free())
	assert.Equal(t, "15.00", fields.Shipping.Value())

	require.NotNil(t, fields.Delivery)
	assert.Equal(t, "Mon, Jun 2 to Fri, Jun 6", *fields.Delivery)

	require.NotNil(t, fields.Title)
	assert.Equal(t, `Dell Latitude 7490 14" FHD Laptop & Dock`, *fields.Title)

	require.NotNil(t, fields.Condition)
	assert.Equal(t, "Used", *fields.Condition)
	require.NotNil(t, fields.MPN)
	assert.Equal(t, "LAT7490", *fields.MPN)
	require.NotNil(t, fields.Brand)
	assert.Equal(t, "Dell", *fields.Brand)
	require.NotNil(t, fields.Model)
	assert.Equal(t, "Latitude 7490", *fields.Model)
}

func TestExtractor_Idempotent(t *testing.T) {
	extractor, err := New(listingHTML)
	require.NoError(t, err)

	first := extractor.Extract()
	second := extractor.Extract()
	assert.Equal(t, first, second)

	// A fresh extractor over the same markup agrees as well.
	other, err := New(listingHTML)
	require.NoError(t, err)
	assert.Equal(t, first, other.Extract())
}

func TestExtractor_EmptyDocument(t *testing.T) {
	extractor, err := New("<html><body></body></html>")
	require.NoError(t, err)

	fields := extractor.Extract()
	assert.Nil(t, fields.Price)
	assert.Nil(t, fields.Shipping)
	assert.Nil(t, fields.Delivery)
	assert.Nil(t, fields.Title)
	assert.Nil(t, fields.Condition)
	assert.Nil(t, fields.MPN)
	assert.Nil(t, fields.Brand)
	assert.Nil(t, fields.Model)
}

func TestExtractor_PriceEmptyAfterStrip(t *testing.T) {
	extractor, err := New(`<html><body><div class="x-price-primary">US $/ea</div></body></html>`)
	require.NoError(t, err)
	assert.Nil(t, extractor.Price())
}

func TestExtractor_ShippingClassification(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		expected any
	}{
		{
			// the free marker wins even with a currency amount in the text
			name:     "free wins over amount",
			value:    "Free shipping on orders over US $25.00",
			expected: 0,
		},
		{
			name:     "undeliverable",
			value:    "May not ship to France",
			expected: "Cannot be delivered to your country",
		},
		{
			name:     "currency amount",
			value:    "US $15.00",
			expected: "15.00",
		},
		{
			name:     "raw text fallback",
			value:    "Varies for each item",
			expected: "Varies for each item",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			markup := `<html><body>
				<div class="ux-labels-values col-12 false ux-labels-values--shipping">
					<span class="ux-textspans ux-textspans--BOLD">` + tc.value + `</span>
				</div>
			</body></html>`

			extractor, err := New(markup)
			require.NoError(t, err)

			cost := extractor.Shipping()
			require.NotNil(t, cost)
			assert.Equal(t, tc.expected, cost.Value())
		})
	}
}

func TestExtractor_ShippingWithoutBoldSpan(t *testing.T) {
	markup := `<html><body>
		<div class="ux-labels-values col-12 false ux-labels-values--shipping">
			<span class="ux-textspans">US $15.00</span>
		</div>
	</body></html>`

	extractor, err := New(markup)
	require.NoError(t, err)
	assert.Nil(t, extractor.Shipping())
}

func TestExtractor_DeliveryFallbackToPlainSpan(t *testing.T) {
	markup := `<html><body>
		<div class="ux-labels-values__values-content">
			<span class="ux-textspans">Mon, Jun 2</span>
		</div>
	</body></html>`

	extractor, err := New(markup)
	require.NoError(t, err)

	delivery := extractor.DeliveryTime()
	require.NotNil(t, delivery)
	assert.Equal(t, "Mon, Jun 2", *delivery)
}

func TestExtractor_DeliveryRequiresWeekday(t *testing.T) {
	// A values block without a weekday in its text is a different block on
	// the page, never the delivery window.
	markup := `<html><body>
		<div class="ux-labels-values__values-content">
			<span class="ux-textspans ux-textspans--BOLD">30 days returns</span>
			<span class="ux-textspans ux-textspans--BOLD">Buyer pays</span>
		</div>
	</body></html>`

	extractor, err := New(markup)
	require.NoError(t, err)
	assert.Nil(t, extractor.DeliveryTime())
}

func TestExtractor_ParamFewerThanTwoSpans(t *testing.T) {
	markup := `<html><body>
		<dl class="ux-labels-values ux-labels-values--inline col-6 false">
			<dt><span>Brand</span></dt>
		</dl>
	</body></html>`

	extractor, err := New(markup)
	require.NoError(t, err)
	assert.Nil(t, extractor.Param("Brand"))
}

func TestClassListLocator_RequiresEveryClass(t *testing.T) {
	markup := `<html><body>
		<div class="ux-labels-values col-12">partial</div>
		<div class="ux-labels-values col-12 false ux-labels-values--shipping">full</div>
	</body></html>`

	extractor, err := New(markup)
	require.NoError(t, err)

	sel := ClassListLocator{}.Locate(extractor.doc, shippingSig)
	require.NotNil(t, sel)
	assert.Equal(t, "full", sel.Text())
}
