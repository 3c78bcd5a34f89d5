package listing

import "encoding/json"

// ShippingCost is either the free-shipping sentinel or a textual value.
// Free shipping leaves the program as the integer 0; everything else
// (numeric amounts, "cannot be delivered" copy, raw provider text) stays a
// string.
type ShippingCost struct {
	free bool
	text string
}

// FreeShipping returns the free-shipping sentinel.
func FreeShipping() *ShippingCost {
	return &ShippingCost{free: true}
}

// ShippingText returns a textual shipping cost.
func ShippingText(text string) *ShippingCost {
	return &ShippingCost{text: text}
}

// Free reports whether the cost is the free-shipping sentinel.
func (c *ShippingCost) Free() bool {
	return c.free
}

// Value returns the row-store cell value: 0 for free shipping, the text
// otherwise.
func (c *ShippingCost) Value() any {
	if c.free {
		return 0
	}
	return c.text
}

func (c *ShippingCost) String() string {
	if c.free {
		return "0"
	}
	return c.text
}

func (c *ShippingCost) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}
