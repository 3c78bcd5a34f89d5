package listing

// Fields holds the eight parsed output fields of a listing. Every field is
// individually optional; a nil pointer means the field could not be parsed.
type Fields struct {
	Price     *string       `json:"price,omitempty"`
	Shipping  *ShippingCost `json:"shipping,omitempty"`
	Delivery  *string       `json:"delivery,omitempty"`
	Title     *string       `json:"title,omitempty"`
	Condition *string       `json:"condition,omitempty"`
	MPN       *string       `json:"mpn,omitempty"`
	Brand     *string       `json:"brand,omitempty"`
	Model     *string       `json:"model,omitempty"`
}

// Record is the parse result for one listing. The link is the record's
// identity and is set at creation; the fields are filled in only by a
// successful parse. A record exists for every input link, even when every
// field stayed nil.
type Record struct {
	Link string `json:"link"`
	Fields
}

// NewRecord creates an empty record for a listing link.
func NewRecord(link string) *Record {
	return &Record{Link: link}
}

// Aggregate maps listing links to their records, one entry per link.
// Repeated links collapse to the last record stored for them.
type Aggregate map[string]*Record
