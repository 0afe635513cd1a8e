package domain

// CartSnapshot is the full state of a remote cart as last reported by the
// commerce backend. It is replaced wholesale on every successful mutation;
// nothing in it is patched in place.
type CartSnapshot struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalAmount   Money      `json:"totalAmount"`
	Lines         []CartLine `json:"lines"`
}

type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Merchandise Merchandise `json:"merchandise"`
}

// Merchandise identifies a purchasable product variant inside a line.
type Merchandise struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ImageURL      string `json:"imageUrl,omitempty"`
	ImageAltText  string `json:"imageAltText,omitempty"`
	ProductTitle  string `json:"productTitle"`
	ProductHandle string `json:"productHandle"`
	Price         Money  `json:"price"`
}

// Money is an opaque display value; Amount stays the backend's decimal
// string and is never used for arithmetic beyond the subtotal aggregate.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// LineInput seeds a cart at creation time.
type LineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}
