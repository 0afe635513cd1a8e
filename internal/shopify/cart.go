package shopify

import (
	"context"
	"fmt"

	"storefront-cart/internal/domain"
)

// Wire shapes for the storefront cart payloads. Lines come back as a
// relay connection; they are flattened before leaving this package.

type gqlMoney struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type gqlImage struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type gqlMerchandise struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Image   *gqlImage `json:"image"`
	Product struct {
		Title  string `json:"title"`
		Handle string `json:"handle"`
	} `json:"product"`
	PriceV2 gqlMoney `json:"priceV2"`
}

type gqlCartLine struct {
	ID          string         `json:"id"`
	Quantity    int            `json:"quantity"`
	Merchandise gqlMerchandise `json:"merchandise"`
}

type gqlCart struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		TotalAmount gqlMoney `json:"totalAmount"`
	} `json:"cost"`
	Lines struct {
		Edges []struct {
			Node gqlCartLine `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

type gqlUserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type cartPayload struct {
	Cart       *gqlCart       `json:"cart"`
	UserErrors []gqlUserError `json:"userErrors"`
}

// CreateCart creates a new remote cart, optionally seeded with lines.
func (c *Client) CreateCart(ctx context.Context, lines []domain.LineInput) (*domain.CartSnapshot, error) {
	lineInputs := make([]map[string]interface{}, 0, len(lines))
	for _, l := range lines {
		lineInputs = append(lineInputs, map[string]interface{}{
			"merchandiseId": l.MerchandiseID,
			"quantity":      l.Quantity,
		})
	}
	var resp struct {
		CartCreate cartPayload `json:"cartCreate"`
	}
	err := c.execute(ctx, createCartMutation, map[string]interface{}{
		"input": map[string]interface{}{"lines": lineInputs},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return payloadSnapshot(resp.CartCreate, "create cart")
}

// GetCart fetches the current snapshot for cartID. A null cart in a
// successful response maps to domain.ErrNotFound.
func (c *Client) GetCart(ctx context.Context, cartID string) (*domain.CartSnapshot, error) {
	var resp struct {
		Cart *gqlCart `json:"cart"`
	}
	err := c.execute(ctx, getCartQuery, map[string]interface{}{"cartId": cartID}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Cart == nil {
		return nil, domain.ErrNotFound
	}
	return toSnapshot(resp.Cart), nil
}

// AddLine adds quantity units of a variant to the cart. Quantity must be
// at least 1; the engine enforces that before calling.
func (c *Client) AddLine(ctx context.Context, cartID, merchandiseID string, quantity int) (*domain.CartSnapshot, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}
	var resp struct {
		CartLinesAdd cartPayload `json:"cartLinesAdd"`
	}
	err := c.execute(ctx, cartLinesAddMutation, map[string]interface{}{
		"cartId": cartID,
		"lines": []map[string]interface{}{
			{"merchandiseId": merchandiseID, "quantity": quantity},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return payloadSnapshot(resp.CartLinesAdd, "add line")
}

// UpdateLine sets an existing line to quantity. Quantity 0 is rejected
// here; removal is a distinct operation.
func (c *Client) UpdateLine(ctx context.Context, cartID, lineID string, quantity int) (*domain.CartSnapshot, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, use RemoveLine for 0")
	}
	var resp struct {
		CartLinesUpdate cartPayload `json:"cartLinesUpdate"`
	}
	err := c.execute(ctx, cartLinesUpdateMutation, map[string]interface{}{
		"cartId": cartID,
		"lines": []map[string]interface{}{
			{"id": lineID, "quantity": quantity},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return payloadSnapshot(resp.CartLinesUpdate, "update line")
}

// RemoveLine deletes a line from the cart.
func (c *Client) RemoveLine(ctx context.Context, cartID, lineID string) (*domain.CartSnapshot, error) {
	var resp struct {
		CartLinesRemove cartPayload `json:"cartLinesRemove"`
	}
	err := c.execute(ctx, cartLinesRemoveMutation, map[string]interface{}{
		"cartId":  cartID,
		"lineIds": []string{lineID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return payloadSnapshot(resp.CartLinesRemove, "remove line")
}

// payloadSnapshot normalizes a mutation payload: userErrors beat the
// returned cart (a mutation with userErrors is a failure even when the
// transport succeeded), and the first message is the one surfaced.
func payloadSnapshot(p cartPayload, op string) (*domain.CartSnapshot, error) {
	if len(p.UserErrors) > 0 {
		return nil, &domain.UserError{Message: p.UserErrors[0].Message}
	}
	if p.Cart == nil {
		return nil, fmt.Errorf("%s: empty cart in response", op)
	}
	return toSnapshot(p.Cart), nil
}

func toSnapshot(c *gqlCart) *domain.CartSnapshot {
	snap := &domain.CartSnapshot{
		ID:            c.ID,
		CheckoutURL:   c.CheckoutURL,
		TotalQuantity: c.TotalQuantity,
		TotalAmount: domain.Money{
			Amount:       c.Cost.TotalAmount.Amount,
			CurrencyCode: c.Cost.TotalAmount.CurrencyCode,
		},
	}
	for _, edge := range c.Lines.Edges {
		node := edge.Node
		line := domain.CartLine{
			ID:       node.ID,
			Quantity: node.Quantity,
			Merchandise: domain.Merchandise{
				ID:            node.Merchandise.ID,
				Title:         node.Merchandise.Title,
				ProductTitle:  node.Merchandise.Product.Title,
				ProductHandle: node.Merchandise.Product.Handle,
				Price: domain.Money{
					Amount:       node.Merchandise.PriceV2.Amount,
					CurrencyCode: node.Merchandise.PriceV2.CurrencyCode,
				},
			},
		}
		if node.Merchandise.Image != nil {
			line.Merchandise.ImageURL = node.Merchandise.Image.URL
			line.Merchandise.ImageAltText = node.Merchandise.Image.AltText
		}
		snap.Lines = append(snap.Lines, line)
	}
	return snap
}
