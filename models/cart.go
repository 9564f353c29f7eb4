package models

import "encoding/json"

// CartUpdateEventName is the storefront-wide event other widgets listen to
const CartUpdateEventName = "cart:update"

// CartLineItem is one line of a cart add request
// Example: {"id": 4412, "quantity": 1, "properties": {"_bundle_id": "tshirt-bundle"}}
type CartLineItem struct {
	ID         int64             `json:"id" validate:"gt=0"`
	Quantity   int               `json:"quantity" validate:"eq=1"`
	Properties map[string]string `json:"properties" validate:"required"`
}

// CartAddRequest is the body POSTed to cart/add.js
type CartAddRequest struct {
	Items []CartLineItem `json:"items" validate:"required,min=1,dive"`
}

// CartErrorBody is the shape of a storefront rejection
// Example: {"status": 422, "message": "Cart Error", "description": "Sold out"}
type CartErrorBody struct {
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// CartUpdateData is the data part of a cart update notification
type CartUpdateData struct {
	Source    string `json:"source"`
	ItemCount int    `json:"itemCount"`
}

// CartUpdateEvent is the cross-widget notification emitted after a successful add
type CartUpdateEvent struct {
	Name     string          `json:"name"`
	Bubbles  bool            `json:"bubbles"`
	Resource json.RawMessage `json:"resource"`
	SourceID string          `json:"sourceId"`
	Data     CartUpdateData  `json:"data"`
}

// Redirect tells the page where to go once the success state has been shown
type Redirect struct {
	URL     string `json:"url"`
	DelayMs int64  `json:"delayMs"`
}
