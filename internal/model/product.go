package model

import "time"

// Product is a row in the trivial demo catalog.
type Product struct {
    ID          string    `json:"id"`          // products.id
    Title       string    `json:"title"`       // products.title
    Price       float64   `json:"price"`       // products.price
    Description string    `json:"description"` // products.description
    Img         string    `json:"img"`         // products.img
    CreatedAt   time.Time `json:"createdAt"`   // products.created_at
    UpdatedAt   time.Time `json:"updatedAt"`   // products.updated_at
}
