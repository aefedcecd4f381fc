package types

import "time"

// Product is the catalog entry consumed by the recommendation core.
// Products are owned by catalog management; this module only reads them.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	StartupID   string    `json:"startup_id"`
	StartupName string    `json:"startup_name"`
	Stock       int       `json:"stock"`
	Rating      float64   `json:"rating"`
	Sales       int       `json:"sales"`
	City        string    `json:"city"`
	CreatedAt   time.Time `json:"created_at"`
}

// Startup is a seller listed on the marketplace.
type Startup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}
