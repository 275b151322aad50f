package domain

import "fmt"

// Product is a single catalog entity. Products are immutable once created;
// a re-uploaded catalog replaces them wholesale, never patches them.
type Product struct {
	// ID is the stable unique identifier within the catalog.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Description is the free-text description.
	Description string `json:"description"`

	// Price is the current price. Must be positive.
	Price float64 `json:"price"`

	// OriginalPrice is the pre-discount price. Must be positive.
	OriginalPrice float64 `json:"originalPrice"`

	// Discount is an optional human-readable discount label, e.g. "25%".
	// Empty means no discount.
	Discount string `json:"discount,omitempty"`

	// SoldCount is the number of units sold. Never negative.
	SoldCount int `json:"soldCount"`

	// Rating is the average review score, 0 to 5.
	Rating float64 `json:"rating"`

	// ShopName is the selling shop's display name.
	ShopName string `json:"shopName"`

	// ShopLocation is the shop's location.
	ShopLocation string `json:"shopLocation"`

	// IsMall indicates a mall-verified seller.
	IsMall bool `json:"isMall"`

	// IsPreferred indicates a preferred seller.
	IsPreferred bool `json:"isPreferred"`

	// FreeShipping indicates the product ships free.
	FreeShipping bool `json:"freeShipping"`

	// Category is the catalog category.
	Category string `json:"category"`

	// Brand is the product brand.
	Brand string `json:"brand"`

	// Tags are free-text labels.
	Tags []string `json:"tags"`

	// Specs is an open key-to-scalar map of specifications.
	// Values are strings, numbers, or booleans.
	Specs map[string]any `json:"specs"`

	// Warranty is the warranty text.
	Warranty string `json:"warranty"`

	// ReturnPolicy is the return-policy text.
	ReturnPolicy string `json:"returnPolicy"`
}

// Validate checks the structural invariants of a product.
// Schema validation happens before products reach the chunker, so the rest
// of the core can treat products as structurally sound.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: product %s: name is required", ErrInvalidInput, p.ID)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: product %s: price must be positive", ErrInvalidInput, p.ID)
	}
	if p.OriginalPrice <= 0 {
		return fmt.Errorf("%w: product %s: original price must be positive", ErrInvalidInput, p.ID)
	}
	if p.SoldCount < 0 {
		return fmt.Errorf("%w: product %s: sold count must not be negative", ErrInvalidInput, p.ID)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("%w: product %s: rating must be between 0 and 5", ErrInvalidInput, p.ID)
	}
	return nil
}

// Catalog is a versioned collection of products plus source metadata.
// It is the unit of wholesale load into the knowledge store.
type Catalog struct {
	// Version is the catalog schema version.
	Version string `json:"version"`

	// Name is the catalog display name.
	Name string `json:"name"`

	// Description describes the catalog contents.
	Description string `json:"description"`

	// Source identifies where the catalog was scraped or exported from.
	Source string `json:"source"`

	// ScrapedAt is when the catalog was produced, as recorded by the source.
	ScrapedAt string `json:"scrapedAt"`

	// TotalProducts is the product count recorded by the source.
	TotalProducts int `json:"totalProducts"`

	// Categories lists the categories present in the catalog.
	Categories []string `json:"categories"`

	// Products are the catalog entries.
	Products []Product `json:"products"`
}

// Validate checks the catalog and every product in it.
func (c *Catalog) Validate() error {
	if len(c.Products) == 0 {
		return fmt.Errorf("%w: catalog has no products", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(c.Products))
	for i := range c.Products {
		if err := c.Products[i].Validate(); err != nil {
			return err
		}
		id := c.Products[i].ID
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate product id %q", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
