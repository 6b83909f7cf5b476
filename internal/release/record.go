package release

import (
	"crypto/sha1"
	"fmt"
)

// Record represents one scheduled release from the planning table.
// Field order is the export order for JSON and CSV.
type Record struct {
	Title        string  `json:"title"`
	ReleaseDate  string  `json:"release_date"` // Raw DD/MM/YYYY text as shown on the site
	Price        string  `json:"price"`
	Publisher    *string `json:"publisher"`
	PurchaseURL  *string `json:"purchase_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

// Fields lists the export column names in their fixed order.
var Fields = []string{"title", "release_date", "price", "publisher", "purchase_url", "thumbnail_url"}

// Values returns the record as strings in Fields order. Nil optionals become "".
func (r *Record) Values() []string {
	return []string{
		r.Title,
		r.ReleaseDate,
		r.Price,
		Deref(r.Publisher),
		Deref(r.PurchaseURL),
		Deref(r.ThumbnailURL),
	}
}

// Key returns a deterministic identifier derived from the exact title.
// Titles differing only in case get distinct keys.
func (r *Record) Key() string {
	h := sha1.New()
	h.Write([]byte(r.Title))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Optional returns nil for an empty string and a pointer to s otherwise.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
