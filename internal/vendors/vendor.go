package vendors

import (
	"regexp"
	"strings"
)

// Status is the life-cycle state of a vendor in the roster.
type Status string

const (
	StatusActive   Status = "Active"
	StatusTesting  Status = "Testing"
	StatusInactive Status = "Inactive"
)

var categorySeparator = regexp.MustCompile(`\s*[,;/]\s*`)

type Vendor struct {
	ID                string  `mapstructure:"vendor_id" json:"vendor_id"`
	Name              string  `mapstructure:"vendor_name" json:"vendor_name"`
	ContactName       string  `mapstructure:"contact_name" json:"contact_name,omitempty"`
	ContactEmail      string  `mapstructure:"contact_email" json:"contact_email,omitempty"`
	Location          string  `mapstructure:"location" json:"location,omitempty"`
	ServiceCategories string  `mapstructure:"service_categories" json:"service_categories"`
	Specialties       string  `mapstructure:"specialties" json:"specialties,omitempty"`
	PricingNotes      string  `mapstructure:"pricing_notes" json:"pricing_notes,omitempty"`
	Status            Status  `mapstructure:"status" json:"status"`
	AvgOverallRating  float64 `mapstructure:"avg_overall_rating" json:"avg_overall_rating"`
	TotalProjects     int     `mapstructure:"total_projects" json:"total_projects"`
	Notes             string  `mapstructure:"vendor_notes" json:"vendor_notes,omitempty"`
}

// IsActive reports whether the vendor may be recommended.
func (v *Vendor) IsActive() bool {
	return v != nil && v.Status == StatusActive
}

// Categories returns the normalized service category tokens of the vendor.
func (v *Vendor) Categories() []string {
	if v == nil {
		return nil
	}
	return ParseServiceCategories(v.ServiceCategories)
}

// OffersCategory reports whether one of the vendor categories equals the
// normalized category exactly.
func (v *Vendor) OffersCategory(category string) bool {
	category = NormalizeCategory(category)
	if category == "" {
		return false
	}
	for _, c := range v.Categories() {
		if c == category {
			return true
		}
	}
	return false
}

// ParseServiceCategories splits a category list on ",", ";" or "/" and returns
// lower-cased, trimmed, non-empty tokens.
func ParseServiceCategories(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := categorySeparator.Split(raw, -1)
	categories := make([]string, 0, len(parts))
	for _, part := range parts {
		if c := NormalizeCategory(part); c != "" {
			categories = append(categories, c)
		}
	}
	return categories
}

// NormalizeCategory lower-cases and trims a category token.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

type Vendors struct {
	Items []*Vendor
}

func (v *Vendors) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

// Keep retains vendors accepted by keep and returns the ids of removed vendors.
func (v *Vendors) Keep(keep func(*Vendor) bool) []string {
	kept := make([]*Vendor, 0, len(v.Items))
	var dropped []string
	for _, vendor := range v.Items {
		if keep(vendor) {
			kept = append(kept, vendor)
			continue
		}
		dropped = append(dropped, vendor.ID)
	}
	v.Items = kept
	return dropped
}
