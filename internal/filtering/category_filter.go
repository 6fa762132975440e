package filtering

import (
	"context"
	"errors"

	"github.com/spigell/vendor-matcher/internal/vendors"
)

type serviceCategoryFilter struct {
	category string
}

// NewServiceCategory creates a filter that keeps vendors offering the category.
func NewServiceCategory(category string) Filter {
	return &serviceCategoryFilter{category: vendors.NormalizeCategory(category)}
}

func (f *serviceCategoryFilter) Name() string { return "service_category" }

func (f *serviceCategoryFilter) Disable(string) {}

func (f *serviceCategoryFilter) IsEnabled() bool { return true }

func (f *serviceCategoryFilter) Validate() error {
	if f.category == "" {
		return errors.New("service category is required")
	}
	return nil
}

func (f *serviceCategoryFilter) Apply(_ context.Context, v *vendors.Vendors) (*vendors.Vendors, Step, error) {
	initial := v.Len()
	dropped := v.Keep(func(vendor *vendors.Vendor) bool { return vendor.OffersCategory(f.category) })

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *serviceCategoryFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"category": f.category},
	}
}
