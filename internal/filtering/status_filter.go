package filtering

import (
	"context"

	"github.com/spigell/vendor-matcher/internal/vendors"
)

type activeStatusFilter struct{}

// NewActiveStatus creates a filter that keeps only vendors with the Active status.
func NewActiveStatus() Filter {
	return &activeStatusFilter{}
}

func (f *activeStatusFilter) Name() string { return "active_status" }

func (f *activeStatusFilter) Disable(string) {}

func (f *activeStatusFilter) IsEnabled() bool { return true }

func (f *activeStatusFilter) Validate() error { return nil }

func (f *activeStatusFilter) Apply(_ context.Context, v *vendors.Vendors) (*vendors.Vendors, Step, error) {
	initial := v.Len()
	dropped := v.Keep(func(vendor *vendors.Vendor) bool { return vendor.IsActive() })

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *activeStatusFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Details: map[string]string{"status": string(vendors.StatusActive)},
	}
}
