package vendors

import (
	"reflect"
	"testing"
	"time"

	"github.com/spigell/vendor-matcher/internal/sheets"
)

func TestParseServiceCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "  ", want: nil},
		{name: "comma", input: "SEO, Content", want: []string{"seo", "content"}},
		{name: "mixed separators", input: "Web_Development;SEO / paid_media,", want: []string{"web_development", "seo", "paid_media"}},
		{name: "pipe is not a separator", input: "seo|content", want: []string{"seo|content"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseServiceCategories(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestVendorOffersCategory(t *testing.T) {
	t.Parallel()

	v := &Vendor{ServiceCategories: "SEO, Content", Status: StatusActive}

	if !v.OffersCategory(" seo ") {
		t.Fatal("expected exact token match after normalization")
	}
	if v.OffersCategory("se") {
		t.Fatal("partial tokens must not match")
	}
	if v.OffersCategory("") {
		t.Fatal("empty category must not match")
	}
}

func TestVendorIsActive(t *testing.T) {
	t.Parallel()

	if !(&Vendor{Status: StatusActive}).IsActive() {
		t.Fatal("expected active vendor")
	}
	for _, status := range []Status{StatusTesting, StatusInactive, "active", ""} {
		if (&Vendor{Status: status}).IsActive() {
			t.Fatalf("status %q must not be active", status)
		}
	}
	var nilVendor *Vendor
	if nilVendor.IsActive() {
		t.Fatal("nil vendor must not be active")
	}
}

func TestVendorsKeep(t *testing.T) {
	t.Parallel()

	v := &Vendors{Items: []*Vendor{{ID: "a", Status: StatusActive}, {ID: "b"}, {ID: "c", Status: StatusActive}}}
	dropped := v.Keep(func(vendor *Vendor) bool { return vendor.IsActive() })

	if !reflect.DeepEqual(dropped, []string{"b"}) {
		t.Fatalf("unexpected dropped ids: %#v", dropped)
	}
	if v.Len() != 2 || v.Items[0].ID != "a" || v.Items[1].ID != "c" {
		t.Fatalf("unexpected remaining vendors: %#v", v.Items)
	}
}

func TestDecodeVendors(t *testing.T) {
	t.Parallel()

	rows := []sheets.Row{
		{
			"vendor_id":          " VEN-0001 ",
			"vendor_name":        "Acme",
			"service_categories": "SEO, Content",
			"status":             "Active ",
			"avg_overall_rating": "4.5",
			"total_projects":     "12",
			"vendor_notes":       "Expert in SEO audits",
			"unknown_column":     "ignored",
		},
		{
			"vendor_id":          "VEN-0002",
			"avg_overall_rating": "n/a",
			"total_projects":     "7.9",
		},
		{
			"vendor_id": "VEN-0003",
		},
	}

	got, err := DecodeVendors(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 3 {
		t.Fatalf("expected 3 vendors, got %d", got.Len())
	}

	first := got.Items[0]
	if first.ID != "VEN-0001" || first.Status != StatusActive || first.AvgOverallRating != 4.5 || first.TotalProjects != 12 {
		t.Fatalf("unexpected first vendor: %+v", first)
	}

	second := got.Items[1]
	if second.AvgOverallRating != 0 {
		t.Fatalf("unparseable rating must decode to 0, got %v", second.AvgOverallRating)
	}
	if second.TotalProjects != 7 {
		t.Fatalf("expected fractional project count to truncate to 7, got %d", second.TotalProjects)
	}

	if third := got.Items[2]; third.AvgOverallRating != 0 || third.TotalProjects != 0 {
		t.Fatalf("missing numbers must decode to 0: %+v", third)
	}
}

func TestDecodeVendorsNonFiniteNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rating   string
		projects string
	}{
		{rating: "NaN", projects: "NaN"},
		{rating: "nan", projects: "Inf"},
		{rating: "Infinity", projects: "1e30"},
		{rating: "-Inf", projects: "-1e30"},
	}

	for _, tt := range tests {
		got, err := DecodeVendors([]sheets.Row{{
			"vendor_id":          "VEN-0001",
			"avg_overall_rating": tt.rating,
			"total_projects":     tt.projects,
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		v := got.Items[0]
		if v.AvgOverallRating != 0 || v.TotalProjects != 0 {
			t.Fatalf("rating %q projects %q: expected zero values, got %v and %d", tt.rating, tt.projects, v.AvgOverallRating, v.TotalProjects)
		}
	}
}

func TestDecodeRatings(t *testing.T) {
	t.Parallel()

	rows := []sheets.Row{
		{
			"rating_id":                   "R0001",
			"vendor_id":                   "VEN-0001",
			"rating_date":                 "2025-03-14",
			"project_success_rating":      "5",
			"vendor_quality_rating":       "4",
			"vendor_communication_rating": "3.5",
			"project_on_time":             "TRUE",
			"what_went_well":              "Fast turnaround",
		},
		{
			"rating_id":       "R0002",
			"vendor_id":       "VEN-0001",
			"rating_date":     "sometime last year",
			"project_on_time": "FALSE",
		},
	}

	got, err := DecodeRatings(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := got[0]
	if !first.Date.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %s", first.Date)
	}
	if !first.OnTime || first.VendorCommunication != 3.5 || first.ProjectSuccess != 5 {
		t.Fatalf("unexpected first rating: %+v", first)
	}

	second := got[1]
	if !second.Date.IsZero() {
		t.Fatalf("unparseable date must be zero, got %s", second.Date)
	}
	if second.OnTime {
		t.Fatal("FALSE must decode to false")
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := map[string]time.Time{
		"2025-01-02T10:00:00Z": time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
		"01/15/2025, 13:45:00": time.Date(2025, 1, 15, 13, 45, 0, 0, time.UTC),
		"3/7/2024":             time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		"":                     {},
		"not a date":           {},
	}

	for input, want := range tests {
		if got := ParseDate(input); !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestRecentRatings(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	ratings := []*Rating{
		{ID: "undated", VendorID: "v1"},
		{ID: "old", VendorID: "v1", Date: day(1)},
		{ID: "other", VendorID: "v2", Date: day(20)},
		{ID: "newest", VendorID: "v1", Date: day(10)},
		{ID: "middle", VendorID: "v1", Date: day(5)},
		nil,
	}

	got := RecentRatings(ratings, "v1", MaxRecentRatings)
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}

	if want := []string{"newest", "middle", "old"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}

	all := RecentRatings(ratings, "v1", 10)
	if len(all) != 4 || all[3].ID != "undated" {
		t.Fatalf("undated ratings must sort last: %+v", all)
	}

	if none := RecentRatings(ratings, "missing", 3); len(none) != 0 {
		t.Fatalf("expected no ratings, got %d", len(none))
	}
}

func TestEnrich(t *testing.T) {
	t.Parallel()

	v := &Vendor{ID: "v1"}
	ratings := []*Rating{{ID: "a", VendorID: "v1"}, {ID: "b", VendorID: "v2"}}

	enriched := Enrich(v, ratings)
	if enriched.Vendor != v || len(enriched.RecentRatings) != 1 || enriched.RecentRatings[0].ID != "a" {
		t.Fatalf("unexpected enriched vendor: %+v", enriched)
	}
}
