package vendors

import (
	"sort"
	"time"
)

// MaxRecentRatings is the number of ratings attached to a candidate vendor.
const MaxRecentRatings = 3

type Rating struct {
	ID                  string    `mapstructure:"rating_id" json:"rating_id"`
	VendorID            string    `mapstructure:"vendor_id" json:"vendor_id"`
	ProjectID           string    `mapstructure:"project_id" json:"project_id,omitempty"`
	Date                time.Time `mapstructure:"rating_date" json:"rating_date"`
	ProjectSuccess      float64   `mapstructure:"project_success_rating" json:"project_success_rating"`
	VendorQuality       float64   `mapstructure:"vendor_quality_rating" json:"vendor_quality_rating"`
	VendorCommunication float64   `mapstructure:"vendor_communication_rating" json:"vendor_communication_rating"`
	OnTime              bool      `mapstructure:"project_on_time" json:"project_on_time"`
	WhatWentWell        string    `mapstructure:"what_went_well" json:"what_went_well,omitempty"`
}

// EnrichedVendor is a candidate vendor together with its most recent ratings.
type EnrichedVendor struct {
	*Vendor
	RecentRatings []*Rating `json:"recent_ratings"`
}

// RecentRatings returns up to limit ratings of the vendor, newest first.
// Ratings without a parseable date sort after every dated rating; ties keep input order.
func RecentRatings(ratings []*Rating, vendorID string, limit int) []*Rating {
	matched := make([]*Rating, 0)
	for _, r := range ratings {
		if r != nil && r.VendorID == vendorID {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	if limit >= 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// Enrich attaches the most recent ratings of the vendor.
func Enrich(v *Vendor, ratings []*Rating) EnrichedVendor {
	return EnrichedVendor{
		Vendor:        v,
		RecentRatings: RecentRatings(ratings, v.ID, MaxRecentRatings),
	}
}
