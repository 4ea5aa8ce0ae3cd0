// Package match ranks pending donations for a receiver's nearby view: it
// drops expired candidates, annotates each survivor with distance and urgency
// and orders the result for display. The engine is pure: the current time and
// the viewer's location are explicit inputs.
package match

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/zerowastechef/zwc-backend/internal/models"
)

const earthRadiusKm = 6371

// urgencyWindow is the remaining-time cutoff below which a donation is
// flagged urgent. Exactly two hours remaining is not urgent.
const urgencyWindow = 2 * time.Hour

// Point is a viewer location in floating-point degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Order selects how ranked results are sorted.
type Order int

const (
	// OrderNewestFirst sorts by descending creation time (the default).
	OrderNewestFirst Order = iota
	// OrderNearestFirst sorts by ascending distance; items fall back to
	// recency order when no viewer location is available.
	OrderNearestFirst
)

// Result is one display row of the nearby view.
type Result struct {
	Donation models.Donation

	// DistanceKm is nil when the viewer's location is unknown.
	DistanceKm *float64

	// Remaining time until expiry, split into whole hours and minutes.
	RemainingHours   int
	RemainingMinutes int
	Urgent           bool
}

// RemainingLabel renders the remaining time the way the nearby cards show it:
// minutes only under one hour, hours and minutes otherwise.
func (r Result) RemainingLabel() string {
	if r.RemainingHours < 1 {
		return strconv.Itoa(r.RemainingMinutes) + " min"
	}
	return strconv.Itoa(r.RemainingHours) + "h " + strconv.Itoa(r.RemainingMinutes) + "m"
}

// Rank filters and orders candidates for display. Candidates whose expiry time
// is not strictly after now are dropped regardless of stored status; this is a
// read-time classification, nothing is written back. Distance is annotated per
// item when viewer is non-nil and never affects OrderNewestFirst.
func Rank(candidates []models.Donation, viewer *Point, now time.Time, order Order) []Result {
	results := make([]Result, 0, len(candidates))
	for _, d := range candidates {
		if !d.ExpiryTime.After(now) {
			continue
		}

		remaining := d.ExpiryTime.Sub(now)
		r := Result{
			Donation:         d,
			RemainingHours:   int(remaining / time.Hour),
			RemainingMinutes: int(remaining % time.Hour / time.Minute),
			Urgent:           remaining < urgencyWindow,
		}
		if viewer != nil {
			km := Distance(viewer.Latitude, viewer.Longitude, d.Latitude, d.Longitude)
			r.DistanceKm = &km
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if order == OrderNearestFirst && results[i].DistanceKm != nil && results[j].DistanceKm != nil {
			return *results[i].DistanceKm < *results[j].DistanceKm
		}
		return results[i].Donation.CreatedAt.After(results[j].Donation.CreatedAt)
	})

	return results
}

// Distance returns the great-circle (haversine) distance in kilometers
// between two coordinate pairs given in degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
