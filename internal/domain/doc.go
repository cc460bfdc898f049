// Package domain models a wildfire risk assessment for a single map point.
//
// # Risk Radius
//
// The regression model predicts a burn area in hectares. It is scaled by
// [BurnAreaScale] into an area unit and treated as the area of a circle
// centred on the nearest fire. Inverting A = πr² yields the danger radius:
//
//	danger_radius = sqrt(predicted * 100 / π)
//	max_radius    = danger_radius * 1.2
//
// A point whose distance to the nearest fire is <= max_radius is within the
// high-risk radius. The comparison is inclusive. Negative or non-finite
// predictions and distances are rejected with [ErrInvalidInput] rather than
// producing a NaN radius.
//
// # Model Features
//
// The feature row follows the UCI Forest Fires dataset column order:
//
//	month  1-12, taken from the evaluation time
//	temp   air temperature in °C
//	RH     relative humidity in %
//	wind   wind speed in km/h
//	rain   precipitation in mm
//
// # Distances
//
// Distances between coordinates are great-circle distances in kilometres,
// computed with the haversine formula on a mean earth radius. See [Distance].
package domain
