// Package graph builds the road network: nodes snapped from coincident road
// endpoints, and edges carrying a smoothed centerline with left and right
// boundary curves. A Network is produced once per generation pass and is
// not mutated afterwards.
package graph
