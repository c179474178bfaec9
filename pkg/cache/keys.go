package cache

import "fmt"

// Cache key layout: tably:{module}:{operation}:{identifier}
const prefix = "tably"

// BuildAvailabilityKey keys a cached availability result for one query shape.
func BuildAvailabilityKey(venueID, date string, partySize, durationMinutes int, startUnix int64) string {
	return fmt.Sprintf("%s:availability:%s:%s:%d:%d:%d", prefix, venueID, date, partySize, durationMinutes, startUnix)
}

// AvailabilityPattern matches every cached availability entry for a venue/date,
// used for invalidation after any mutation touching that date.
func AvailabilityPattern(venueID, date string) string {
	return fmt.Sprintf("%s:availability:%s:%s:*", prefix, venueID, date)
}

// BuildTurnTimeKey keys the turn-time report for a venue/date.
func BuildTurnTimeKey(venueID, date string) string {
	return fmt.Sprintf("%s:analytics:turntimes:%s:%s", prefix, venueID, date)
}

// BuildPartySizeKey keys the party-size optimization report for a venue/date.
func BuildPartySizeKey(venueID, date string) string {
	return fmt.Sprintf("%s:analytics:partysize:%s:%s", prefix, venueID, date)
}

// AnalyticsPattern matches every cached analytics entry for a venue/date.
func AnalyticsPattern(venueID, date string) string {
	return fmt.Sprintf("%s:analytics:*:%s:%s", prefix, venueID, date)
}
