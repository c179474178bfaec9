package analytics

// MealPeriodStats aggregates completed reservations inside one service period.
type MealPeriodStats struct {
	Period         string  `json:"period"` // breakfast, lunch, dinner
	AvgTurnMinutes float64 `json:"avg_turn_minutes"`
	Completed      int     `json:"completed"`
}

// HourStats counts reservations starting within one hour of the day.
type HourStats struct {
	Hour         int `json:"hour"`
	Reservations int `json:"reservations"`
}

// TurnTimeReport summarizes how long parties actually held their tables on
// one service date.
type TurnTimeReport struct {
	VenueID           string            `json:"venue_id"`
	Date              string            `json:"date"`
	CompletedCount    int               `json:"completed_count"`
	OverallAvgMinutes float64           `json:"overall_avg_minutes"`
	MealPeriods       []MealPeriodStats `json:"meal_periods"`
	PeakHours         []HourStats       `json:"peak_hours"`
}

// PartySizeBucket groups reservations by party size range.
type PartySizeBucket struct {
	Label          string  `json:"label"` // 1-2, 3-4, 5-6, 7+
	MinSize        int     `json:"min_size"`
	MaxSize        int     `json:"max_size"` // 0 means unbounded
	Reservations   int     `json:"reservations"`
	SharePercent   float64 `json:"share_percent"`
	AvgTurnMinutes float64 `json:"avg_turn_minutes"`
}

// PartySizeReport shows the demand mix by party size for one service date,
// the input for deciding which table sizes the floor plan is short on.
type PartySizeReport struct {
	VenueID           string            `json:"venue_id"`
	Date              string            `json:"date"`
	TotalReservations int               `json:"total_reservations"`
	Buckets           []PartySizeBucket `json:"buckets"`
}

// reservationSample is the row shape both reports aggregate over.
type reservationSample struct {
	StartAt         string  `json:"start_at"`
	StartHour       int     `json:"start_hour"`
	DurationMinutes int     `json:"duration_minutes"`
	PartySize       int     `json:"party_size"`
	Status          string  `json:"status"`
	ActualMinutes   float64 `json:"actual_minutes"`
}
