package model

// WeeklyAvailability is one recurring open range for a resource on a day of
// week. DayOfWeek follows time.Weekday: 0=Sunday through 6=Saturday.
type WeeklyAvailability struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ResourceID  string `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	DayOfWeek   int    `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	StartMinute int    `json:"start_minute" bson:"start_minute" validate:"min=0,max=1439"`
	EndMinute   int    `json:"end_minute" bson:"end_minute" validate:"min=1,max=1440,gtfield=StartMinute"`
	Available   bool   `json:"available" bson:"available"`
}

// DateOverride supersedes the weekly schedule for one resource/date. A closed
// override wins over any custom hours.
type DateOverride struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ResourceID  string `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	Date        string `json:"date" bson:"date" validate:"required,booking_date"`
	StartMinute *int   `json:"start_minute,omitempty" bson:"start_minute,omitempty" validate:"omitempty,min=0,max=1439"`
	EndMinute   *int   `json:"end_minute,omitempty" bson:"end_minute,omitempty" validate:"omitempty,min=1,max=1440"`
	Closed      bool   `json:"closed" bson:"closed"`
}

// OpenRange is a contiguous bookable span within a single day, half-open on
// [StartMinute, EndMinute).
type OpenRange struct {
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Label       string `json:"label,omitempty"` // e.g. "09:00 - 17:00"
}

// Slot is one discrete bookable start time of fixed granularity.
type Slot struct {
	Date        string `json:"date"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Label       string `json:"label"` // e.g. "09:00"
}
