package domain

import (
	"strings"
	"time"
)

type Course struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Program  string `json:"program,omitempty"`
	Level    string `json:"level,omitempty"`
	Semester string `json:"semester,omitempty"`
	Lecturer string `json:"lecturer,omitempty"`
}

type CourseRequest struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Program  string `json:"program,omitempty"`
	Level    string `json:"level,omitempty"`
	Semester string `json:"semester,omitempty"`
	Lecturer string `json:"lecturer,omitempty"`
}

func (r *CourseRequest) Normalize() {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	r.Title = strings.TrimSpace(r.Title)
	r.Program = strings.TrimSpace(r.Program)
	r.Level = strings.TrimSpace(r.Level)
	r.Semester = strings.TrimSpace(r.Semester)
	r.Lecturer = strings.TrimSpace(r.Lecturer)
}

func (r *CourseRequest) Validate() error {
	fields := map[string]string{}
	if r.Code == "" {
		fields["code"] = "course code is required"
	}
	if r.Title == "" {
		fields["title"] = "course title is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// TimetableEntry belongs to exactly one course. DayOfWeek is the ISO
// weekday (1=Monday .. 7=Sunday) so the (day_of_week, start_time)
// ordering is chronological. Times are "HH:MM" wall-clock strings.
type TimetableEntry struct {
	ID          int64  `json:"id"`
	CourseID    int64  `json:"course_id"`
	CourseCode  string `json:"course_code,omitempty"`
	CourseTitle string `json:"course_title,omitempty"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Venue       string `json:"venue,omitempty"`
}

type TimetableEntryRequest struct {
	CourseID  int64  `json:"course_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Venue     string `json:"venue,omitempty"`
}

func (r *TimetableEntryRequest) Normalize() {
	r.StartTime = strings.TrimSpace(r.StartTime)
	r.EndTime = strings.TrimSpace(r.EndTime)
	r.Venue = strings.TrimSpace(r.Venue)
}

func (r *TimetableEntryRequest) Validate() error {
	fields := map[string]string{}
	if r.CourseID <= 0 {
		fields["course_id"] = "course is required"
	}
	if r.DayOfWeek < 1 || r.DayOfWeek > 7 {
		fields["day_of_week"] = "day of week must be 1 (Monday) through 7 (Sunday)"
	}
	start, err := time.Parse("15:04", r.StartTime)
	if err != nil {
		fields["start_time"] = "start time must be HH:MM"
	}
	end, err := time.Parse("15:04", r.EndTime)
	if err != nil {
		fields["end_time"] = "end time must be HH:MM"
	}
	if _, ok := fields["start_time"]; !ok {
		if _, ok := fields["end_time"]; !ok && !end.After(start) {
			fields["end_time"] = "end time must be after start time"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type CourseRegistration struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"account_id"`
	CourseID     int64     `json:"course_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

type RegisterCourseRequest struct {
	CourseID int64 `json:"course_id"`
}

func (r *RegisterCourseRequest) Validate() error {
	if r.CourseID <= 0 {
		return NewValidationError("course_id", "course is required")
	}
	return nil
}
