// Package schedule fetches date-ranged session lists from the role-specific
// endpoints and reshapes the backend's heterogeneous rows into one entry
// shape for day, week, and month views.
package schedule

import (
	"context"
	"net/url"
	"sort"
	"time"

	"trainingportal/internal/api"
	"trainingportal/internal/attendance"
)

// Role selects which schedule endpoint is called.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
)

const dateLayout = "2006-01-02"

// Entry is one schedule row after normalization. It lives for the duration
// of a screen visit and is never persisted.
type Entry struct {
	SessionID        string            `json:"sessionId"`
	ClassName        string            `json:"className"`
	CourseName       string            `json:"courseName,omitempty"`
	Date             string            `json:"date"`
	TimeRange        string            `json:"time"`
	Address          string            `json:"address"`
	TeacherName      string            `json:"teacherName,omitempty"`
	Status           attendance.Status `json:"status"`
	IsAttendanceOpen bool              `json:"isAttendanceOpen"`
}

// rawEntry mirrors what the backend actually sends. Field names differ
// between the enrollment and teacher-course endpoints, so everything is
// optional here and resolved in normalize.
type rawEntry struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Session   *struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"session"`
	ClassName        string    `json:"className"`
	CourseName       string    `json:"courseName"`
	Date             string    `json:"date"`
	TimeString       string    `json:"timeString"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Address          string    `json:"address"`
	TeacherName      string    `json:"teacherName"`
	Status           string    `json:"status"`
	SessionStatus    string    `json:"sessionStatus"`
	IsAttendanceOpen bool      `json:"isAttendanceOpen"`
}

// Service fetches and normalizes schedules.
type Service struct {
	api            *api.Client
	defaultAddress string
}

// NewService creates the aggregator. defaultAddress fills rows with no
// address of their own.
func NewService(client *api.Client, defaultAddress string) *Service {
	return &Service{api: client, defaultAddress: defaultAddress}
}

// Fetch returns the normalized schedule for one person over an inclusive
// date range.
func (s *Service) Fetch(ctx context.Context, personID string, role Role, from, to time.Time) ([]Entry, error) {
	q := url.Values{}
	q.Set("fromDate", from.Format(dateLayout))
	q.Set("toDate", to.Format(dateLayout))

	var path string
	switch role {
	case RoleTeacher:
		q.Set("teacherId", personID)
		path = "/courses/teacher-schedule?" + q.Encode()
	default:
		q.Set("studentId", personID)
		path = "/enrollments/schedule?" + q.Encode()
	}

	var rows []rawEntry
	if err := s.api.Get(ctx, path, &rows); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, s.normalize(row))
	}
	return entries, nil
}

func (s *Service) normalize(row rawEntry) Entry {
	name := row.ClassName
	if name == "" {
		name = row.CourseName
	}
	if name == "" && row.Session != nil {
		name = row.Session.Title
	}

	sessionID := row.SessionID
	if sessionID == "" && row.Session != nil {
		sessionID = row.Session.ID
	}
	if sessionID == "" {
		sessionID = row.ID
	}

	timeRange := row.TimeString
	if timeRange == "" && !row.StartTime.IsZero() {
		timeRange = row.StartTime.Format("15:04") + " - " + row.EndTime.Format("15:04")
	}

	address := row.Address
	if address == "" {
		address = s.defaultAddress
	}

	status := row.SessionStatus
	if status == "" {
		status = row.Status
	}

	return Entry{
		SessionID:        sessionID,
		ClassName:        name,
		CourseName:       row.CourseName,
		Date:             DateKey(row.Date),
		TimeRange:        timeRange,
		Address:          address,
		TeacherName:      row.TeacherName,
		Status:           attendance.Status(status),
		IsAttendanceOpen: row.IsAttendanceOpen,
	}
}

// DateKey reduces a date or RFC3339 timestamp string to its YYYY-MM-DD part.
func DateKey(date string) string {
	if len(date) > len(dateLayout) {
		return date[:len(dateLayout)]
	}
	return date
}

// Buckets partitions a schedule relative to a reference day.
type Buckets struct {
	Today    []Entry
	Upcoming []Entry
}

// Partition splits entries into today's sessions and strictly-future ones,
// with the future bucket sorted ascending by date. Past entries land in
// neither bucket.
func Partition(entries []Entry, today time.Time) Buckets {
	todayKey := today.Format(dateLayout)
	var b Buckets
	for _, e := range entries {
		switch {
		case e.Date == todayKey:
			b.Today = append(b.Today, e)
		case e.Date > todayKey:
			b.Upcoming = append(b.Upcoming, e)
		}
	}
	sort.SliceStable(b.Upcoming, func(i, j int) bool {
		if b.Upcoming[i].Date != b.Upcoming[j].Date {
			return b.Upcoming[i].Date < b.Upcoming[j].Date
		}
		return b.Upcoming[i].TimeRange < b.Upcoming[j].TimeRange
	})
	return b
}

// GroupByDate maps ISO date strings to the entries on that date. Recomputed
// on every fetch; there is no incremental update.
func GroupByDate(entries []Entry) map[string][]Entry {
	grouped := make(map[string][]Entry)
	for _, e := range entries {
		grouped[e.Date] = append(grouped[e.Date], e)
	}
	return grouped
}

// WeekOf returns the seven ISO dates of the Monday-started week containing t.
func WeekOf(t time.Time) []string {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	monday := t.AddDate(0, 0, -offset)
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i).Format(dateLayout)
	}
	return dates
}

// MonthKey returns the YYYY-MM prefix used to filter month views.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
