package attendance

import (
	"fmt"
	"time"
)

// Status is the server-owned session lifecycle state.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusOngoing   Status = "ONGOING"
	StatusFinished  Status = "FINISHED"
	StatusCanceled  Status = "CANCELED"
)

// RecordStatus is the per-student attendance outcome.
type RecordStatus string

const (
	RecordPresent RecordStatus = "PRESENT"
	RecordAbsent  RecordStatus = "ABSENT"
	RecordLate    RecordStatus = "LATE"
	RecordExcused RecordStatus = "EXCUSED"
)

// Attended reports whether the status counts as having shown up.
func (s RecordStatus) Attended() bool {
	return s == RecordPresent || s == RecordLate || s == RecordExcused
}

// Valid reports whether s is one of the known record statuses.
func (s RecordStatus) Valid() bool {
	switch s {
	case RecordPresent, RecordAbsent, RecordLate, RecordExcused:
		return true
	}
	return false
}

// ClassRef is the class a session belongs to.
type ClassRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is one scheduled class meeting. The copy held here is a
// read-through cache for a single screen visit; the server stays
// authoritative.
type Session struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	SessionNumber    int       `json:"sessionNumber"`
	Description      string    `json:"description"`
	Date             string    `json:"date"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Status           Status    `json:"status"`
	IsAttendanceOpen bool      `json:"isAttendanceOpen"`
	AttendanceCode   string    `json:"attendanceCode"`
	Class            *ClassRef `json:"class,omitempty"`
}

// ClassName returns the owning class name, empty when the relation was not
// expanded by the backend.
func (s Session) ClassName() string {
	if s.Class != nil {
		return s.Class.Name
	}
	return ""
}

// DisplayTitle falls back to the session number when there is no title.
func (s Session) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return fmt.Sprintf("Session %d", s.SessionNumber)
}

// Record is one (session, student) attendance row. Uniqueness per pair is
// enforced server-side.
type Record struct {
	ID        string       `json:"id"`
	SessionID string       `json:"sessionId"`
	StudentID string       `json:"stdId"`
	Status    RecordStatus `json:"status"`
	Note      string       `json:"note,omitempty"`
}

// Statistics is the aggregated head count for a session.
type Statistics struct {
	TotalStudents    int `json:"totalStudents"`
	AttendedStudents int `json:"attendedStudents"`
	AbsentStudents   int `json:"absentStudents"`
}

// AttendanceRate returns the attended percentage, 0 for an empty session.
func (s Statistics) AttendanceRate() int {
	if s.TotalStudents <= 0 {
		return 0
	}
	return int(float64(s.AttendedStudents)/float64(s.TotalStudents)*100 + 0.5)
}
