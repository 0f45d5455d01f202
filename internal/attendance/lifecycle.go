// Package attendance drives the client side of one session's attendance
// window: loading the session with its records, opening and closing the
// window, submitting check-in codes, and reconciling the local attended flag.
// All mutations funnel through a single reducer over a tagged view state so
// transitions stay testable in isolation.
package attendance

import (
	"context"
	"sync"

	"trainingportal/internal/api"
)

// Phase tags the view state.
type Phase int

const (
	PhaseNotLoaded Phase = iota
	PhaseLoaded
	PhaseFailed
)

// View is what a screen renders: either nothing yet, a session with the
// caller's attended flag, or a load failure.
type View struct {
	Phase    Phase
	Session  Session
	Attended bool
	Err      error
}

type eventKind int

const (
	evLoaded eventKind = iota
	evLoadFailed
	evStarted
	evAttendanceOpened
	evAttendanceClosed
	evCheckedIn
	evFinished
)

type event struct {
	kind     eventKind
	session  Session
	attended bool
	code     string
	err      error
}

// reduce is the only place view state changes. It applies the optimistic
// local update after a successful server response; truth is re-fetched on the
// next load.
func reduce(v View, e event) View {
	switch e.kind {
	case evLoaded:
		return View{Phase: PhaseLoaded, Session: e.session, Attended: e.attended}
	case evLoadFailed:
		return View{Phase: PhaseFailed, Err: e.err}
	case evStarted:
		v.Session.Status = StatusOngoing
	case evAttendanceOpened:
		v.Session.IsAttendanceOpen = true
		v.Session.AttendanceCode = e.code
	case evAttendanceClosed:
		v.Session.IsAttendanceOpen = false
	case evCheckedIn:
		v.Attended = true
	case evFinished:
		v.Session.Status = StatusFinished
		v.Session.IsAttendanceOpen = false
	}
	return v
}

// Lifecycle is the client-side state machine for one session. Operations are
// serialized by its mutex; ordering against the server across concurrent
// lifecycles is last-writer-wins.
type Lifecycle struct {
	mu        sync.Mutex
	api       *api.Client
	sessionID string
	view      View
}

// NewLifecycle binds a lifecycle to one session id. Nothing is fetched until
// Load.
func NewLifecycle(client *api.Client, sessionID string) *Lifecycle {
	return &Lifecycle{api: client, sessionID: sessionID}
}

// View returns the current view state.
func (l *Lifecycle) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}

// SessionID returns the bound session id.
func (l *Lifecycle) SessionID() string {
	return l.sessionID
}

// Load fetches the session detail and the full record list in parallel, then
// computes the caller's attended flag by scanning for a record whose student
// id matches and whose status counts as attended. Any fetch error leaves the
// view in the failed phase; the screen shows "not found" instead of crashing.
func (l *Lifecycle) Load(ctx context.Context, studentID string) error {
	var (
		wg         sync.WaitGroup
		sess       Session
		records    []Record
		sessErr    error
		recordsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sessErr = l.api.Get(ctx, "/sessions/"+l.sessionID, &sess)
	}()
	go func() {
		defer wg.Done()
		recordsErr = l.api.Get(ctx, "/attendance/records/session/"+l.sessionID, &records)
	}()
	wg.Wait()

	if sessErr != nil || recordsErr != nil {
		err := sessErr
		if err == nil {
			err = recordsErr
		}
		l.apply(event{kind: evLoadFailed, err: err})
		return err
	}

	attended := false
	for _, r := range records {
		if r.StudentID == studentID && r.Status.Attended() {
			attended = true
			break
		}
	}
	l.apply(event{kind: evLoaded, session: sess, attended: attended})
	return nil
}

// Start moves a scheduled session to ongoing. The guard mirrors the disabled
// button in the app; the server stays the final authority.
func (l *Lifecycle) Start(ctx context.Context) error {
	if err := l.require(StatusScheduled); err != nil {
		return err
	}
	if err := l.api.Post(ctx, "/sessions/"+l.sessionID+"/start", nil, nil); err != nil {
		return err
	}
	l.apply(event{kind: evStarted})
	return nil
}

// Finish moves an ongoing session to finished and closes the attendance
// window.
func (l *Lifecycle) Finish(ctx context.Context) error {
	if err := l.require(StatusOngoing); err != nil {
		return err
	}
	if err := l.api.Post(ctx, "/sessions/"+l.sessionID+"/finish", nil, nil); err != nil {
		return err
	}
	l.apply(event{kind: evFinished})
	return nil
}

// OpenAttendance opens the attendance window and returns the check-in code.
// Calling it while the window is already open returns the existing code
// without a round trip. The ONGOING precondition is server-enforced; a
// rejection surfaces with the server message.
func (l *Lifecycle) OpenAttendance(ctx context.Context) (string, error) {
	l.mu.Lock()
	if err := l.rejectTerminalLocked(); err != nil {
		l.mu.Unlock()
		return "", err
	}
	if l.view.Session.IsAttendanceOpen && l.view.Session.AttendanceCode != "" {
		code := l.view.Session.AttendanceCode
		l.mu.Unlock()
		return code, nil
	}
	l.mu.Unlock()

	var out struct {
		AttendanceCode string `json:"attendanceCode"`
	}
	if err := l.api.Post(ctx, "/sessions/"+l.sessionID+"/attendance/open", nil, &out); err != nil {
		return "", err
	}
	l.apply(event{kind: evAttendanceOpened, code: out.AttendanceCode})
	return out.AttendanceCode, nil
}

// CloseAttendance closes the window; the server accepts no further check-ins
// afterwards.
func (l *Lifecycle) CloseAttendance(ctx context.Context) error {
	l.mu.Lock()
	if err := l.rejectTerminalLocked(); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	if err := l.api.Post(ctx, "/sessions/"+l.sessionID+"/attendance/close", nil, nil); err != nil {
		return err
	}
	l.apply(event{kind: evAttendanceClosed})
	return nil
}

// CheckIn submits a code entered manually or scanned from a QR payload. On
// success the local attended flag flips; failures (wrong or expired code,
// closed window, duplicate check-in) surface the server message.
func (l *Lifecycle) CheckIn(ctx context.Context, code string) error {
	if code == "" {
		return &api.ValidationError{Field: "code", Message: "attendance code required"}
	}
	l.mu.Lock()
	if err := l.rejectTerminalLocked(); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	body := map[string]string{
		"sessionId": l.sessionID,
		"code":      code,
	}
	if err := l.api.Post(ctx, "/attendance/records/check-in", body, nil); err != nil {
		return err
	}
	l.apply(event{kind: evCheckedIn})
	return nil
}

// UpdateRecord overrides one student's record directly, bypassing the
// code-based flow. The teacher has final say, so the attendance window state
// does not matter here.
func (l *Lifecycle) UpdateRecord(ctx context.Context, studentID string, status RecordStatus, note string) error {
	if !status.Valid() {
		return &api.ValidationError{Field: "status", Message: "unknown attendance status"}
	}
	l.mu.Lock()
	if err := l.rejectTerminalLocked(); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	body := map[string]string{
		"status": string(status),
		"note":   note,
	}
	return l.api.Put(ctx, "/attendance/records/manual/session/"+l.sessionID+"/student/"+studentID, body, nil)
}

// Records returns the full attendance list for the session.
func (l *Lifecycle) Records(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := l.api.Get(ctx, "/attendance/records/session/"+l.sessionID, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Statistics returns the aggregated head count.
func (l *Lifecycle) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	if err := l.api.Get(ctx, "/attendance/records/statistics/"+l.sessionID, &stats); err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

func (l *Lifecycle) apply(e event) {
	l.mu.Lock()
	l.view = reduce(l.view, e)
	l.mu.Unlock()
}

// require guards a transition on the currently loaded status.
func (l *Lifecycle) require(status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.view.Phase != PhaseLoaded {
		return &api.ValidationError{Message: "session not loaded"}
	}
	if err := l.rejectTerminalLocked(); err != nil {
		return err
	}
	if l.view.Session.Status != status {
		return &api.ValidationError{Message: "session is " + string(l.view.Session.Status)}
	}
	return nil
}

// rejectTerminalLocked blocks every mutation on a canceled session. The
// server defines no transition out of CANCELED, so the client treats it as a
// read-only terminal state.
func (l *Lifecycle) rejectTerminalLocked() error {
	if l.view.Phase == PhaseLoaded && l.view.Session.Status == StatusCanceled {
		return &api.ValidationError{Message: "session was canceled"}
	}
	return nil
}
