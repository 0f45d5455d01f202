package gateway

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"trainingportal/internal/schedule"
)

// scheduleRole maps the stored role list onto the schedule endpoint choice.
func (g *Gateway) scheduleRole() (string, schedule.Role, bool) {
	user, ok := g.store.User()
	if !ok {
		return "", schedule.RoleStudent, false
	}
	role := schedule.RoleStudent
	if user.HasRole("TEACHER") {
		role = schedule.RoleTeacher
	}
	return user.ID, role, true
}

// handleHome returns today's sessions, the upcoming list, and the course
// catalog in one payload. Teachers look a month ahead, students two weeks,
// matching the home screens.
func (g *Gateway) handleHome(c *gin.Context) {
	personID, role, ok := g.scheduleRole()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	now := time.Now()
	to := now.AddDate(0, 0, 14)
	if role == schedule.RoleTeacher {
		to = now.AddDate(0, 1, 0)
	}

	entries, err := g.schedule.Fetch(c.Request.Context(), personID, role, now, to)
	if err != nil {
		respondErr(c, err)
		return
	}
	buckets := schedule.Partition(entries, now)

	courseList, err := g.courses.List(c.Request.Context())
	if err != nil {
		// The home screen still renders the schedule when the catalog
		// fails; it just shows an empty course row.
		courseList = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"today":    buckets.Today,
		"upcoming": buckets.Upcoming,
		"courses":  courseList,
	})
}

// handleSchedule serves the day, week, and month views over a window from
// the first day of the current month to the last day of the next.
func (g *Gateway) handleSchedule(c *gin.Context) {
	personID, role, ok := g.scheduleRole()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	now := time.Now()
	selected := c.DefaultQuery("date", now.Format("2006-01-02"))
	day, err := time.Parse("2006-01-02", selected)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 2, -1)

	entries, err := g.schedule.Fetch(c.Request.Context(), personID, role, from, to)
	if err != nil {
		respondErr(c, err)
		return
	}

	view := strings.ToLower(c.DefaultQuery("view", "day"))
	switch view {
	case "day":
		var matched []schedule.Entry
		for _, e := range entries {
			if e.Date == selected {
				matched = append(matched, e)
			}
		}
		c.JSON(http.StatusOK, gin.H{"view": "day", "date": selected, "entries": matched})

	case "week":
		dates := schedule.WeekOf(day)
		grouped := schedule.GroupByDate(entries)
		week := make(map[string][]schedule.Entry, len(dates))
		for _, d := range dates {
			week[d] = grouped[d]
		}
		c.JSON(http.StatusOK, gin.H{"view": "week", "dates": dates, "grouped": week})

	case "month":
		prefix := schedule.MonthKey(day)
		grouped := schedule.GroupByDate(entries)
		month := make(map[string][]schedule.Entry)
		var dates []string
		for d, list := range grouped {
			if strings.HasPrefix(d, prefix) {
				month[d] = list
				dates = append(dates, d)
			}
		}
		sort.Strings(dates)
		c.JSON(http.StatusOK, gin.H{"view": "month", "dates": dates, "grouped": month})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "view must be day, week, or month"})
	}
}

func (g *Gateway) handleCourses(c *gin.Context) {
	list, err := g.courses.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": list})
}

func (g *Gateway) handleCourse(c *gin.Context) {
	course, err := g.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (g *Gateway) handleRequests(c *gin.Context) {
	list, err := g.requests.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (g *Gateway) handleRequest(c *gin.Context) {
	req, err := g.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

type requestForm struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (g *Gateway) handleCreateRequest(c *gin.Context) {
	var form requestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	created, err := g.requests.Create(c.Request.Context(), form.Title, form.Content)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": created})
}
