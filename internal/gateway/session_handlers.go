package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"trainingportal/internal/attendance"
)

// loadLifecycle builds the per-request lifecycle for a session and loads it
// with the current user as the attendance subject.
func (g *Gateway) loadLifecycle(c *gin.Context) (*attendance.Lifecycle, bool) {
	user, _ := g.store.User()
	lc := attendance.NewLifecycle(g.client, c.Param("id"))
	if err := lc.Load(c.Request.Context(), user.ID); err != nil {
		respondErr(c, err)
		return nil, false
	}
	return lc, true
}

func viewPayload(v attendance.View) gin.H {
	return gin.H{
		"session":  v.Session,
		"attended": v.Attended,
	}
}

func (g *Gateway) handleSession(c *gin.Context) {
	lc, ok := g.loadLifecycle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewPayload(lc.View()))
}

func (g *Gateway) handleStartSession(c *gin.Context) {
	lc, ok := g.loadLifecycle(c)
	if !ok {
		return
	}
	if err := lc.Start(c.Request.Context()); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, viewPayload(lc.View()))
}

func (g *Gateway) handleFinishSession(c *gin.Context) {
	lc, ok := g.loadLifecycle(c)
	if !ok {
		return
	}
	if err := lc.Finish(c.Request.Context()); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, viewPayload(lc.View()))
}

func (g *Gateway) handleOpenAttendance(c *gin.Context) {
	lc, ok := g.loadLifecycle(c)
	if !ok {
		return
	}
	code, err := lc.OpenAttendance(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	payload := viewPayload(lc.View())
	payload["attendanceCode"] = code
	c.JSON(http.StatusOK, payload)
}

func (g *Gateway) handleCloseAttendance(c *gin.Context) {
	lc, ok := g.loadLifecycle(c)
	if !ok {
		return
	}
	if err := lc.CloseAttendance(c.Request.Context()); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, viewPayload(lc.View()))
}

type checkInForm struct {
	Code   string `json:"code"`
	Source string `json:"source"`
}

func (g *Gateway) handleCheckIn(c *gin.Context) {
	var form checkInForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide code"})
		return
	}

	lc, ok := g.loadLifecycle(c)
	if !ok {
		return
	}

	var err error
	if form.Source == "QR" {
		// Scanned codes go through the cooldown gate so a bad scan does
		// not hammer the backend while the camera keeps firing.
		err = g.scannerFor(lc.SessionID()).Submit(c.Request.Context(), lc, form.Code)
	} else {
		err = lc.CheckIn(c.Request.Context(), form.Code)
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, viewPayload(lc.View()))
}

func (g *Gateway) handleRecords(c *gin.Context) {
	lc := attendance.NewLifecycle(g.client, c.Param("id"))
	records, err := lc.Records(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

type recordForm struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

func (g *Gateway) handleUpdateRecord(c *gin.Context) {
	var form recordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide status"})
		return
	}

	lc, ok := g.loadLifecycle(c)
	if !ok {
		return
	}
	err := lc.UpdateRecord(c.Request.Context(), c.Param("studentID"), attendance.RecordStatus(form.Status), form.Note)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// handleStatistics returns the head count once, or streams it on the poll
// interval when ?watch=1 is set. The stream stops when the client
// disconnects, which is how screen blur cancels the polling.
func (g *Gateway) handleStatistics(c *gin.Context) {
	lc := attendance.NewLifecycle(g.client, c.Param("id"))

	if c.Query("watch") == "" {
		stats, err := lc.Statistics(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
		return
	}

	updates := lc.PollStatistics(c.Request.Context(), g.cfg.PollInterval)
	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	enc := json.NewEncoder(c.Writer)
	for update := range updates {
		if update.Err != nil {
			_ = enc.Encode(gin.H{"error": update.Err.Error()})
		} else {
			_ = enc.Encode(update.Stats)
		}
		c.Writer.Flush()
	}
}
