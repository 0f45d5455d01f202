package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trainingportal/internal/auth"
)

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (g *Gateway) handleLogin(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide email and password"})
		return
	}
	user, err := g.auth.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (g *Gateway) handleLogout(c *gin.Context) {
	if err := g.auth.Logout(); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loggedOut": true})
}

func (g *Gateway) handleMe(c *gin.Context) {
	user, ok := g.store.User()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (g *Gateway) handleUpdateMe(c *gin.Context) {
	var upd auth.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
		return
	}
	user, err := g.auth.UpdateProfile(c.Request.Context(), upd)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type serverForm struct {
	BaseURL string `json:"baseUrl" binding:"required"`
}

func (g *Gateway) handleSetServer(c *gin.Context) {
	var form serverForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide baseUrl"})
		return
	}
	if err := g.store.SetBaseURL(form.BaseURL); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"baseUrl": g.store.BaseURL()})
}

func (g *Gateway) handleAbout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"centerName": g.content.CenterName,
		"address":    g.content.DefaultAddress,
		"about":      g.content.About,
	})
}

func (g *Gateway) handleContact(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"centerName":   g.content.CenterName,
		"address":      g.content.DefaultAddress,
		"hotline":      g.content.Hotline,
		"supportEmail": g.content.SupportEmail,
	})
}
