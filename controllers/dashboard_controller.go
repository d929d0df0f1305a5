package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/watchpost/watchpost/ingest"
	"github.com/watchpost/watchpost/middleware"
	"github.com/watchpost/watchpost/presence"
	"github.com/watchpost/watchpost/registry"
	"github.com/watchpost/watchpost/store"
	"github.com/watchpost/watchpost/utils"
)

const sessionDuration = 12 * time.Hour

// DashboardController renders the operator pages: login, dashboard,
// gallery, and stored media files.
type DashboardController struct {
	store         *store.MediaStore
	writer        *ingest.Writer
	registry      *registry.Registry
	presence      presence.Tracker
	cred          registry.AdminCredential
	sessionSecret string
}

// NewDashboardController creates a DashboardController.
func NewDashboardController(st *store.MediaStore, writer *ingest.Writer, reg *registry.Registry,
	tracker presence.Tracker, cred registry.AdminCredential, sessionSecret string) *DashboardController {
	return &DashboardController{
		store:         st,
		writer:        writer,
		registry:      reg,
		presence:      tracker,
		cred:          cred,
		sessionSecret: sessionSecret,
	}
}

// LoginForm renders the login page.
func (d *DashboardController) LoginForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login checks the operator credential and opens a session.
func (d *DashboardController) Login(ctx *gin.Context) {
	username := ctx.PostForm("username")
	password := ctx.PostForm("password")
	if !d.cred.CheckLogin(username, password) {
		ctx.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"error": "invalid username or password",
		})
		return
	}

	token, err := utils.GenerateSessionToken(d.sessionSecret, username, sessionDuration)
	if err != nil {
		ctx.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"error": "could not open session",
		})
		return
	}
	ctx.SetCookie(middleware.SessionCookieName, token,
		int(sessionDuration.Seconds()), "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/dashboard")
}

// Logout clears the session cookie.
func (d *DashboardController) Logout(ctx *gin.Context) {
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/login")
}

// deviceStatus pairs a registered device with its last-seen time.
type deviceStatus struct {
	ID       string
	LastSeen string
}

// Dashboard shows recent captures, aggregate counts, and device liveness.
func (d *DashboardController) Dashboard(ctx *gin.Context) {
	rc := ctx.Request.Context()
	recent, err := d.store.Recent(rc, 50)
	if err != nil {
		recent = nil
	}
	counts := d.store.DashboardCounts(rc)

	devices := make([]deviceStatus, 0, d.registry.Len())
	for _, id := range d.registry.Devices() {
		status := deviceStatus{ID: id, LastSeen: "never"}
		if ts, ok := d.presence.LastSeen(rc, id); ok {
			status.LastSeen = ts.UTC().Format(time.RFC3339)
		}
		devices = append(devices, status)
	}

	ctx.HTML(http.StatusOK, "dashboard.html", gin.H{
		"items":   recent,
		"counts":  counts,
		"devices": devices,
	})
}

// Gallery lists every stored capture, newest first.
func (d *DashboardController) Gallery(ctx *gin.Context) {
	items, err := d.store.Recent(ctx.Request.Context(), 0)
	if err != nil {
		items = nil
	}
	ctx.HTML(http.StatusOK, "gallery.html", gin.H{"items": items})
}

// MediaFile serves one stored file by its exact stored filename, applying
// the same containment check as the writer before returning bytes.
func (d *DashboardController) MediaFile(ctx *gin.Context) {
	name := ctx.Param("filename")
	path, err := d.writer.Resolve(name)
	if err != nil {
		ctx.Status(http.StatusNotFound)
		return
	}
	ctx.File(path)
}
