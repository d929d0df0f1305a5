package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/watchpost/watchpost/ingest"
	"github.com/watchpost/watchpost/presence"
	"github.com/watchpost/watchpost/store"
	"github.com/watchpost/watchpost/utils"
)

// listLimit caps the admin listing endpoint.
const listLimit = 200

// APIController exposes the device-facing endpoints (upload, heartbeat)
// and the operator listing API.
type APIController struct {
	svc      *ingest.Service
	store    *store.MediaStore
	presence presence.Tracker
}

// NewAPIController creates an APIController.
func NewAPIController(svc *ingest.Service, st *store.MediaStore, tracker presence.Tracker) *APIController {
	return &APIController{svc: svc, store: st, presence: tracker}
}

// Upload ingests one media file from an authenticated device. Credentials
// come from form fields or the X-Device-Id / X-Auth-Token headers.
func (a *APIController) Upload(ctx *gin.Context) {
	deviceID := ctx.PostForm("device_id")
	if deviceID == "" {
		deviceID = ctx.GetHeader("X-Device-Id")
	}
	token := ctx.PostForm("token")
	if token == "" {
		token = ctx.GetHeader("X-Auth-Token")
	}

	req := ingest.UploadRequest{DeviceID: deviceID, Token: token, Size: -1}
	if file, header, err := ctx.Request.FormFile("file"); err == nil {
		defer file.Close()
		req.Payload = file
		req.Filename = header.Filename
		req.Size = header.Size
	}

	res, err := a.svc.Submit(ctx.Request.Context(), req)
	if err != nil {
		a.fail(ctx, err)
		return
	}

	a.presence.Touch(ctx.Request.Context(), deviceID)
	utils.OK(ctx, gin.H{
		"id":         res.ID,
		"url":        res.URL,
		"media_type": res.MediaType,
	})
}

// Heartbeat confirms a device is alive. Nothing is persisted; the presence
// tracker only feeds the dashboard.
func (a *APIController) Heartbeat(ctx *gin.Context) {
	var body struct {
		DeviceID string `json:"device_id"`
		Token    string `json:"token"`
	}
	_ = ctx.ShouldBindJSON(&body)

	if !a.svc.Authorize(body.DeviceID, body.Token) {
		utils.Fail(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	a.presence.Touch(ctx.Request.Context(), body.DeviceID)
	utils.OK(ctx, gin.H{"ts": time.Now().UTC().Format(time.RFC3339)})
}

// List returns the most recent media records for operator tooling. The
// admin header check happens in middleware.
func (a *APIController) List(ctx *gin.Context) {
	items, err := a.store.Recent(ctx.Request.Context(), listLimit)
	if err != nil {
		utils.Fail(ctx, http.StatusInternalServerError, "store failed")
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, m := range items {
		out = append(out, gin.H{
			"id":         m.ID,
			"device_id":  m.DeviceID,
			"filename":   m.Filename,
			"type":       m.MediaType,
			"created_at": m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	utils.OK(ctx, gin.H{"items": out})
}

// fail translates pipeline errors to wire responses. The broad category is
// all a caller learns; unauthorized never says which check failed.
func (a *APIController) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ingest.ErrUnauthorized):
		utils.Fail(ctx, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, ingest.ErrNoFile):
		utils.Fail(ctx, http.StatusBadRequest, "no file")
	case errors.Is(err, ingest.ErrBadExtension):
		utils.Fail(ctx, http.StatusBadRequest, "bad extension")
	case errors.Is(err, ingest.ErrTooLarge):
		utils.Fail(ctx, http.StatusBadRequest, "file too large")
	case errors.Is(err, ingest.ErrStorage):
		utils.Fail(ctx, http.StatusInternalServerError, "storage failed")
	case errors.Is(err, ingest.ErrStore):
		utils.Fail(ctx, http.StatusInternalServerError, "store failed")
	default:
		utils.Fail(ctx, http.StatusInternalServerError, "internal error")
	}
}
