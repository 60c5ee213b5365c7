package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/govuk-domains/domain-request/internal/evidence"
	"github.com/govuk-domains/domain-request/internal/middleware"
	"github.com/govuk-domains/domain-request/internal/storage"
	"github.com/govuk-domains/domain-request/internal/wizard"
)

// uploadFileField is the file input name on every upload form.
const uploadFileField = "evidence_file"

// uploadPage ties an upload step pair to its evidence slot.
type uploadPage struct {
	slot    wizard.EvidenceSlot
	upload  wizard.StepID
	confirm wizard.StepID
	title   string
}

var uploadPages = []uploadPage{
	{wizard.SlotExemption, wizard.StepExemptionUpload, wizard.StepExemptionUploadConfirm,
		"Upload evidence of your registrant's exemption"},
	{wizard.SlotPermission, wizard.StepWrittenPermissionUpload, wizard.StepWrittenPermissionUploadConf,
		"Upload evidence of written permission"},
	{wizard.SlotMinister, wizard.StepMinisterUpload, wizard.StepMinisterUploadConfirm,
		"Upload evidence of the minister's request"},
}

func (s *Server) renderUpload(c *gin.Context, page uploadPage, step wizard.StepID, app *wizard.Application, uploadErr string) {
	token, err := s.csrf.Issue(middleware.Record(c).ID)
	if err != nil {
		s.serverError(c, err)
		return
	}
	ctx := gin.H{
		"title":         page.title,
		"step":          string(step),
		"slot":          string(page.slot),
		"action":        step.Path(),
		"upload_action": page.upload.Path(),
		"back":          wizard.Previous(step, app).Path(),
		"csrf_token":    token,
		"error":         uploadErr,
		"has_error":     uploadErr != "",
		"tag":           "Uploaded",
		"remove_url":    "/" + string(page.upload) + "-remove/",
	}
	if ev := app.EvidenceFor(page.slot); ev != nil {
		ctx["filename"] = ev.OriginalFilename
		ctx["download_url"] = "/uploads/" + ev.StoredName
	}
	template := "upload.html"
	if step == page.confirm {
		template = "upload-confirm.html"
	}
	s.html(c, http.StatusOK, template, ctx)
}

// handleUploadGET renders the upload form. A populated slot redirects to
// the confirm page, which shows the stored file with its Uploaded tag.
func (s *Server) handleUploadGET(page uploadPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := middleware.Record(c)
		app := &rec.Application
		if !wizard.Accessible(page.upload, app) {
			s.invalidRequest(c)
			return
		}
		if app.EvidenceFor(page.slot) != nil {
			c.Redirect(http.StatusFound, page.confirm.Path())
			return
		}
		s.renderUpload(c, page, page.upload, app, "")
	}
}

// readUpload pulls the submitted file out of the multipart form. A missing
// file comes back as empty values, which the manager rejects with its
// own message.
func readUpload(c *gin.Context) (string, []byte) {
	header, err := c.FormFile(uploadFileField)
	if err != nil {
		return "", nil
	}
	f, err := header.Open()
	if err != nil {
		return "", nil
	}
	defer f.Close()
	// Read one byte past the ceiling so the size check sees the overrun
	// without buffering an arbitrarily large body.
	content, err := io.ReadAll(io.LimitReader(f, evidence.MaxUploadBytes+1024))
	if err != nil {
		return "", nil
	}
	if int64(len(content)) > evidence.MaxUploadBytes && header.Size > int64(len(content)) {
		// Pad to the declared size so the rejection message reports the
		// real filesize without the body ever being held in full.
		content = append(content, make([]byte, int(header.Size)-len(content))...)
	}
	return header.Filename, content
}

// handleUploadPOST stores a new evidence file, replacing any previous one.
func (s *Server) handleUploadPOST(page uploadPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := middleware.Record(c)
		app := &rec.Application
		if !wizard.Accessible(page.upload, app) {
			s.invalidRequest(c)
			return
		}

		filename, content := readUpload(c)
		_, err := s.evidence.Upload(c.Request.Context(), app, rec.ID, page.slot, filename, content)
		var verr *evidence.ValidationError
		if errors.As(err, &verr) {
			s.metrics.Uploads.WithLabelValues(string(page.slot), "rejected").Inc()
			from := page.upload
			if app.EvidenceFor(page.slot) != nil {
				from = page.confirm
			}
			s.renderUpload(c, page, from, app, verr.Message)
			return
		}
		if err != nil {
			s.serverError(c, err)
			return
		}
		if err := s.store.Put(c.Request.Context(), rec); err != nil {
			s.serverError(c, err)
			return
		}
		s.metrics.Uploads.WithLabelValues(string(page.slot), "stored").Inc()
		c.Redirect(http.StatusFound, page.confirm.Path())
	}
}

// handleUploadConfirmGET shows the stored file with remove and replace
// affordances. An empty slot goes back to the upload form.
func (s *Server) handleUploadConfirmGET(page uploadPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := middleware.Record(c)
		app := &rec.Application
		if app.EvidenceFor(page.slot) == nil {
			c.Redirect(http.StatusFound, page.upload.Path())
			return
		}
		if !wizard.Accessible(page.confirm, app) {
			s.invalidRequest(c)
			return
		}
		s.renderUpload(c, page, page.confirm, app, "")
	}
}

// handleUploadConfirmPOST advances past a populated slot.
func (s *Server) handleUploadConfirmPOST(page uploadPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := middleware.Record(c)
		app := &rec.Application
		if app.EvidenceFor(page.slot) == nil {
			c.Redirect(http.StatusFound, page.upload.Path())
			return
		}
		c.Redirect(http.StatusFound, wizard.Next(page.confirm, app).Path())
	}
}

// handleUploadRemove deletes the slot's file. Its retrieval URL is dead
// by the time the redirect lands on the empty upload form.
func (s *Server) handleUploadRemove(page uploadPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec := middleware.Record(c)
		app := &rec.Application
		if err := s.evidence.Remove(c.Request.Context(), app, page.slot); err != nil {
			s.serverError(c, err)
			return
		}
		if err := s.store.Put(c.Request.Context(), rec); err != nil {
			s.serverError(c, err)
			return
		}
		c.Redirect(http.StatusFound, page.upload.Path())
	}
}

// handleUploadDownload serves a stored artifact back to the session that
// owns it. Anything else, including artifacts that were just removed,
// is a 404.
func (s *Server) handleUploadDownload(c *gin.Context) {
	rec := middleware.Record(c)
	name := strings.TrimPrefix(c.Param("name"), "/")
	if !strings.HasPrefix(name, rec.ID+"/") {
		s.notFound(c)
		return
	}
	artifact, err := s.evidence.Retrieve(c.Request.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		s.notFound(c)
		return
	}
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.Data(http.StatusOK, artifact.ContentType, artifact.Content)
}
