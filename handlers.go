package main

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"picklist/models"
	"picklist/pkg/config"
	"picklist/pkg/imagesource"
	"picklist/pkg/marks"
	"picklist/pkg/picklist"
	"picklist/pkg/scan"
	"picklist/pkg/sheet"
)

const msgNoPhoto = "Capture or upload a picklist photo to get started."

type server struct {
	cfg     *config.Config
	scanner *scan.Scanner
	log     *zap.Logger
}

func setupRoutes(r *gin.Engine, s *server) {
	r.GET("/health", s.healthHandler)
	r.GET("/presets", s.presetsHandler)
	r.POST("/scan", s.scanHandler)
	r.POST("/scan/export", s.exportHandler)
	r.GET("/scan/:md5", s.lookupHandler)
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

func (s *server) presetsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default": s.cfg.Marks.Preset,
		"presets": marks.Presets(),
	})
}

func (s *server) scanHandler(c *gin.Context) {
	res, ok := s.runScan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.ScanResponse{Success: true, Message: "scan complete", Data: res})
}

// exportHandler scans the upload and returns the filled picklist as xlsx.
func (s *server) exportHandler(c *gin.Context) {
	res, ok := s.runScan(c)
	if !ok {
		return
	}
	buf, err := sheet.Export(res.Rows, s.cfg.Picklist.SheetName)
	if err != nil {
		s.log.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "export failed", Error: err.Error()})
		return
	}
	name := s.cfg.Picklist.FileName
	if name == "" {
		name = sheet.DefaultFileName
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("X-Scan-ID", res.ID)
	c.Data(http.StatusOK, sheet.ContentType, buf.Bytes())
}

func (s *server) lookupHandler(c *gin.Context) {
	digest := strings.ToLower(c.Param("md5"))
	det, err := s.scanner.Lookup(c.Request.Context(), digest, c.Query("preset"))
	if err != nil {
		if errors.Is(err, marks.ErrUnknownPreset) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "unknown preset", Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "cache lookup failed", Error: err.Error()})
		return
	}
	if det == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "no cached detection for " + digest})
		return
	}
	c.JSON(http.StatusOK, det)
}

// runScan reads the multipart upload and runs the scanner. It writes the
// error response itself and reports false when the request failed.
func (s *server) runScan(c *gin.Context) (*models.Result, bool) {
	fh := formPhoto(c)
	if fh == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: msgNoPhoto})
		return nil, false
	}
	if limit := s.cfg.Upload.MaxSize; limit > 0 && fh.Size > limit {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: fmt.Sprintf("file too large (max %d MB)", limit/(1024*1024)),
		})
		return nil, false
	}

	var req scan.Request
	if raw := strings.TrimSpace(c.PostForm("items")); raw != "" {
		items, err := picklist.ParseItemsJSON(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid items", Error: err.Error()})
			return nil, false
		}
		req.Items = items
	}
	req.Preset = strings.TrimSpace(c.PostForm("preset"))

	content, err := readUpload(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "cannot read upload", Error: err.Error()})
		return nil, false
	}
	s.log.Debug("upload received",
		zap.String("file", fh.Filename),
		zap.Int64("size", fh.Size),
		zap.String("mime", imagesource.Sniff(content)),
	)
	if s.cfg.Upload.KeepFiles {
		s.keepUpload(fh.Filename, content)
	}

	res, err := s.scanner.Scan(c.Request.Context(), content, req)
	if err != nil {
		status, msg := scanErrorStatus(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("scan failed", zap.String("file", fh.Filename), zap.Error(err))
		}
		c.JSON(status, models.ErrorResponse{Message: msg, Error: err.Error()})
		return nil, false
	}
	return res, true
}

// formPhoto prefers the camera capture over an uploaded file.
func formPhoto(c *gin.Context) *multipart.FileHeader {
	for _, field := range []string{"camera", "file"} {
		if fh, err := c.FormFile(field); err == nil && fh.Size > 0 {
			return fh
		}
	}
	return nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func scanErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, imagesource.ErrEmpty):
		return http.StatusBadRequest, msgNoPhoto
	case errors.Is(err, imagesource.ErrUnsupported), errors.Is(err, imagesource.ErrDecode):
		return http.StatusUnprocessableEntity, "the upload is not a readable picklist photo"
	case errors.Is(err, marks.ErrUnknownPreset):
		return http.StatusBadRequest, "unknown preset"
	default:
		return http.StatusInternalServerError, "scan failed"
	}
}

func (s *server) keepUpload(name string, content []byte) {
	ext := strings.ToLower(filepath.Ext(name))
	path := filepath.Join(s.cfg.Upload.Dir, uuid.NewString()+ext)
	if err := os.MkdirAll(s.cfg.Upload.Dir, 0755); err != nil {
		s.log.Warn("mkdir upload dir failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		s.log.Warn("keep upload failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.log.Debug("upload kept", zap.String("path", path))
}
