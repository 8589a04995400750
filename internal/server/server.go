// Package server is the thin HTTP boundary over the gallery service:
// a scan form, a gallery view and the download endpoints. All business
// logic lives in pkg/gallery.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	errs "github.com/RIMANOuk/gallery-grabber/pkg/errors"
	"github.com/RIMANOuk/gallery-grabber/pkg/gallery"
	"github.com/RIMANOuk/gallery-grabber/pkg/logger"
)

// Server exposes the scan/browse/download HTTP surface.
type Server struct {
	service *gallery.Service
	logger  logger.Logger
	mux     *http.ServeMux
}

// New wires handlers onto an HTTP mux.
func New(service *gallery.Service, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetLogger()
	}
	s := &Server{
		service: service,
		logger:  log,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP satisfies the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("POST /scan", s.handleScan)
	s.mux.HandleFunc("GET /gallery/{token}", s.handleGallery)
	s.mux.HandleFunc("GET /download/{token}", s.handleDownload)
	s.mux.HandleFunc("GET /image/{token}/{index}", s.handleImage)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, homeTemplate, nil)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	pageURL := strings.TrimSpace(r.PostFormValue("url"))
	if pageURL == "" {
		s.renderError(w, http.StatusBadRequest, "Missing URL", "Paste the address of the page you want to scan.")
		return
	}
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = "https://" + pageURL
	}

	nameHint := r.PostFormValue("name")
	hideAssets := r.PostFormValue("hide_assets") != ""

	token, err := s.service.Scan(r.Context(), pageURL, nameHint, hideAssets)
	if err != nil {
		s.logger.WithError(err).WithField("url", pageURL).Warn("scan request failed")
		s.renderError(w, http.StatusBadGateway, "Could not fetch page",
			fmt.Sprintf("The page at %s could not be fetched: %v", pageURL, err))
		return
	}

	http.Redirect(w, r, "/gallery/"+token, http.StatusSeeOther)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	result, err := s.service.Lookup(token)
	if err != nil {
		s.respondLookupError(w, err)
		return
	}

	s.render(w, http.StatusOK, galleryTemplate, galleryView{
		Token:        result.Token,
		SourceURL:    result.SourceURL,
		DisplayName:  result.DisplayName,
		Images:       result.Images,
		AssetsHidden: result.AssetsHidden,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	data, filename, err := s.service.ArchiveAll(r.Context(), token)
	if err != nil {
		var typed *errs.Error
		if errors.As(err, &typed) && typed.Type == errs.ErrorTypeEmptyResult {
			s.renderError(w, http.StatusConflict, "Nothing to download",
				"This scan found no images, so there is nothing to archive.")
			return
		}
		s.respondLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "invalid image index", http.StatusBadRequest)
		return
	}

	body, contentType, err := s.service.FetchSingle(r.Context(), token, index)
	if err != nil {
		var typed *errs.Error
		if errors.As(err, &typed) && typed.Type == errs.ErrorTypeIndexRange {
			s.renderError(w, http.StatusNotFound, "Item not found",
				"That image is not part of this scan result.")
			return
		}
		s.respondLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Write(body)
}

// respondLookupError maps lookup failures onto user-facing pages:
// an unknown or expired token means the session must be re-scanned
func (s *Server) respondLookupError(w http.ResponseWriter, err error) {
	var typed *errs.Error
	if errors.As(err, &typed) && typed.Type == errs.ErrorTypeNotFound {
		s.renderError(w, http.StatusGone, "Session expired",
			"This scan result has expired or was never created. Please scan the page again.")
		return
	}
	s.logger.WithError(err).Error("request failed")
	s.renderError(w, http.StatusBadGateway, "Something went wrong", err.Error())
}
