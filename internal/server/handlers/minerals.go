package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/waajacu/minerals/internal/report"
	"github.com/waajacu/minerals/internal/server/response"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

// HandleListMinerals handles GET /api/v1/minerals.
// @Summary List the catalog
// @Description Every published mineral resolved for the request language, ordered by name
// @Tags minerals
// @Produce json
// @Param lang query string false "Language code"
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/minerals [get].
func (h *Handlers) HandleListMinerals(w http.ResponseWriter, r *http.Request) {
	lang := i18n.MustLookup(h.resolveLanguage(r))
	cat, err := h.svc.Catalog(r.Context(), lang.Code)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"language": lang.Code,
		"dir":      lang.Dir,
		"count":    cat.Len(),
		"minerals": cat.List(),
	})
}

// HandleGetMineral handles GET /api/v1/minerals/{id}.
// @Summary Get one mineral
// @Tags minerals
// @Produce json
// @Param id path string true "Record identifier"
// @Param lang query string false "Language code"
// @Success 200 {object} response.Response{data=minerals.Mineral}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/minerals/{id} [get].
func (h *Handlers) HandleGetMineral(w http.ResponseWriter, r *http.Request) {
	lang := i18n.MustLookup(h.resolveLanguage(r))
	id := r.PathValue("id")
	m, err := h.svc.Mineral(r.Context(), lang.Code, id)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"language": lang.Code,
		"dir":      lang.Dir,
		"mineral":  m,
		"elements": report.Breakdown(m.MajorElementsPct),
	})
}

// reportRequest reads the optional report parameters from the query string
// or the body.
func reportRequest(w http.ResponseWriter, r *http.Request) (report.Request, error) {
	q := r.URL.Query()
	req := report.Request{
		Audience:    q.Get("audience"),
		Purpose:     q.Get("purpose"),
		SiteContext: q.Get("site_context"),
	}
	if r.Method == http.MethodPost {
		err := decodeInput(w, r, &req, func(get func(string) string) {
			if v := get("audience"); v != "" {
				req.Audience = v
			}
			if v := get("purpose"); v != "" {
				req.Purpose = v
			}
			if v := get("site_context"); v != "" {
				req.SiteContext = v
			}
		})
		if err != nil {
			return req, err
		}
	}
	return req.Normalize(), nil
}

// HandleReport handles GET and POST /api/v1/minerals/{id}/report.
// @Summary Analysis report
// @Description Composition breakdown, property bands and recommendations for one mineral
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Record identifier"
// @Success 200 {object} response.Response{data=report.Report}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/minerals/{id}/report [post].
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	req, err := reportRequest(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	rep, err := h.svc.Report(r.Context(), h.resolveLanguage(r), r.PathValue("id"), req)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, rep)
}

// HandleRenderReport handles POST /api/v1/minerals/{id}/pdf.
// When the PDF step fails the HTML and TeX artifacts are still returned in
// data next to the error.
// @Summary Render report documents
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Record identifier"
// @Success 200 {object} response.Response{data=render.Artifacts}
// @Failure 502 {object} response.Response{data=render.Artifacts,error=response.Error}
// @Router /api/v1/minerals/{id}/pdf [post].
func (h *Handlers) HandleRenderReport(w http.ResponseWriter, r *http.Request) {
	req, err := reportRequest(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	artifacts, err := h.svc.RenderReport(r.Context(), h.resolveLanguage(r), r.PathValue("id"), req)
	if err != nil {
		if artifacts.HTML == "" {
			response.Err(w, r, err)
			return
		}
		h.logger.Warn().Err(err).Str("mineral", r.PathValue("id")).Msg("PDF generation failed")
		resp := response.Fail("UPSTREAM_ERROR", "PDF generation failed", err.Error())
		resp.Data = artifacts
		response.JSON(w, http.StatusBadGateway, resp)
		return
	}
	response.OK(w, artifacts)
}

// HandleDataFile handles GET /data/minerals/{folder}/{file}. Only direct
// children of a record folder are served; hidden files are not.
func (h *Handlers) HandleDataFile(w http.ResponseWriter, r *http.Request) {
	folder := r.PathValue("folder")
	file := r.PathValue("file")
	if !minerals.ValidIdentifier(folder) || !servableName(file) {
		response.NotFound(w, "file not found", "")
		return
	}

	path := filepath.Join(h.svc.Store().FolderPath(folder), file)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		if err != nil && !os.IsNotExist(err) {
			h.logger.Warn().Err(errors.WrapIO("stat", path, err)).Msg("Data file unavailable")
		}
		response.NotFound(w, "file not found", "")
		return
	}

	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), ".")); ext {
	case "png", "jpg", "jpeg", "webp", "gif":
		w.Header().Set("Content-Type", minerals.ContentTypeForExt(ext))
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}

func servableName(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, ".") &&
		!strings.ContainsAny(name, `/\`) &&
		filepath.Base(name) == name
}
