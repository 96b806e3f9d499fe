package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/waajacu/minerals/internal/publish"
	"github.com/waajacu/minerals/internal/server/middleware"
	"github.com/waajacu/minerals/internal/server/response"
	"github.com/waajacu/minerals/internal/service"
	"github.com/waajacu/minerals/internal/sweep"
	"github.com/waajacu/minerals/pkg/constants"
	pkgerrors "github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/logging"
	"github.com/waajacu/minerals/pkg/minerals"
)

type loginRequest struct {
	Password string `json:"password"`
}

// HandleLogin handles POST /api/admin/login.
// @Summary Start an admin session
// @Tags admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 401 {object} response.Response{error=response.Error}
// @Router /api/admin/login [post].
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeInput(w, r, &req, func(get func(string) string) {
		req.Password = get("password")
	}); err != nil {
		fail(w, r, err)
		return
	}

	token, err := h.svc.Login(req.Password)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	ttl := h.svc.SessionTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	logging.FromContext(r.Context()).Info().Msg("Admin session created")

	response.OK(w, map[string]any{
		"token":              token,
		"expires_in_seconds": int(ttl.Seconds()),
	})
}

// HandleLogout handles POST /api/admin/logout. A live session is ended and
// every pending draft discarded; the cookie is cleared either way.
// @Summary End the admin session
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/admin/logout [post].
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, ended := middleware.SessionToken(r, h.svc)
	if ended {
		h.svc.Logout(r.Context(), token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	response.OK(w, map[string]any{"logged_out": ended})
}

// HandleSuggest handles POST /api/admin/minerals/suggest.
// @Summary Suggest a record from a photo
// @Description Stores the upload as a draft and returns the AI proposal for the admin form
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Mineral photo"
// @Param suggestion_context formData string false "Operator hints for the model"
// @Success 200 {object} response.Response{data=service.SuggestResult}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Security AdminSession
// @Router /api/admin/minerals/suggest [post].
func (h *Handlers) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(w, r, err)
			return
		}
		response.Err(w, r, pkgerrors.NewValidationError("image", nil, "image upload is required"))
		return
	}

	in := service.SuggestInput{Context: strings.TrimSpace(r.FormValue("suggestion_context"))}
	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		response.Err(w, r, pkgerrors.NewValidationError("image", nil, "image upload is unreadable"))
		return
	default:
		defer func() { _ = file.Close() }()
		if in.Image, err = io.ReadAll(file); err != nil {
			fail(w, r, err)
			return
		}
		in.FileName = header.Filename
		in.ContentType = header.Header.Get("Content-Type")
	}

	res, err := h.svc.Suggest(r.Context(), in)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, res)
}

// publishKeys are the accepted publish form keys.
var publishKeys = []string{
	"draft_id", "common_name", "description", "mineral_family", "formula",
	"hardness_mohs", "density_g_cm3", "crystal_system", "color", "streak",
	"luster", minerals.ElementsField, "notes",
}

// HandlePublish handles POST /api/admin/minerals/publish.
// @Summary Publish a draft
// @Description Validates the form, writes the record in every language and refreshes the catalog
// @Tags admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 201 {object} response.Response{data=publish.Result}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Security AdminSession
// @Router /api/admin/minerals/publish [post].
func (h *Handlers) HandlePublish(w http.ResponseWriter, r *http.Request) {
	values, err := publishValues(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}

	fields := publish.Fields{
		CommonName:    values["common_name"],
		Description:   values["description"],
		Family:        values["mineral_family"],
		Formula:       values["formula"],
		HardnessMohs:  values["hardness_mohs"],
		DensityGCm3:   values["density_g_cm3"],
		CrystalSystem: values["crystal_system"],
		Color:         values["color"],
		Streak:        values["streak"],
		Luster:        values["luster"],
		MajorElements: values[minerals.ElementsField],
		Notes:         values["notes"],
	}
	ctx := logging.WithDraft(r.Context(), values["draft_id"])
	res, err := h.svc.Publish(ctx, strings.TrimSpace(values["draft_id"]), fields)
	if err != nil {
		response.Err(w, r.WithContext(ctx), err)
		return
	}
	response.Created(w, res)
}

// publishValues collects the publish fields as strings from a form or a
// JSON object. JSON numbers keep their literal text and an element object
// is rewritten in the one-pair-per-line format.
func publishValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	values := make(map[string]string, len(publishKeys))
	if !isJSON(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := parseForm(r, maxFormBytes); err != nil {
			return nil, err
		}
		for _, k := range publishKeys {
			values[k] = r.PostFormValue(k)
		}
		return values, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, pkgerrors.NewValidationError("body", nil, "request body is not valid JSON")
	}
	for _, k := range publishKeys {
		values[k] = jsonText(raw[k])
	}
	return values, nil
}

func jsonText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, k+"="+jsonText(t[k]))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(t)
	}
}

type sweepRequest struct {
	OlderThan string `json:"older_than"`
	Apply     bool   `json:"apply"`
}

// HandleSweep handles POST /api/admin/sweep. Without apply it only lists
// orphaned folders.
// @Summary Find or remove orphaned record folders
// @Tags admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Response{data=service.SweepResult}
// @Security AdminSession
// @Router /api/admin/sweep [post].
func (h *Handlers) HandleSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if err := decodeInput(w, r, &req, func(get func(string) string) {
		req.OlderThan = get("older_than")
		req.Apply, _ = strconv.ParseBool(get("apply"))
	}); err != nil {
		fail(w, r, err)
		return
	}

	age := sweep.DefaultAge
	if req.OlderThan != "" {
		d, err := time.ParseDuration(req.OlderThan)
		if err != nil || d < 0 {
			response.Err(w, r, pkgerrors.NewValidationError("older_than", req.OlderThan, "'older_than' must be a non-negative duration such as 90m"))
			return
		}
		age = d
	}

	res, err := h.svc.Sweep(r.Context(), age, req.Apply)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.OK(w, res)
}

// HandleReload handles POST /api/admin/reload. It drops every cached
// catalog so records edited on disk are picked up.
// @Summary Drop cached catalogs
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Security AdminSession
// @Router /api/admin/reload [post].
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	h.svc.Invalidate()
	logging.FromContext(r.Context()).Info().Msg("Catalog cache invalidated by admin")
	response.OK(w, map[string]any{
		"status":           "invalidated",
		"cache_generation": h.svc.Stats().Generation,
	})
}

// HandleStats handles GET /api/admin/stats.
// @Summary Service statistics
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Security AdminSession
// @Router /api/admin/stats [get].
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response.OK(w, map[string]any{
		"runtime": map[string]any{
			"uptime_seconds": int64(time.Since(h.config.StartTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory_mb":      memStats.Alloc / 1024 / 1024,
			"memory_sys_mb":  memStats.Sys / 1024 / 1024,
		},
		"service": h.svc.Stats(),
		"events": map[string]any{
			"published_total": h.broker.EventsPublished(),
			"dropped_total":   h.broker.EventsDropped(),
			"queue_depth":     h.broker.QueueDepth(),
		},
		"realtime": map[string]any{
			"websocket_clients": h.wsHub.ClientCount(),
			"sse_clients":       h.sseBroadcaster.ClientCount(),
		},
	})
}
