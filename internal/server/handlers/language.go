package handlers

import (
	"net/http"

	"github.com/waajacu/minerals/internal/server/response"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/i18n"
)

// resolveLanguage picks the request language: the lang query parameter,
// then the lang cookie, then Accept-Language, then the configured default.
// Unsupported values at any step are skipped.
func (h *Handlers) resolveLanguage(r *http.Request) i18n.Code {
	if c, ok := i18n.ParseCode(r.URL.Query().Get("lang")); ok {
		return c
	}
	if cookie, err := r.Cookie(constants.LanguageCookie); err == nil {
		if c, ok := i18n.ParseCode(cookie.Value); ok {
			return c
		}
	}
	if c, ok := i18n.Match(r.Header.Get("Accept-Language")); ok {
		return c
	}
	return h.config.DefaultLang
}

// HandleLanguages handles GET /api/v1/languages.
// @Summary List supported languages
// @Tags languages
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/languages [get].
func (h *Handlers) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"current":   h.resolveLanguage(r),
		"default":   h.config.DefaultLang,
		"base":      i18n.Base(),
		"languages": i18n.All(),
	})
}

// HandleUIText handles GET /api/v1/ui.
// @Summary Localized interface strings
// @Tags languages
// @Produce json
// @Param lang query string false "Language code"
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/ui [get].
func (h *Handlers) HandleUIText(w http.ResponseWriter, r *http.Request) {
	lang := i18n.MustLookup(h.resolveLanguage(r))
	response.OK(w, map[string]any{
		"language": lang.Code,
		"dir":      lang.Dir,
		"strings":  i18n.UIText(lang.Code),
	})
}

type languageRequest struct {
	Lang string `json:"lang"`
}

// HandleSetLanguage handles POST /language.
// An unsupported code selects the default language.
// @Summary Select the visitor language
// @Tags languages
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /language [post].
func (h *Handlers) HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decodeInput(w, r, &req, func(get func(string) string) {
		req.Lang = get("lang")
	}); err != nil {
		fail(w, r, err)
		return
	}

	selected, ok := i18n.ParseCode(req.Lang)
	if !ok {
		selected = h.config.DefaultLang
	}
	http.SetCookie(w, &http.Cookie{
		Name:     constants.LanguageCookie,
		Value:    string(selected),
		Path:     "/",
		MaxAge:   constants.LanguageCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})

	lang := i18n.MustLookup(selected)
	response.OK(w, map[string]any{
		"language": lang.Code,
		"dir":      lang.Dir,
	})
}
