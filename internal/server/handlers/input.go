package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/waajacu/minerals/internal/server/response"
	pkgerrors "github.com/waajacu/minerals/pkg/errors"
)

// maxFormBytes caps non-upload request bodies.
const maxFormBytes = 1 << 20

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// decodeInput reads a JSON body into dst, or hands form values to fromForm
// for urlencoded and multipart bodies. An empty body leaves dst untouched.
func decodeInput(w http.ResponseWriter, r *http.Request, dst any, fromForm func(get func(string) string)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if isJSON(r) {
		err := json.NewDecoder(r.Body).Decode(dst)
		var tooLarge *http.MaxBytesError
		switch {
		case err == nil, errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &tooLarge):
			return err
		default:
			return pkgerrors.NewValidationError("body", nil, "request body is not valid JSON")
		}
	}
	if err := parseForm(r, maxFormBytes); err != nil {
		return err
	}
	fromForm(r.PostFormValue)
	return nil
}

// parseForm parses urlencoded or multipart bodies.
func parseForm(r *http.Request, maxBytes int64) error {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mt == "multipart/form-data" {
		err = r.ParseMultipartForm(maxBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return pkgerrors.NewValidationError("body", nil, "request body is not a valid form")
	}
	return nil
}

// fail writes err, answering oversized bodies with 413.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.PayloadTooLarge(w, "request body exceeds the upload limit")
		return
	}
	response.Err(w, r, err)
}
