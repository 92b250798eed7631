package handler

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"nasapuff"
	"nasapuff/pkg/consts"

	"github.com/sirupsen/logrus"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type pageData struct {
	Apod *nasapuff.ApodModel
}

// getTimeParam returns the zero time when the parameter is missing or malformed.
func getTimeParam(r *http.Request, name string) time.Time {

	if r == nil {
		return time.Time{}
	}

	t, err := time.Parse(consts.TimeFormat, r.URL.Query().Get(name))
	if err != nil {
		return time.Time{}
	}

	return t
}

// Response is the body of every /v1 endpoint.
type Response struct {
	Message string   `json:"message"`
	Urls    []string `json:"urls"`
}

func sendResponse(w http.ResponseWriter, status int, msg string, urls []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Response{Message: msg, Urls: urls}); err != nil {
		logrus.Errorf("error while sending response %q", err)
	}
}
