package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"nasapuff"
	"nasapuff/pkg/consts"
	"nasapuff/pkg/repository"
	srvc "nasapuff/pkg/service"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

type Handler struct {
	services *srvc.Service
}

func NewHandler(services *srvc.Service) *Handler {
	return &Handler{services}
}

func (h *Handler) InitRoutes() *mux.Router {

	router := mux.NewRouter()

	// the page and /v1/picday read the current image, /v1/stored reads and prunes the history table
	router.HandleFunc("/", h.Page).Methods(http.MethodGet)
	router.HandleFunc("/v1/picday", h.TodaysPicture).Methods(http.MethodGet)
	router.HandleFunc("/v1/stored", h.PicturesFromStorage).Methods(http.MethodGet)
	router.HandleFunc("/v1/stored", h.DeletePicture).Methods(http.MethodDelete)

	return router
}

// Page renders the current image. Before the first refresh the record is fetched for
// this request only, and a failed fetch ends the request with a 500.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	md, err := h.services.Current(ctx)
	if err != nil {
		logrus.Errorf("Error while fetching picture: %q", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{Apod: md}); err != nil {
		logrus.Errorf("Error while rendering page: %q", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// TodaysPicture is the JSON view of the page.
func (h *Handler) TodaysPicture(w http.ResponseWriter, r *http.Request) {

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	md, err := h.services.Current(ctx)
	if err != nil {
		logrus.Errorf("Error while fetching picture: %q", err)
		sendResponse(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	sendResponse(w, http.StatusOK, "ok", []string{md.URL})
}

// PicturesFromStorage lists history URLs for ?date= or ?start_date=&end_date=.
func (h *Handler) PicturesFromStorage(w http.ResponseWriter, r *http.Request) {

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	date := getTimeParam(r, consts.ParamDate)
	start, end := getTimeParam(r, consts.ParamStartDate), getTimeParam(r, consts.ParamEndDate)

	var (
		data []nasapuff.ApodModel
		err  error
	)

	switch {
	case !date.IsZero():
		var model *nasapuff.ApodModel
		model, err = h.services.GetByDate(ctx, date)
		if err == nil && model == nil {
			sendResponse(w, http.StatusNotFound, "not found", nil)
			return
		}
		if model != nil {
			data = append(data, *model)
		}

	case !start.IsZero() && !end.IsZero():
		if end.Before(start) {
			sendResponse(w, http.StatusBadRequest, "end_date is before start_date", nil)
			return
		}
		data, err = h.services.GetByDateRange(ctx, start, end)

	default:
		sendResponse(w, http.StatusBadRequest, "invalid request params", nil)
		return
	}

	if err != nil {
		if errors.Is(err, repository.ErrHistoryDisabled) {
			sendResponse(w, http.StatusServiceUnavailable, err.Error(), nil)
			return
		}
		logrus.Errorf("db err %q", err)
		sendResponse(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	list := make([]string, 0, len(data))
	for _, v := range data {
		list = append(list, v.URL)
	}

	sendResponse(w, http.StatusOK, "ok", list)
}

// DeletePicture removes the history entry for ?date=.
func (h *Handler) DeletePicture(w http.ResponseWriter, r *http.Request) {

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	date := getTimeParam(r, consts.ParamDate)
	if date.IsZero() {
		sendResponse(w, http.StatusBadRequest, "invalid request params", nil)
		return
	}

	n, err := h.services.DeleteByDate(ctx, date)
	switch {
	case errors.Is(err, repository.ErrHistoryDisabled):
		sendResponse(w, http.StatusServiceUnavailable, err.Error(), nil)
	case err != nil:
		logrus.Errorf("db err %q", err)
		sendResponse(w, http.StatusInternalServerError, err.Error(), nil)
	case n == 0:
		sendResponse(w, http.StatusNotFound, "not found", nil)
	default:
		sendResponse(w, http.StatusOK, "deleted", nil)
	}
}
