package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/floodsafe/routing/pkg/engine"
	"github.com/floodsafe/routing/pkg/util"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type envelope map[string]interface{}

func (api *routingAPI) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(js)

	return nil
}

func (api *routingAPI) errorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := errorResponse{}
	resp.Error.Code = http.StatusText(status)
	resp.Error.Message = message

	if err := api.writeJSON(w, status, envelope{"error": resp.Error}, nil); err != nil {
		api.log.Error("write error response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *routingAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorMessage(w, r, http.StatusBadRequest, err.Error())
}

func (api *routingAPI) NotFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorMessage(w, r, http.StatusNotFound, err.Error())
}

func (api *routingAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("server error", zap.String("path", r.URL.Path), zap.Error(err))
	api.errorMessage(w, r, http.StatusInternalServerError, util.MessageInternalServerError)
}

// getStatusCode maps service errors to http responses.
func (api *routingAPI) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrNoFacilities):
		api.NotFoundResponse(w, r, err)
	case errors.Is(err, engine.ErrNoRoutableCandidate):
		api.errorMessage(w, r, http.StatusBadGateway, err.Error())
	default:
		var domainErr *util.Error
		if errors.As(err, &domainErr) {
			switch domainErr.Code() {
			case util.ErrBadParamInput:
				api.BadRequestResponse(w, r, err)
				return
			case util.ErrNotFound:
				api.NotFoundResponse(w, r, err)
				return
			}
		}
		api.ServerErrorResponse(w, r, err)
	}
}

func translateError(err error, trans ut.Translator) []error {
	if err == nil {
		return nil
	}

	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}
