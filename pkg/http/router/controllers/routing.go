package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	helper "github.com/floodsafe/routing/pkg/http/router/routerhelper"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const defaultRadiusMeters = 15000

type routingAPI struct {
	routingService RoutingService
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/planSafeRoute", api.planSafeRoute)
	group.GET("/assessRisk", api.assessRisk)
	group.GET("/stats", api.stats)
}

func (api *routingAPI) planSafeRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request planSafeRouteRequest
		err     error
	)

	query := r.URL.Query()

	request.Area = query.Get("area")
	if request.Area == "" {
		request.OriginLat, err = strconv.ParseFloat(query.Get("origin_lat"), 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("origin_lat is required and must be a valid float when area is not set"))
			return
		}
		request.OriginLon, err = strconv.ParseFloat(query.Get("origin_lon"), 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("origin_lon is required and must be a valid float when area is not set"))
			return
		}
	}

	request.Province = query.Get("province")

	request.RadiusMeters = defaultRadiusMeters
	if radius := query.Get("radius_meters"); radius != "" {
		request.RadiusMeters, err = strconv.Atoi(radius)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("radius_meters must be a valid int"))
			return
		}
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	result, origin, err := api.routingService.PlanSafeRoute(r.Context(), request.OriginLat, request.OriginLon,
		request.Area, request.Province, request.RadiusMeters)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPlanSafeRouteResponse(origin, result)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) assessRisk(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request assessRiskRequest
		err     error
	)

	query := r.URL.Query()

	request.Lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	request.Lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
	request.Province = query.Get("province")

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	reading, err := api.routingService.AssessRisk(r.Context(), request.Lat, request.Lon, request.Province)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewAssessRiskResponse(request.Lat, request.Lon, reading)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) stats(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewStatsResponse(api.routingService.Stats())}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
