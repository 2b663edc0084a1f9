package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
	"github.com/lintang-b-s/isochronex/pkg/kv"
	"github.com/lintang-b-s/isochronex/pkg/server/rest/service"
	"github.com/paulmach/orb"
)

const (
	defaultNearRadiusKm = 1.0
)

type IsochroneService interface {
	Isochrones(ctx context.Context, q service.IsochroneQuery) ([]isochrone.Result, error)
	StoredIsochrones(ctx context.Context, originID string) ([]kv.Record, error)
	StoredIsochronesNear(ctx context.Context, lat, lon, radiusKm float64) ([]kv.Record, error)
}

type IsochroneHandler struct {
	svc      IsochroneService
	m        *Metrics
	validate *validator.Validate
	trans    ut.Translator
}

func IsochroneRouter(r *chi.Mux, svc IsochroneService, m *Metrics) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	validate := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &IsochroneHandler{svc: svc, m: m, validate: validate, trans: trans}

	r.Group(func(r chi.Router) {
		r.Route("/api/isochrones", func(r chi.Router) {
			r.Post("/", handler.Isochrones)
			r.Get("/near", handler.StoredIsochronesNear)
			r.Get("/{originID}", handler.StoredIsochrones)
		})
	})
}

// IsochroneRequest model info
//
//	@Description	request body for walking isochrones around one origin
type IsochroneRequest struct {
	OriginID       string    `json:"origin_id" validate:"omitempty,max=128,excludesall=/"`
	OriginName     string    `json:"origin_name" validate:"max=256"`
	Category       string    `json:"primary_category" validate:"max=128"`
	Lat            *float64  `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon            *float64  `json:"lon" validate:"required,gte=-180,lte=180"`
	Minutes        []float64 `json:"minutes" validate:"required,min=1,max=12,dive,gt=0,lte=180"`
	Strategy       string    `json:"strategy" validate:"omitempty,oneof=edge_buffer_union concave_hull"`
	BufferMeters   *float64  `json:"buffer_m" validate:"omitempty,gt=0,lte=500"`
	HullRatio      *float64  `json:"hull_ratio" validate:"omitempty,gte=0,lte=1"`
	FallbackRadius *float64  `json:"fallback_radius_m" validate:"omitempty,gt=0,lte=1000"`
	SimplifyMeters *float64  `json:"simplify_m" validate:"omitempty,gte=0,lte=100"`
	H3Resolution   int       `json:"h3_resolution" validate:"omitempty,gte=0,lte=12"`
	Save           bool      `json:"save"`
}

func (s *IsochroneRequest) Bind(r *http.Request) error {
	if s.Save && s.OriginID == "" {
		return errors.New("origin_id is required to save isochrones")
	}
	return nil
}

func (s *IsochroneRequest) query() (service.IsochroneQuery, error) {
	strategy := isochrone.EdgeBufferUnion
	if s.Strategy != "" {
		var err error
		strategy, err = isochrone.ParseStrategy(s.Strategy)
		if err != nil {
			return service.IsochroneQuery{}, err
		}
	}

	params := isochrone.DefaultParams(strategy)
	if s.BufferMeters != nil {
		params.BufferMeters = *s.BufferMeters
	}
	if s.HullRatio != nil {
		params.HullRatio = *s.HullRatio
	}
	if s.FallbackRadius != nil {
		params.FallbackRadius = *s.FallbackRadius
	}
	if s.SimplifyMeters != nil {
		params.SimplifyMeters = *s.SimplifyMeters
	}

	return service.IsochroneQuery{
		OriginID:       s.OriginID,
		OriginName:     s.OriginName,
		OriginCategory: s.Category,
		Origin:         orb.Point{*s.Lon, *s.Lat},
		Minutes:        s.Minutes,
		Strategy:       strategy,
		Params:         params,
		Save:           s.Save,
	}, nil
}

// Isochrones
//
//	@Summary		walking isochrones around one origin
//	@Description	snap the origin to the street graph, expand it by travel time and turn every reachable subgraph into a polygon (edge_buffer_union or concave_hull)
//	@Tags			isochrones
//	@Param			body	body	IsochroneRequest	true	"request body isochrone"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/isochrones [post]
//	@Success		200	{object}	IsochroneResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *IsochroneHandler) Isochrones(w http.ResponseWriter, r *http.Request) {
	data := &IsochroneRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := h.validate.Struct(*data); err != nil {
		render.Render(w, r, ErrValidation(err, translateError(err, h.trans)))
		return
	}

	q, err := data.query()
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	results, err := h.svc.Isochrones(r.Context(), q)
	if err != nil {
		RenderErrorResponse(w, r, err)
		return
	}

	features := make([]IsochroneFeature, 0, len(results))
	for _, res := range results {
		if h.m != nil {
			h.m.IsochroneCount.WithLabelValues(res.Strategy.String(), strconv.FormatBool(res.Fallback)).Inc()
			h.m.ReachableNodes.Observe(float64(res.ReachableNodes))
		}
		features = append(features, RenderIsochroneFeature(q, res, data.H3Resolution))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewIsochroneResponse(features))
}

// StoredIsochrones
//
//	@Summary		stored isochrones of one origin
//	@Tags			isochrones
//	@Param			originID	path	string	true	"origin id"
//	@Produce		application/json
//	@Router			/isochrones/{originID} [get]
//	@Success		200	{object}	IsochroneResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *IsochroneHandler) StoredIsochrones(w http.ResponseWriter, r *http.Request) {
	originID := chi.URLParam(r, "originID")

	recs, err := h.svc.StoredIsochrones(r.Context(), originID)
	if err != nil {
		RenderErrorResponse(w, r, err)
		return
	}
	h.renderStored(w, r, recs)
}

// NearRequest model info
//
//	@Description	query parameters of the stored isochrone neighbourhood search
type NearRequest struct {
	Lat      float64 `validate:"gte=-90,lte=90"`
	Lon      float64 `validate:"gte=-180,lte=180"`
	RadiusKm float64 `validate:"gt=0,lte=50"`
}

// StoredIsochronesNear
//
//	@Summary		stored isochrones whose origin lies near a point
//	@Tags			isochrones
//	@Param			lat			query	number	true	"latitude"
//	@Param			lon			query	number	true	"longitude"
//	@Param			radius_km	query	number	false	"search radius in km, default 1"
//	@Produce		application/json
//	@Router			/isochrones/near [get]
//	@Success		200	{object}	IsochroneResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *IsochroneHandler) StoredIsochronesNear(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(errors.New("lat must be a number")))
		return
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(errors.New("lon must be a number")))
		return
	}
	radius := defaultNearRadiusKm
	if v := query.Get("radius_km"); v != "" {
		radius, err = strconv.ParseFloat(v, 64)
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(errors.New("radius_km must be a number")))
			return
		}
	}

	data := NearRequest{Lat: lat, Lon: lon, RadiusKm: radius}
	if err := h.validate.Struct(data); err != nil {
		render.Render(w, r, ErrValidation(err, translateError(err, h.trans)))
		return
	}

	recs, err := h.svc.StoredIsochronesNear(r.Context(), data.Lat, data.Lon, data.RadiusKm)
	if err != nil {
		RenderErrorResponse(w, r, err)
		return
	}
	h.renderStored(w, r, recs)
}

func (h *IsochroneHandler) renderStored(w http.ResponseWriter, r *http.Request, recs []kv.Record) {
	features := make([]IsochroneFeature, 0, len(recs))
	for _, rec := range recs {
		f, err := RenderStoredFeature(rec)
		if err != nil {
			render.Render(w, r, ErrInternalServerErrorRend(errors.New("internal server error")))
			return
		}
		features = append(features, f)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewIsochroneResponse(features))
}
