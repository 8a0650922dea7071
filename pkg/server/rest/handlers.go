package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/golang/geo/r2"
	"github.com/lintang-b-s/roadgenx/pkg/engine/field"
	"github.com/lintang-b-s/roadgenx/pkg/engine/roadgen"
	"github.com/lintang-b-s/roadgenx/pkg/guidance"
	"github.com/lintang-b-s/roadgenx/pkg/server/rest/service"
	"github.com/lintang-b-s/roadgenx/pkg/snap"
)

type RoadGenService interface {
	Generate(ctx context.Context, p service.GenerateParam) (service.GenerateResult, error)
	GenerateBatch(ctx context.Context, params []service.GenerateParam) []service.BatchResult
	NetworkStats(ctx context.Context) (roadgen.Stats, error)
	NearestRoads(ctx context.Context, p r2.Point, radius float64, k int) ([]snap.RoadHit, error)
	ShortestPath(ctx context.Context, from, to r2.Point) ([]r2.Point, float64, []guidance.DrivingInstruction, error)
	DistanceMatrix(ctx context.Context, points []r2.Point) ([][]float64, error)
}

type RoadGenHandler struct {
	svc RoadGenService
	m   *Metrics
}

func RoadGenRouter(r *chi.Mux, svc RoadGenService, m *Metrics) {
	handler := &RoadGenHandler{svc, m}

	r.Group(func(r chi.Router) {
		r.Route("/api/roadgen", func(r chi.Router) {
			r.Post("/generate", handler.Generate)
			r.Post("/generate-batch", handler.GenerateBatch)
			r.Get("/stats", handler.NetworkStats)
			r.Post("/nearest-road", handler.NearestRoads)
			r.Post("/shortest-path", handler.ShortestPath)
			r.Post("/distance-matrix", handler.DistanceMatrix)
		})
	})
}

var (
	validate = validator.New()
	trans    ut.Translator
)

func init() {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
}

// bindAndValidate. decode the body into data and run the validate tags. renders the error response on failure.
func bindAndValidate(w http.ResponseWriter, r *http.Request, data render.Binder) bool {
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return false
	}
	if err := validate.Struct(data); err != nil {
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return false
	}
	return true
}

// Point model info
//
//	@Description	planar point
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) toR2() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

func newPoint(p r2.Point) Point {
	return Point{X: p.X, Y: p.Y}
}

type Bounds struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Basis model info
//
//	@Description	one source of the ortho basis field. rotation in radians, grid only.
type Basis struct {
	Type       string  `json:"type" validate:"required,oneof=grid radial"`
	Center     Point   `json:"center"`
	Importance float64 `json:"importance" validate:"gte=0"`
	Rotation   float64 `json:"rotation"`
}

func (b Basis) toOrthoBasis() field.RoadOrthoBasis {
	if b.Type == "radial" {
		return field.NewRadialOrthoBasis(b.Center.toR2(), b.Importance)
	}
	return field.NewGridOrthoBasis(b.Center.toR2(), b.Importance, b.Rotation)
}

// GeneratorConfig model info
//
//	@Description	generator tuning, zero fields keep their default
type GeneratorConfig struct {
	RoadStepInterval float64 `json:"road_step_interval" validate:"gte=0"`
	SegmentMinLength float64 `json:"segment_min_length" validate:"gte=0"`
	MergeRadius      float64 `json:"merge_radius" validate:"gte=0"`
	MaxIterations    int     `json:"max_iterations" validate:"gte=0"`
	MaxRoadPoints    int     `json:"max_road_points" validate:"gte=0"`
}

func (c *GeneratorConfig) toConfig() roadgen.Config {
	cfg := roadgen.DefaultConfig()
	if c == nil {
		return cfg
	}
	if c.RoadStepInterval > 0 {
		cfg.RoadStepInterval = c.RoadStepInterval
	}
	if c.SegmentMinLength > 0 {
		cfg.SegmentMinLength = c.SegmentMinLength
	}
	if c.MergeRadius > 0 {
		cfg.MergeRadius = c.MergeRadius
	}
	if c.MaxIterations > 0 {
		cfg.MaxIterations = c.MaxIterations
	}
	if c.MaxRoadPoints > 0 {
		cfg.MaxRoadPoints = c.MaxRoadPoints
	}
	return cfg
}

// GenerateRequest model info
//
//	@Description	request body for generating a road network
type GenerateRequest struct {
	Seed   Point            `json:"seed"`
	Bounds Bounds           `json:"bounds"`
	Bases  []Basis          `json:"bases" validate:"required,min=1,max=16,dive"`
	Config *GeneratorConfig `json:"config,omitempty"`
}

func (s *GenerateRequest) Bind(r *http.Request) error {
	if s.Bounds.Max.X <= s.Bounds.Min.X || s.Bounds.Max.Y <= s.Bounds.Min.Y {
		return errors.New("bounds max must be greater than bounds min")
	}
	return nil
}

func (s *GenerateRequest) toParam() service.GenerateParam {
	bases := make([]field.RoadOrthoBasis, 0, len(s.Bases))
	for _, b := range s.Bases {
		bases = append(bases, b.toOrthoBasis())
	}
	return service.GenerateParam{
		Seed:   s.Seed.toR2(),
		Bounds: r2.RectFromPoints(s.Bounds.Min.toR2(), s.Bounds.Max.toR2()),
		Bases:  bases,
		Config: s.Config.toConfig(),
	}
}

// GenerateResponse model info
//
//	@Description	statistics of the generated road network
type GenerateResponse struct {
	Stats      roadgen.Stats `json:"stats"`
	Truncated  bool          `json:"truncated"`
	Components int           `json:"components"`
}

// Generate
//
//	@Summary		generate a road network by tracing streamlines of the ortho basis field from a seed point
//	@Tags			roadgen
//	@Param			body	body	GenerateRequest	true	"request body road network generation"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/roadgen/generate [post]
//	@Success		200	{object}	GenerateResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		504	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *RoadGenHandler) Generate(w http.ResponseWriter, r *http.Request) {
	data := &GenerateRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}

	res, err := h.svc.Generate(r.Context(), data.toParam())
	h.m.ObserveGeneration(res, err)
	if err != nil {
		render.Render(w, r, ErrServiceRend(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, GenerateResponse{Stats: res.Stats, Truncated: res.Truncated, Components: res.Components})
}

// GenerateBatchRequest model info
//
//	@Description	request body for generating independent road networks concurrently
type GenerateBatchRequest struct {
	Networks []*GenerateRequest `json:"networks" validate:"required,min=1,max=64,dive"`
}

func (s *GenerateBatchRequest) Bind(r *http.Request) error {
	for i, n := range s.Networks {
		if n == nil {
			return fmt.Errorf("network %d: empty request", i)
		}
		if err := n.Bind(r); err != nil {
			return fmt.Errorf("network %d: %w", i, err)
		}
	}
	return nil
}

type BatchItemResponse struct {
	Stats      *roadgen.Stats `json:"stats,omitempty"`
	Truncated  bool           `json:"truncated"`
	Components int            `json:"components"`
	Error      string         `json:"error,omitempty"`
}

type GenerateBatchResponse struct {
	Results []BatchItemResponse `json:"results"`
}

func (h *RoadGenHandler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	data := &GenerateBatchRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}

	params := make([]service.GenerateParam, 0, len(data.Networks))
	for _, n := range data.Networks {
		params = append(params, n.toParam())
	}

	resp := GenerateBatchResponse{Results: make([]BatchItemResponse, 0, len(params))}
	for _, res := range h.svc.GenerateBatch(r.Context(), params) {
		h.m.ObserveGeneration(res.GenerateResult, res.Err)
		if res.Err != nil {
			resp.Results = append(resp.Results, BatchItemResponse{Error: res.Err.Error()})
			continue
		}
		stats := res.Stats
		resp.Results = append(resp.Results, BatchItemResponse{Stats: &stats, Truncated: res.Truncated,
			Components: res.Components})
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func (h *RoadGenHandler) NetworkStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.NetworkStats(r.Context())
	if err != nil {
		render.Render(w, r, ErrServiceRend(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, stats)
}

// NearestRoadRequest model info
//
//	@Description	request body for nearest road queries. k=0 returns every road within the radius
type NearestRoadRequest struct {
	Point  Point   `json:"point"`
	Radius float64 `json:"radius" validate:"required,gt=0"`
	K      int     `json:"k" validate:"gte=0"`
}

func (s *NearestRoadRequest) Bind(r *http.Request) error {
	return nil
}

type RoadHitResponse struct {
	Position     Point   `json:"position"`
	Distance     float64 `json:"distance"`
	SegmentIndex int     `json:"segment_index"`
	RoadStart    Point   `json:"road_start"`
	RoadEnd      Point   `json:"road_end"`
	RoadLength   float64 `json:"road_length"`
}

type NearestRoadResponse struct {
	Roads []RoadHitResponse `json:"roads"`
}

func RenderNearestRoadResponse(hits []snap.RoadHit) *NearestRoadResponse {
	roads := make([]RoadHitResponse, 0, len(hits))
	for _, h := range hits {
		roads = append(roads, RoadHitResponse{
			Position:     newPoint(h.Position),
			Distance:     h.Distance,
			SegmentIndex: h.SegmentIndex,
			RoadStart:    newPoint(h.Road.Points[0].Pos),
			RoadEnd:      newPoint(h.Road.Last().Pos),
			RoadLength:   h.Road.Length(),
		})
	}
	return &NearestRoadResponse{Roads: roads}
}

func (h *RoadGenHandler) NearestRoads(w http.ResponseWriter, r *http.Request) {
	data := &NearestRoadRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}

	hits, err := h.svc.NearestRoads(r.Context(), data.Point.toR2(), data.Radius, data.K)
	if err != nil {
		render.Render(w, r, ErrServiceRend(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderNearestRoadResponse(hits))
}

type ShortestPathRequest struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

func (s *ShortestPathRequest) Bind(r *http.Request) error {
	return nil
}

type InstructionResponse struct {
	Instruction string  `json:"instruction"`
	Point       Point   `json:"point"`
	Distance    float64 `json:"distance"`
}

type ShortestPathResponse struct {
	Path         []Point               `json:"path"`
	Distance     float64               `json:"distance"`
	Instructions []InstructionResponse `json:"instructions"`
}

func (h *RoadGenHandler) ShortestPath(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}

	path, dist, instructions, err := h.svc.ShortestPath(r.Context(), data.From.toR2(), data.To.toR2())
	if err != nil {
		render.Render(w, r, ErrServiceRend(err))
		return
	}

	resp := ShortestPathResponse{
		Path:         make([]Point, 0, len(path)),
		Distance:     dist,
		Instructions: make([]InstructionResponse, 0, len(instructions)),
	}
	for _, p := range path {
		resp.Path = append(resp.Path, newPoint(p))
	}
	for _, ins := range instructions {
		resp.Instructions = append(resp.Instructions, InstructionResponse{
			Instruction: ins.Instruction,
			Point:       newPoint(ins.Point),
			Distance:    ins.Distance,
		})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

type DistanceMatrixRequest struct {
	Points []Point `json:"points" validate:"required,min=1,max=50"`
}

func (s *DistanceMatrixRequest) Bind(r *http.Request) error {
	return nil
}

type DistanceMatrixResponse struct {
	// Matrix. Matrix[i][j] is the path length from point i to point j, -1 if there is no path.
	Matrix [][]float64 `json:"matrix"`
}

func (h *RoadGenHandler) DistanceMatrix(w http.ResponseWriter, r *http.Request) {
	data := &DistanceMatrixRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}

	points := make([]r2.Point, 0, len(data.Points))
	for _, p := range data.Points {
		points = append(points, p.toR2())
	}
	matrix, err := h.svc.DistanceMatrix(r.Context(), points)
	if err != nil {
		render.Render(w, r, ErrServiceRend(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, DistanceMatrixResponse{Matrix: matrix})
}
