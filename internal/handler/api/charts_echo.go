package api

import (
	"errors"
	"io"
	"mime/multipart"
	"time"

	"MarketLens/internal/domain/models"
	"MarketLens/internal/service/notify"
	"MarketLens/internal/service/ratelimit"
	"MarketLens/internal/service/store"
	"MarketLens/internal/usecase"
	xhttp "MarketLens/pkg/http"
	"MarketLens/pkg/http/middleware"
	xlogger "MarketLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Delimiters accepted on the ingest endpoint, by form value.
var delimiters = map[string]rune{
	"":          ',',
	"comma":     ',',
	"semicolon": ';',
	"tab":       '\t',
	"pipe":      '|',
}

// IngestLimits bounds what one upload request may carry.
type IngestLimits struct {
	MaxFiles     int
	MaxFileBytes int64
	RateCapacity float64
	RateRefill   float64
}

// ChartsEchoHandler exposes the ingestion and query engine over HTTP.
type ChartsEchoHandler struct {
	logger   *xlogger.Logger
	ingestor *usecase.Ingestor
	engine   *usecase.QueryEngine
	store    *store.Store
	hub      *notify.Hub
	limiter  *ratelimit.Limiter
	limits   IngestLimits
}

func NewChartsEchoHandler(
	logger *xlogger.Logger,
	ingestor *usecase.Ingestor,
	engine *usecase.QueryEngine,
	st *store.Store,
	hub *notify.Hub,
	limits IngestLimits,
) *ChartsEchoHandler {
	return &ChartsEchoHandler{
		logger:   logger,
		ingestor: ingestor,
		engine:   engine,
		store:    st,
		hub:      hub,
		limiter:  ratelimit.New(),
		limits:   limits,
	}
}

func (h *ChartsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.Use(middleware.Metrics(h.logger, time.Second))

	g := e.Group("/api")
	g.POST("/ingest", h.Ingest)
	g.GET("/selectors", h.Selectors)
	g.GET("/query", h.Query)
	g.PUT("/selection", h.Selection)
	g.GET("/series", h.Series)

	e.GET("/ws", h.WS)
	e.GET("/healthz", h.Health)
}

// Ingest accepts a multipart batch of delimited files and replaces the
// dataset wholesale. One malformed file rejects the whole batch.
func (h *ChartsEchoHandler) Ingest(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), h.limits.RateCapacity, h.limits.RateRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many uploads, slow down"))
	}

	delim, ok := delimiters[c.FormValue("delimiter")]
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unknown delimiter %q", c.FormValue("delimiter")))
	}

	form, err := c.MultipartForm()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("multipart form required").WithError(err))
	}
	files := form.File["files"]
	if len(files) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no files uploaded"))
	}
	if len(files) > h.limits.MaxFiles {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("too many files: %d > %d", len(files), h.limits.MaxFiles))
	}

	sources := make([]usecase.Source, 0, len(files))
	for _, fh := range files {
		if fh.Size > h.limits.MaxFileBytes {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("file %q exceeds %d bytes", fh.Filename, h.limits.MaxFileBytes))
		}
		data, err := readUpload(fh)
		if err != nil {
			h.logger.Error("upload read failed", xlogger.Error(err), xlogger.String("file", fh.Filename))
			return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("read %q", fh.Filename))
		}
		sources = append(sources, usecase.Source{Name: fh.Filename, Data: data})
	}

	res, err := h.ingestor.Ingest(c.Request().Context(), sources, delim)
	if err != nil {
		var srcErr *usecase.SourceError
		if errors.As(err, &srcErr) {
			return xhttp.AppErrorResponse(c, xhttp.NewAppError(
				"ERR_MALFORMED_INPUT", srcErr.Source, srcErr.Error(), 400,
			).WithError(srcErr.Err))
		}
		h.logger.Error("ingest failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	return xhttp.SuccessResponse(c, res)
}

// Selectors returns the product/day options computed at ingest time.
func (h *ChartsEchoHandler) Selectors(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.Options(h.store.Snapshot()))
}

// Query returns the filtered, time-sliced view for the requested selection.
// Missing parameters fall back to the stored selection.
func (h *ChartsEchoHandler) Query(c echo.Context) error {
	req := &models.QueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sel := h.resolveSelection(req.Product, req.Day, req.Fraction)
	view := h.engine.Query(c.Request().Context(), h.store.Snapshot(), sel)
	return xhttp.SuccessResponse(c, view)
}

// Selection replaces stored selection fields, notifies connected UIs, and
// returns the recomputed view.
func (h *ChartsEchoHandler) Selection(c echo.Context) error {
	req := &models.SelectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sel := h.store.UpdateSelection(*req)
	h.hub.Broadcast(notify.EventSelectionChanged, sel)

	view := h.engine.Query(c.Request().Context(), h.store.Snapshot(), sel)
	return xhttp.SuccessResponse(c, view)
}

// Series returns one named numeric projection of the selected view. An
// entirely absent series is reported as not found so the renderer can skip
// the trace.
func (h *ChartsEchoHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sel := h.resolveSelection(req.Product, req.Day, req.Fraction)
	view := h.engine.Query(c.Request().Context(), h.store.Snapshot(), sel)

	series, present := h.engine.Series(view, req.Collection, req.Field)
	if !present {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("series %q has no values in %s", req.Field, req.Collection))
	}
	return xhttp.SuccessResponse(c, series)
}

// WS upgrades to the event socket.
func (h *ChartsEchoHandler) WS(c echo.Context) error {
	return h.hub.Serve(c.Response(), c.Request())
}

// Health reports liveness and dataset shape.
func (h *ChartsEchoHandler) Health(c echo.Context) error {
	ds := h.store.Snapshot()
	health := models.Health{
		Status:       "ok",
		PriceRows:    len(ds.Prices),
		MarketTrades: len(ds.MarketTrades),
		OwnTrades:    len(ds.OwnTrades),
	}
	if ds.Rows() > 0 {
		health.LoadedAt = ds.LoadedAt.Format(time.RFC3339)
	}
	return xhttp.SuccessResponse(c, health)
}

func (h *ChartsEchoHandler) resolveSelection(product, day *string, fraction *float64) models.Selection {
	sel := h.store.Selection()
	if product != nil {
		sel.Product = *product
	}
	if day != nil {
		sel.Day = *day
	}
	if fraction != nil {
		sel.Fraction = *fraction
	}
	return sel
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
