package api

import (
	"context"
	"errors"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"TrendLens/internal/domain/models"
	domrepo "TrendLens/internal/domain/repository"
	"TrendLens/internal/service/ratelimit"
	"TrendLens/internal/usecase"
	xhttp "TrendLens/pkg/http"
	xlogger "TrendLens/pkg/logger"
	"TrendLens/pkg/util"
)

const (
	msgNotJSON      = "Invalid request: Content-Type must be application/json"
	msgBadTicker    = "Ticker symbol must be a non-empty string."
	msgRateLimited  = "Too many requests. Please slow down."
	msgNoRunHistory = "Run history is not available."
)

// PredictHandler serves the prediction endpoint consumed by the dashboard.
type PredictHandler struct {
	logger  *xlogger.Logger
	uc      *usecase.PredictorUseCase
	limiter *ratelimit.Limiter
	runs    domrepo.RunLister
}

// NewPredictHandler builds the handler. limiter and runs may be nil.
func NewPredictHandler(logger *xlogger.Logger, uc *usecase.PredictorUseCase, limiter *ratelimit.Limiter, runs domrepo.RunLister) *PredictHandler {
	return &PredictHandler{logger: logger, uc: uc, limiter: limiter, runs: runs}
}

func (h *PredictHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/predict", h.Predict)
	e.GET("/runs", h.Runs)
}

// Predict handles POST /predict.
func (h *PredictHandler) Predict(c echo.Context) error {
	if !isJSON(c.Request().Header.Get(echo.HeaderContentType)) {
		return xhttp.AppErrorResponse(c, xhttp.UnsupportedMediaTypeError(msgNotJSON))
	}
	if !h.limiter.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError(msgRateLimited))
	}

	req := &models.PredictHTTPRequest{}
	if verrs := xhttp.ReadAndValidateRequest(c, req); verrs != nil {
		return xhttp.AppErrorResponse(c, requestError(verrs))
	}

	res, err := h.predict(c.Request().Context(), req)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.JSONResponse(c, http.StatusOK, res)
}

// predict runs a validated request. Client-facing failures are *xhttp.AppError;
// anything else is an internal error.
func (h *PredictHandler) predict(ctx context.Context, req *models.PredictHTTPRequest) (*models.PredictionResponse, error) {
	ticker := util.NormalizeTicker(req.Ticker)
	if ticker == "" {
		return nil, xhttp.BadRequestError(msgBadTicker)
	}

	start, _ := util.ParseDate(req.Start)
	end, _ := util.ParseDate(req.End)
	res, err := h.uc.Predict(ctx, usecase.PredictParams{
		Ticker:     ticker,
		Start:      start,
		End:        end,
		Interval:   req.Interval,
		TrainRatio: req.TrainRatio,
	})
	if err != nil {
		return nil, h.predictError(ticker, err)
	}
	return res, nil
}

func (h *PredictHandler) predictError(ticker string, err error) error {
	var terr *models.TickerError
	switch {
	case errors.As(err, &terr):
		h.logger.Warn("prediction unavailable",
			xlogger.String("ticker", ticker),
			xlogger.String("reason", terr.Error()),
		)
		return xhttp.NotFoundError(terr.Error()).WithError(err)
	case errors.Is(err, usecase.ErrInvalidWindow):
		return xhttp.BadRequestError("start must be before end")
	default:
		h.logger.Error("predict usecase error",
			xlogger.String("ticker", ticker),
			xlogger.Error(err),
		)
		return err
	}
}

func requestError(verrs []xhttp.ValidationError) *xhttp.AppError {
	if xhttp.FieldFailed(verrs, "ticker") || bindFailed(verrs) {
		return xhttp.BadRequestError(msgBadTicker)
	}
	return xhttp.BadRequestError(xhttp.JoinMessages(verrs))
}

// Runs handles GET /runs, listing recently served predictions.
func (h *PredictHandler) Runs(c echo.Context) error {
	if h.runs == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(msgNoRunHistory))
	}

	req := &models.RunsRequest{}
	if verrs := xhttp.ReadAndValidateRequest(c, req); verrs != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(xhttp.JoinMessages(verrs)))
	}

	runs, err := h.runs.RecentRuns(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("list runs error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if runs == nil {
		runs = []models.PredictionRun{}
	}
	return xhttp.JSONResponse(c, http.StatusOK, map[string]interface{}{"runs": runs})
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == echo.MIMEApplicationJSON
}

func bindFailed(errs []xhttp.ValidationError) bool {
	for _, e := range errs {
		if e.Code == "ERR_BIND" || e.Code == "ERR_UNKNOWN" {
			return true
		}
	}
	return false
}
