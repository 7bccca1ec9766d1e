package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"relief-ops/config"
	"relief-ops/internal/dto"
	"relief-ops/internal/forecast"
	"relief-ops/pkg/predictionfeed"
)

const (
	modelKey = "forecast:model"

	// defaultConfidence used when a prediction carries no confidence
	defaultConfidence = 50.0
)

var (
	ErrNoPredictionFeed  = errors.New("prediction feed not configured")
	ErrEmptyPredictions  = errors.New("no usable predictions in input")
	ErrMissingXLSXHeader = errors.New("spreadsheet needs Region and Disaster Type columns")
)

// ModelStore durable key/value store for the trained regression model
type ModelStore interface {
	Put(key string, v interface{}) error
	Get(key string, dest interface{}) (bool, error)
	Delete(key string) error
}

// PredictionFeed external source of disaster predictions
type PredictionFeed interface {
	Fetch(ctx context.Context) ([]predictionfeed.Prediction, error)
}

// InventoryReader current inventory rows
type InventoryReader interface {
	Inventory(ctx context.Context) ([]forecast.InventoryUnit, error)
}

// ForecastService demand forecasting, supply matching and expiry scanning
// over the latest prediction batch and the live inventory.
type ForecastService interface {
	SetPredictions(ctx context.Context, req *dto.UploadPredictionsRequest) (*dto.PredictionBatchResponse, error)
	// ImportPredictions reads the first sheet of an xlsx workbook
	ImportPredictions(ctx context.Context, r io.Reader) (*dto.PredictionBatchResponse, error)
	RefreshFromFeed(ctx context.Context) (*dto.PredictionBatchResponse, error)
	Demand(ctx context.Context, req *dto.FilterRequest) (*dto.ForecastResponse, error)
	Match(ctx context.Context, req *dto.FilterRequest) (*dto.MatchResponse, error)
	// Expiry scans inventory; a nil days uses the configured threshold
	Expiry(ctx context.Context, days *int) (*dto.ExpiryResponse, error)
	// WarmUp loads the saved model or trains and saves a new one
	WarmUp(ctx context.Context) error
}

type forecastService struct {
	cfg         *config.ForecastConfig
	forecaster  *forecast.Forecaster
	predictions PredictionStore
	models      ModelStore     // may be nil
	feed        PredictionFeed // may be nil
	inventory   InventoryReader
	logger      *zap.Logger
	now         func() time.Time
}

// NewForecastService creates the forecasting service
func NewForecastService(
	cfg *config.ForecastConfig,
	predictions PredictionStore,
	models ModelStore,
	feed PredictionFeed,
	inventory InventoryReader,
	logger *zap.Logger,
) ForecastService {
	s := &forecastService{
		cfg:         cfg,
		predictions: predictions,
		models:      models,
		feed:        feed,
		inventory:   inventory,
		logger:      logger,
		now:         time.Now,
	}
	s.forecaster = forecast.NewForecaster(forecast.Options{
		RegionPopulations: cfg.RegionPopulations,
		DefaultPopulation: cfg.DefaultPopulation,
		TrainingSamples:   cfg.TrainingSamples,
		Seed:              cfg.Seed,
		MinR2:             cfg.MinR2,
		Now:               func() time.Time { return s.now() },
	})
	return s
}

// ════════════════════════════════════════════════════════════
// Model
// ════════════════════════════════════════════════════════════

func (s *forecastService) WarmUp(ctx context.Context) error {
	if s.models != nil {
		var saved forecast.Model
		ok, err := s.models.Get(modelKey, &saved)
		if err != nil {
			s.logger.Warn("read saved forecast model failed", zap.Error(err))
		}
		if ok {
			err := s.forecaster.SetModel(&saved)
			if err == nil {
				s.logger.Info("forecast model loaded",
					zap.Float64("r2", saved.R2), zap.Time("trained_at", saved.TrainedAt))
				return nil
			}
			s.logger.Warn("saved forecast model rejected, retraining", zap.Error(err))
			if err := s.models.Delete(modelKey); err != nil {
				s.logger.Warn("drop saved forecast model failed", zap.Error(err))
			}
		}
	}

	m, trained, err := s.forecaster.EnsureModel()
	if err != nil {
		s.logger.Error("train forecast model failed", zap.Error(err))
		return err
	}
	if trained {
		s.logger.Info("forecast model trained", zap.Float64("r2", m.R2), zap.Int("samples", m.Samples))
		if s.models != nil {
			if err := s.models.Put(modelKey, m); err != nil {
				s.logger.Warn("save forecast model failed", zap.Error(err))
			}
		}
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// Prediction batches
// ════════════════════════════════════════════════════════════

func (s *forecastService) SetPredictions(ctx context.Context, req *dto.UploadPredictionsRequest) (*dto.PredictionBatchResponse, error) {
	preds := make([]forecast.DisasterPrediction, 0, len(req.Predictions))
	for _, p := range req.Predictions {
		preds = append(preds, s.prediction(p.Region, p.Country, p.DisasterType, p.Year, p.Confidence))
	}
	return s.store(ctx, preds, "upload")
}

func (s *forecastService) ImportPredictions(ctx context.Context, r io.Reader) (*dto.PredictionBatchResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyPredictions
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	preds, err := s.predictionsFromRows(rows)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, preds, "import")
}

func (s *forecastService) RefreshFromFeed(ctx context.Context) (*dto.PredictionBatchResponse, error) {
	if s.feed == nil {
		return nil, ErrNoPredictionFeed
	}
	items, err := s.feed.Fetch(ctx)
	if err != nil {
		s.logger.Error("fetch prediction feed failed", zap.Error(err))
		return nil, err
	}
	preds := make([]forecast.DisasterPrediction, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Region) == "" || strings.TrimSpace(it.DisasterType) == "" {
			continue
		}
		preds = append(preds, s.prediction(it.Region, it.Country, it.DisasterType, it.Year, it.Confidence))
	}
	return s.store(ctx, preds, "feed")
}

func (s *forecastService) store(ctx context.Context, preds []forecast.DisasterPrediction, source string) (*dto.PredictionBatchResponse, error) {
	if len(preds) == 0 {
		return nil, ErrEmptyPredictions
	}
	batch := &PredictionBatch{Predictions: preds, Source: source, UpdatedAt: s.now().UTC()}
	if err := s.predictions.Save(ctx, batch); err != nil {
		s.logger.Error("save prediction batch failed", zap.String("source", source), zap.Error(err))
		return nil, err
	}
	s.logger.Info("prediction batch stored", zap.String("source", source), zap.Int("count", len(preds)))
	return &dto.PredictionBatchResponse{Count: len(preds), Source: source, UpdatedAt: batch.UpdatedAt}, nil
}

func (s *forecastService) prediction(region, country, disasterType string, year int, confidence *float64) forecast.DisasterPrediction {
	conf := defaultConfidence
	if confidence != nil {
		conf = *confidence
	}
	if year == 0 {
		year = s.now().Year()
	}
	return forecast.DisasterPrediction{
		Region:       strings.TrimSpace(region),
		Country:      strings.TrimSpace(country),
		DisasterType: strings.TrimSpace(disasterType),
		Year:         year,
		Confidence:   conf,
	}
}

// header aliases accepted in uploaded sheets, compared after headerKey
var xlsxHeaders = map[string][]string{
	"region":        {"region"},
	"country":       {"country"},
	"disaster_type": {"disastertype", "disaster", "target"},
	"year":          {"year", "startyear"},
	"confidence":    {"confidence"},
}

func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func (s *forecastService) predictionsFromRows(rows [][]string) ([]forecast.DisasterPrediction, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyPredictions
	}

	idx := make(map[string]int)
	for col, h := range rows[0] {
		key := headerKey(h)
		for field, aliases := range xlsxHeaders {
			if _, seen := idx[field]; seen {
				continue
			}
			for _, a := range aliases {
				if key == a {
					idx[field] = col
				}
			}
		}
	}
	if _, ok := idx["region"]; !ok {
		return nil, ErrMissingXLSXHeader
	}
	if _, ok := idx["disaster_type"]; !ok {
		return nil, ErrMissingXLSXHeader
	}

	cell := func(row []string, field string) string {
		col, ok := idx[field]
		if !ok || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	var preds []forecast.DisasterPrediction
	for _, row := range rows[1:] {
		region, disaster := cell(row, "region"), cell(row, "disaster_type")
		if region == "" || disaster == "" {
			continue
		}
		year, _ := strconv.Atoi(cell(row, "year"))
		var conf *float64
		if v, err := strconv.ParseFloat(cell(row, "confidence"), 64); err == nil {
			conf = &v
		}
		preds = append(preds, s.prediction(region, cell(row, "country"), disaster, year, conf))
	}
	return preds, nil
}

// ════════════════════════════════════════════════════════════
// Forecast / match / expiry
// ════════════════════════════════════════════════════════════

func (s *forecastService) latest(ctx context.Context) ([]forecast.DisasterPrediction, error) {
	batch, err := s.predictions.Latest(ctx)
	if err != nil {
		s.logger.Error("load prediction batch failed", zap.Error(err))
		return nil, err
	}
	if batch == nil {
		return nil, nil
	}
	return batch.Predictions, nil
}

func (s *forecastService) run(ctx context.Context, filter forecast.FilterContext, limit int) (forecast.Result, error) {
	preds, err := s.latest(ctx)
	if err != nil {
		return forecast.Result{}, err
	}
	selected := forecast.FilterPredictions(preds, filter, limit)
	res, err := s.forecaster.Forecast(selected, forecast.FilterContext{})
	if err != nil {
		s.logger.Error("forecast failed", zap.Error(err))
		return forecast.Result{}, err
	}
	for _, skip := range res.Skipped {
		s.logger.Debug("prediction skipped", zap.Error(skip))
	}
	return res, nil
}

func (s *forecastService) Demand(ctx context.Context, req *dto.FilterRequest) (*dto.ForecastResponse, error) {
	res, err := s.run(ctx, req.ToFilter(), s.cfg.MaxForecastBatch)
	if err != nil {
		return nil, err
	}
	return &dto.ForecastResponse{
		Records: res.Records,
		Summary: forecast.Summarize(res.Records),
		Skipped: errorStrings(res.Skipped),
	}, nil
}

func (s *forecastService) Match(ctx context.Context, req *dto.FilterRequest) (*dto.MatchResponse, error) {
	filter := req.ToFilter()
	res, err := s.run(ctx, filter, s.cfg.MaxMatchBatch)
	if err != nil {
		return nil, err
	}
	inv, err := s.inventory.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	recs := forecast.Match(inv, res.Records, filter)
	total := 0
	for _, u := range forecast.FilterInventory(inv, filter) {
		total += u.Units
	}
	return &dto.MatchResponse{
		Recommendations: recs,
		Summary:         forecast.SummarizeMatches(recs),
		TotalSupply:     total,
		Skipped:         errorStrings(res.Skipped),
	}, nil
}

func (s *forecastService) Expiry(ctx context.Context, days *int) (*dto.ExpiryResponse, error) {
	threshold := s.cfg.DaysThreshold
	if days != nil {
		threshold = *days
	}
	if threshold < 0 {
		threshold = forecast.DefaultDaysThreshold
	}

	inv, err := s.inventory.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	risks, issues := forecast.ScanExpiry(inv, threshold, s.now())
	for _, issue := range issues {
		s.logger.Warn("inventory expiry date unreadable", zap.Error(issue))
	}
	sort.SliceStable(risks, func(i, j int) bool { return risks[i].DaysLeft < risks[j].DaysLeft })

	return &dto.ExpiryResponse{
		DaysThreshold: threshold,
		Risks:         risks,
		Summary:       forecast.SummarizeExpiry(risks),
		Malformed:     len(issues),
	}, nil
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
