package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"relief-ops/config"
	"relief-ops/internal/dto"
	"relief-ops/internal/forecast"
	"relief-ops/pkg/predictionfeed"
)

// ── fakes ──

type mapModelStore struct {
	data    map[string][]byte
	puts    int
	deletes int
}

func newMapModelStore() *mapModelStore {
	return &mapModelStore{data: make(map[string][]byte)}
}

func (s *mapModelStore) Put(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.data[key] = b
	s.puts++
	return nil
}

func (s *mapModelStore) Get(key string, dest interface{}) (bool, error) {
	b, ok := s.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (s *mapModelStore) Delete(key string) error {
	delete(s.data, key)
	s.deletes++
	return nil
}

type stubFeed struct {
	items []predictionfeed.Prediction
	err   error
}

func (f *stubFeed) Fetch(context.Context) ([]predictionfeed.Prediction, error) {
	return f.items, f.err
}

type staticInventory []forecast.InventoryUnit

func (s staticInventory) Inventory(context.Context) ([]forecast.InventoryUnit, error) {
	return s, nil
}

func testForecastConfig() *config.ForecastConfig {
	return &config.ForecastConfig{
		DaysThreshold:     7,
		TrainingSamples:   5000,
		Seed:              42,
		MinR2:             0.5,
		DefaultPopulation: 40,
		RegionPopulations: map[string]float64{"Southeast Asia": 50},
		MaxForecastBatch:  20,
		MaxMatchBatch:     50,
	}
}

func setupTestForecastService(models ModelStore, feed PredictionFeed, inv InventoryReader) *forecastService {
	svc := NewForecastService(testForecastConfig(), NewMemoryPredictionStore(), models, feed, inv, zap.NewNop()).(*forecastService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func conf(v float64) *float64 { return &v }

// ── model warm-up ──

func TestWarmUp_TrainsThenLoads(t *testing.T) {
	store := newMapModelStore()

	first := setupTestForecastService(store, nil, staticInventory{})
	if err := first.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp should train: %v", err)
	}
	if store.puts != 1 {
		t.Fatalf("trained model should be saved once, got %d", store.puts)
	}

	second := setupTestForecastService(store, nil, staticInventory{})
	if err := second.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp should load: %v", err)
	}
	if store.puts != 1 {
		t.Error("loading a saved model must not save again")
	}
	m1, m2 := first.forecaster.Model(), second.forecaster.Model()
	if m2 == nil || m1.R2 != m2.R2 {
		t.Errorf("loaded model should match the saved one")
	}
}

func TestWarmUp_StaleModelDroppedAndRetrained(t *testing.T) {
	store := newMapModelStore()
	stale := forecast.Model{
		Coefficients: map[string][]float64{"Flood": {1, 2, 3, 4, 5}},
		R2:           0.9,
		Samples:      100,
	}
	if err := store.Put(modelKey, stale); err != nil {
		t.Fatalf("seed stale model: %v", err)
	}

	svc := setupTestForecastService(store, nil, staticInventory{})
	if err := svc.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp should retrain: %v", err)
	}
	if store.deletes != 1 {
		t.Errorf("stale model should be deleted once, got %d", store.deletes)
	}
	if store.puts != 2 {
		t.Errorf("retrained model should be saved, puts=%d", store.puts)
	}
	var saved forecast.Model
	if ok, err := store.Get(modelKey, &saved); !ok || err != nil {
		t.Fatalf("retrained model missing: ok=%v err=%v", ok, err)
	}
	if err := saved.Validate(0); err != nil {
		t.Errorf("saved model should be valid: %v", err)
	}
}

// ── prediction batches ──

func TestDemand_EmptyBatch(t *testing.T) {
	svc := setupTestForecastService(nil, nil, staticInventory{})
	resp, err := svc.Demand(context.Background(), &dto.FilterRequest{})
	if err != nil {
		t.Fatalf("Demand without predictions should succeed: %v", err)
	}
	if len(resp.Records) != 0 || resp.Summary.TotalPredicted != 0 {
		t.Errorf("expected empty forecast, got %+v", resp)
	}
}

func TestDemand_SkipsUnknownTypeAndFilters(t *testing.T) {
	svc := setupTestForecastService(nil, nil, staticInventory{})
	ctx := context.Background()

	_, err := svc.SetPredictions(ctx, &dto.UploadPredictionsRequest{Predictions: []dto.PredictionInput{
		{Region: "Southeast Asia", DisasterType: "Flood", Year: 2026, Confidence: conf(80)},
		{Region: "Southeast Asia", DisasterType: "Meteor", Year: 2026, Confidence: conf(80)},
		{Region: "South Asia", DisasterType: "earthquake", Year: 2027},
	}})
	if err != nil {
		t.Fatalf("SetPredictions: %v", err)
	}

	resp, err := svc.Demand(ctx, &dto.FilterRequest{})
	if err != nil {
		t.Fatalf("Demand: %v", err)
	}
	if len(resp.Records) != 2 || len(resp.Skipped) != 1 {
		t.Fatalf("expected 2 records and 1 skipped, got %d/%d", len(resp.Records), len(resp.Skipped))
	}
	if resp.Records[1].Confidence != defaultConfidence {
		t.Errorf("missing confidence should default to %v, got %v", defaultConfidence, resp.Records[1].Confidence)
	}
	for _, r := range resp.Records {
		if r.PredictedUnits < forecast.MinUnits {
			t.Errorf("predicted units below floor: %+v", r)
		}
	}

	filtered, err := svc.Demand(ctx, &dto.FilterRequest{DisasterTypes: []string{"flood"}})
	if err != nil {
		t.Fatalf("Demand filtered: %v", err)
	}
	if len(filtered.Records) != 1 || filtered.Records[0].DisasterType != "Flood" {
		t.Errorf("filter should keep only floods, got %+v", filtered.Records)
	}
}

func TestDemand_BatchCap(t *testing.T) {
	svc := setupTestForecastService(nil, nil, staticInventory{})
	svc.cfg.MaxForecastBatch = 3
	req := &dto.UploadPredictionsRequest{}
	for i := 0; i < 10; i++ {
		req.Predictions = append(req.Predictions, dto.PredictionInput{Region: "Southeast Asia", DisasterType: "Storm", Year: 2026})
	}
	if _, err := svc.SetPredictions(context.Background(), req); err != nil {
		t.Fatalf("SetPredictions: %v", err)
	}

	resp, err := svc.Demand(context.Background(), &dto.FilterRequest{})
	if err != nil {
		t.Fatalf("Demand: %v", err)
	}
	if len(resp.Records) != 3 {
		t.Errorf("expected batch capped at 3, got %d", len(resp.Records))
	}
}

func TestImportPredictions_XLSX(t *testing.T) {
	svc := setupTestForecastService(nil, nil, staticInventory{})

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Year", "Region", "Country", "Disaster Type", "Confidence"},
		{2026, "Southeast Asia", "Myanmar", "Flood", 90},
		{2027, "South Asia", "India", "Storm", ""},
		{2027, "", "Nowhere", "Storm", 10},
	}
	for i, row := range rows {
		for j, v := range row {
			f.SetCellValue("Sheet1", cell(colName(j), i+1), v)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	f.Close()

	resp, err := svc.ImportPredictions(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ImportPredictions should succeed: %v", err)
	}
	if resp.Count != 2 || resp.Source != "import" {
		t.Errorf("expected 2 imported rows, got %+v", resp)
	}

	batch, _ := svc.predictions.Latest(context.Background())
	if batch.Predictions[0].Confidence != 90 || batch.Predictions[1].Confidence != defaultConfidence {
		t.Errorf("unexpected confidences %+v", batch.Predictions)
	}
}

func TestImportPredictions_MissingHeader(t *testing.T) {
	svc := setupTestForecastService(nil, nil, staticInventory{})
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Year")
	var buf bytes.Buffer
	_ = f.Write(&buf)
	f.Close()

	_, err := svc.ImportPredictions(context.Background(), &buf)
	if !errors.Is(err, ErrMissingXLSXHeader) {
		t.Errorf("expected ErrMissingXLSXHeader, got %v", err)
	}
}

func TestRefreshFromFeed(t *testing.T) {
	feed := &stubFeed{items: []predictionfeed.Prediction{
		{Region: "Southeast Asia", DisasterType: "Flood", Year: 2026, Confidence: conf(70)},
		{Region: "", DisasterType: "Flood"},
	}}
	svc := setupTestForecastService(nil, feed, staticInventory{})

	resp, err := svc.RefreshFromFeed(context.Background())
	if err != nil {
		t.Fatalf("RefreshFromFeed: %v", err)
	}
	if resp.Count != 1 || resp.Source != "feed" {
		t.Errorf("unexpected batch %+v", resp)
	}

	noFeed := setupTestForecastService(nil, nil, staticInventory{})
	if _, err := noFeed.RefreshFromFeed(context.Background()); !errors.Is(err, ErrNoPredictionFeed) {
		t.Errorf("expected ErrNoPredictionFeed, got %v", err)
	}
}

// ── match / expiry ──

func TestMatch_ShortageWithoutSupply(t *testing.T) {
	inv := staticInventory{
		{UnitID: "u1", Region: "Elsewhere", BloodType: "O+", Units: 500},
	}
	svc := setupTestForecastService(nil, nil, inv)
	ctx := context.Background()
	_, _ = svc.SetPredictions(ctx, &dto.UploadPredictionsRequest{Predictions: []dto.PredictionInput{
		{Region: "Southeast Asia", DisasterType: "Earthquake", Year: 2026, Confidence: conf(100)},
	}})

	resp, err := svc.Match(ctx, &dto.FilterRequest{})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("expected one recommendation, got %d", len(resp.Recommendations))
	}
	rec := resp.Recommendations[0]
	if rec.Status != forecast.StatusShortage || rec.CurrentSupply != 0 || rec.Balance != -rec.PredictedDemand {
		t.Errorf("expected full shortage, got %+v", rec)
	}
	if resp.TotalSupply != 500 || resp.Summary.Shortages != 1 {
		t.Errorf("unexpected totals %+v / %d", resp.Summary, resp.TotalSupply)
	}
}

func TestExpiry_DefaultAndOverride(t *testing.T) {
	inv := staticInventory{
		{UnitID: "soon", Region: "Yangon", Units: 3, ExpiresOn: "2026-07-17"},
		{UnitID: "later", Region: "Yangon", Units: 3, ExpiresOn: "2026-07-25"},
		{UnitID: "bad", Region: "Yangon", Units: 3, ExpiresOn: "17/07/2026"},
	}
	svc := setupTestForecastService(nil, nil, inv)

	resp, err := svc.Expiry(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expiry: %v", err)
	}
	if resp.DaysThreshold != 7 || len(resp.Risks) != 1 || resp.Risks[0].UnitID != "soon" {
		t.Errorf("unexpected default scan %+v", resp)
	}
	if resp.Risks[0].Status != forecast.ExpiryUrgent || resp.Malformed != 1 {
		t.Errorf("expected URGENT risk and one malformed row, got %+v", resp)
	}

	days := 14
	resp, _ = svc.Expiry(context.Background(), &days)
	if len(resp.Risks) != 2 || resp.Risks[0].DaysLeft > resp.Risks[1].DaysLeft {
		t.Errorf("expected 2 risks sorted by days left, got %+v", resp.Risks)
	}
}
