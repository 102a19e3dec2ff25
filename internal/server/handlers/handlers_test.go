package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
	"github.com/mamadbah2/aquafarm/internal/service/insights"
	"github.com/mamadbah2/aquafarm/internal/service/records"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeInsights struct {
	rows []models.DailyKPIRow
	err  error
}

func (f fakeInsights) Generate(context.Context, string) ([]models.DailyKPIRow, error) {
	return f.rows, f.err
}

func (f fakeInsights) Stored(context.Context, string) ([]models.DailyKPIRow, error) {
	return f.rows, f.err
}

func (f fakeInsights) Export(context.Context, string) (int, error) {
	return len(f.rows), f.err
}

type fakeRecords struct {
	err     error
	batchID string
}

func (f *fakeRecords) SyncBatch(_ context.Context, req models.BatchSyncRequest) (models.Batch, error) {
	return models.Batch{BatchID: "generated", Name: req.Name}, f.err
}

func (f *fakeRecords) AddDailyLog(_ context.Context, batchID string, in models.DailyLogInput) (models.DailyLogEntry, error) {
	f.batchID = batchID
	return models.DailyLogEntry{ID: "l1", BatchID: batchID, FeedKg: in.FeedKg}, f.err
}

func (f *fakeRecords) AddWeightSample(_ context.Context, batchID string, _ models.WeightSampleInput) (models.WeightSample, error) {
	f.batchID = batchID
	return models.WeightSample{ID: "s1", BatchID: batchID}, f.err
}

func (f *fakeRecords) AddHarvest(_ context.Context, batchID string, _ models.HarvestInput) (models.HarvestEvent, error) {
	f.batchID = batchID
	return models.HarvestEvent{ID: "h1", BatchID: batchID}, f.err
}

func insightsEngine(svc InsightsService) *gin.Engine {
	h := NewInsightsHandler(svc, nil)
	r := gin.New()
	r.GET("/batches/:batchId/performance-insights", h.PerformanceInsights)
	r.GET("/batches/:batchId/insights", h.Stored)
	r.POST("/batches/:batchId/insights/export", h.Export)
	return r
}

func recordsEngine(svc RecordsService) *gin.Engine {
	h := NewRecordsHandler(svc, nil)
	r := gin.New()
	r.POST("/batches", h.SyncBatch)
	r.POST("/batches/:batchId/daily-records", h.AddDailyLog)
	r.POST("/batches/:batchId/weight-samplings", h.AddWeightSample)
	r.POST("/batches/:batchId/harvests", h.AddHarvest)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPerformanceInsightsReturnsRows(t *testing.T) {
	fcr := 1.5
	r := insightsEngine(fakeInsights{rows: []models.DailyKPIRow{{Date: "2025-03-01", BatchID: "b1", PopulationEnd: 990, FCR: &fcr}}})

	w := serve(r, http.MethodGet, "/batches/b1/performance-insights", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "2025-03-01", body[0]["date"])
	assert.EqualValues(t, 990, body[0]["population_end"])
	assert.EqualValues(t, 1.5, body[0]["FCR"])
	assert.Nil(t, body[0]["accumulated_FCR"])
}

func TestPerformanceInsightsEmptyBatchIsEmptyArray(t *testing.T) {
	r := insightsEngine(fakeInsights{rows: []models.DailyKPIRow{}})

	w := serve(r, http.MethodGet, "/batches/b1/insights", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestInsightsErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		err    error
		want   int
	}{
		{name: "unknown batch", method: http.MethodGet, target: "/batches/b9/performance-insights", err: fmt.Errorf("%w: b9", insights.ErrBatchNotFound), want: http.StatusNotFound},
		{name: "stored unknown batch", method: http.MethodGet, target: "/batches/b9/insights", err: insights.ErrBatchNotFound, want: http.StatusNotFound},
		{name: "export disabled", method: http.MethodPost, target: "/batches/b1/insights/export", err: insights.ErrExportDisabled, want: http.StatusServiceUnavailable},
		{name: "storage failure", method: http.MethodGet, target: "/batches/b1/performance-insights", err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(insightsEngine(fakeInsights{err: tt.err}), tt.method, tt.target, "")
			assert.Equal(t, tt.want, w.Code)
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestExportAccepted(t *testing.T) {
	r := insightsEngine(fakeInsights{rows: make([]models.DailyKPIRow, 3)})

	w := serve(r, http.MethodPost, "/batches/b1/insights/export", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"batch_id":"b1","rows":3}`, w.Body.String())
}

func TestSyncBatch(t *testing.T) {
	r := recordsEngine(&fakeRecords{})

	w := serve(r, http.MethodPost, "/batches", `{"batch_name":"Pond A","number_of_fishes":1000}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"generated"`)

	w = serve(r, http.MethodPost, "/batches", `{"number_of_fishes":1000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "batch name is required")

	w = serve(recordsEngine(&fakeRecords{err: fmt.Errorf("%w: bad", records.ErrInvalidRecord)}), http.MethodPost, "/batches", `{"batch_name":"Pond A"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddRecords(t *testing.T) {
	svc := &fakeRecords{}
	r := recordsEngine(svc)

	w := serve(r, http.MethodPost, "/batches/b1/daily-records", `{"date":"2025-03-01T00:00:00Z","feed_quantity":2.5}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "b1", svc.batchID)
	assert.Contains(t, w.Body.String(), `"l1"`)

	w = serve(r, http.MethodPost, "/batches/b2/weight-samplings", `{"date":"2025-03-01","fish_numbers":10,"total_weight":1}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "b2", svc.batchID)

	w = serve(r, http.MethodPost, "/batches/b3/harvests", `{"date":"2025-03-01T00:00:00Z","quantity_harvest":5}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "b3", svc.batchID)

	w = serve(r, http.MethodPost, "/batches/b1/harvests", `{"date":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/batches/b1/harvests", `{"date":"01/03/2025"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddRecordsErrorMapping(t *testing.T) {
	w := serve(recordsEngine(&fakeRecords{err: fmt.Errorf("batch b9: %w", models.ErrNotFound)}), http.MethodPost, "/batches/b9/daily-records", `{"date":"2025-03-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(recordsEngine(&fakeRecords{err: errors.New("write conflict")}), http.MethodPost, "/batches/b1/daily-records", `{"date":"2025-03-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type fakeMessaging struct {
	handled int
	err     error
	sent    []models.OutboundMessageRequest
}

func (f *fakeMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || token != "secret" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (f *fakeMessaging) HandleWebhook(context.Context, models.WebhookPayload) error {
	f.handled++
	return f.err
}

func (f *fakeMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return f.err
}

func webhookEngine(svc *fakeMessaging) *gin.Engine {
	h := NewWebhookHandler(svc, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send-message", h.SendMessage)
	return r
}

func TestWebhookVerify(t *testing.T) {
	r := webhookEngine(&fakeMessaging{})

	w := serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=123", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "123", w.Body.String())

	w = serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=123", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookReceiveAlwaysAcknowledges(t *testing.T) {
	svc := &fakeMessaging{err: errors.New("send failed")}
	r := webhookEngine(svc)

	w := serve(r, http.MethodPost, "/webhook", `{"object":"whatsapp_business_account","entry":[]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.handled)

	w = serve(r, http.MethodPost, "/webhook", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessage(t *testing.T) {
	svc := &fakeMessaging{}
	r := webhookEngine(svc)

	w := serve(r, http.MethodPost, "/send-message", `{"to":"2246","message":"hello"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"to":"2246","status":"sent"}`, w.Body.String())
	require.Len(t, svc.sent, 1)
	assert.Equal(t, "2246", svc.sent[0].To)

	w = serve(r, http.MethodPost, "/send-message", `{"to":"2246"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(webhookEngine(&fakeMessaging{err: errors.New("api down")}), http.MethodPost, "/send-message", `{"to":"2246","message":"hello"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
