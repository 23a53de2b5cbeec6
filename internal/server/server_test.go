package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	billingdomain "github.com/smallbiznis/propease/internal/billing/domain"
	"github.com/smallbiznis/propease/internal/billing/pdf"
	billingservice "github.com/smallbiznis/propease/internal/billing/service"
	"github.com/smallbiznis/propease/internal/config"
	meterdomain "github.com/smallbiznis/propease/internal/meter/domain"
	meterrepo "github.com/smallbiznis/propease/internal/meter/repository"
	meterservice "github.com/smallbiznis/propease/internal/meter/service"
	obsmetrics "github.com/smallbiznis/propease/internal/observability/metrics"
	propertydomain "github.com/smallbiznis/propease/internal/property/domain"
	propertyrepo "github.com/smallbiznis/propease/internal/property/repository"
	propertyservice "github.com/smallbiznis/propease/internal/property/service"
	readingdomain "github.com/smallbiznis/propease/internal/reading/domain"
	readingrepo "github.com/smallbiznis/propease/internal/reading/repository"
	readingservice "github.com/smallbiznis/propease/internal/reading/service"
	tenantdomain "github.com/smallbiznis/propease/internal/tenant/domain"
	tenantrepo "github.com/smallbiznis/propease/internal/tenant/repository"
	tenantservice "github.com/smallbiznis/propease/internal/tenant/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&propertydomain.Property{},
		&meterdomain.MainMeter{},
		&tenantdomain.Tenant{},
		&readingdomain.MainMeterReading{},
		&readingdomain.SubMeterReading{},
		&billingdomain.Bill{},
	)
	require.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	logger := zap.NewNop()
	cfg := config.Config{ListenAddr: ":0", Environment: "test"}

	meterRepo := meterrepo.Provide()
	tenantRepo := tenantrepo.Provide()
	propertyRepo := propertyrepo.Provide()

	readingSvc := readingservice.New(readingservice.Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Repo:       readingrepo.Provide(),
		MeterRepo:  meterRepo,
		TenantRepo: tenantRepo,
	})

	engine := NewEngine(cfg, logger, obsmetrics.New())

	return NewServer(ServerParams{
		Gin:   engine,
		Cfg:   cfg,
		DB:    db,
		GenID: node,
		PropertySvc: propertyservice.New(propertyservice.Params{
			DB: db, Log: logger, GenID: node, Repo: propertyRepo,
		}),
		MeterSvc: meterservice.New(meterservice.Params{
			DB: db, Log: logger, GenID: node, Repo: meterRepo,
		}),
		TenantSvc: tenantservice.New(tenantservice.Params{
			DB: db, Log: logger, GenID: node, Repo: tenantRepo, MeterRepo: meterRepo,
		}),
		ReadingSvc: readingSvc,
		BillingSvc: billingservice.New(billingservice.Params{
			DB:           db,
			Log:          logger,
			GenID:        node,
			ReadingSvc:   readingSvc,
			PropertyRepo: propertyRepo,
			Billing:      config.NewStaticBillingConfig(config.DefaultBillingConfig()),
			Renderer:     pdf.NewRenderer(),
		}),
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload.Data
}

func TestBillingFlow(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/properties", gin.H{
		"code": "greenwood",
		"name": "Greenwood Residency",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	propertyID := dataField(t, w)["id"].(string)

	w = doJSON(t, s, http.MethodPost, "/api/properties/"+propertyID+"/meters", gin.H{
		"code": "MAIN-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	meterID := dataField(t, w)["id"].(string)

	tenantIDs := make(map[string]string)
	for flat, spec := range map[string]gin.H{
		"101": {"occupants": 2, "name": "Asha"},
		"102": {"occupants": 3, "name": "Binod"},
	} {
		body := gin.H{"meter_id": meterID, "flat_number": flat}
		for k, v := range spec {
			body[k] = v
		}
		w = doJSON(t, s, http.MethodPost, "/api/properties/"+propertyID+"/tenants", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		tenantIDs[flat] = dataField(t, w)["id"].(string)
	}

	w = doJSON(t, s, http.MethodPost, "/api/properties/"+propertyID+"/readings/main", gin.H{
		"meter_id":      meterID,
		"period":        "2025-07",
		"current":       1000,
		"billed_amount": 5500,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for flat, current := range map[string]float64{"101": 300, "102": 500} {
		w = doJSON(t, s, http.MethodPost, "/api/properties/"+propertyID+"/readings/sub", gin.H{
			"tenant_id": tenantIDs[flat],
			"period":    "2025-07",
			"current":   current,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/api/properties/"+propertyID+"/bills/generate", gin.H{
		"period": "2025-07",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var generated struct {
		Data struct {
			Period string `json:"period"`
			Bills  []struct {
				ID          string  `json:"id"`
				FlatNumber  string  `json:"flat_number"`
				TotalAmount float64 `json:"total_amount"`
			} `json:"bills"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &generated))
	require.Len(t, generated.Data.Bills, 2)
	assert.Equal(t, "2025-07", generated.Data.Period)

	var total float64
	for _, bill := range generated.Data.Bills {
		total += bill.TotalAmount
	}
	assert.Equal(t, 5500.0, total)

	w = doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/properties/%s/bills/%s/pay", propertyID, generated.Data.Bills[0].ID), gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "paid", dataField(t, w)["status"])

	w = doJSON(t, s, http.MethodGet,
		"/api/properties/"+propertyID+"/bills/summary?period=2025-07", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := dataField(t, w)
	assert.Equal(t, "5500.00", summary["total_amount"])
	assert.Equal(t, float64(2), summary["bill_count"])
}

func TestGenerateWithoutReadingsIsUnprocessable(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/properties", gin.H{
		"code": "empty",
		"name": "Empty Property",
	})
	require.Equal(t, http.StatusOK, w.Code)
	propertyID := dataField(t, w)["id"].(string)

	w = doJSON(t, s, http.MethodPost, "/api/properties/"+propertyID+"/bills/generate", gin.H{
		"period": "2025-07",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestValidationErrors(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/properties", gin.H{"code": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/properties/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDuplicateFlatConflict(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/properties", gin.H{
		"code": "dup",
		"name": "Dup Property",
	})
	require.Equal(t, http.StatusOK, w.Code)
	propertyID := dataField(t, w)["id"].(string)

	w = doJSON(t, s, http.MethodPost, "/api/properties/"+propertyID+"/meters", gin.H{"code": "MAIN-1"})
	require.Equal(t, http.StatusOK, w.Code)
	meterID := dataField(t, w)["id"].(string)

	body := gin.H{"meter_id": meterID, "flat_number": "101", "name": "Asha"}
	w = doJSON(t, s, http.MethodPost, "/api/properties/"+propertyID+"/tenants", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/properties/"+propertyID+"/tenants", body)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}
