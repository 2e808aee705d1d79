package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CountersAreIndependentPerInstance(t *testing.T) {
	a, b := New(), New()
	a.PaymentsApplied.WithLabelValues("customer_debt").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.PaymentsApplied.WithLabelValues("customer_debt")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PaymentsApplied.WithLabelValues("customer_debt")))
}

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("apply_payment", time.Now(), nil)
	m.ObserveOperation("apply_payment", time.Now(), errors.New("x"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.OperationLatency))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveOperation("x", time.Now(), nil) })
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.Returns.WithLabelValues("sale", "whole").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pos_returns_total{kind="sale",scope="whole"} 1`)
}

func TestRecordHelpers(t *testing.T) {
	m := New()
	m.RecordPayment("company_debt", true, false, true)
	m.RecordReturn("sale", "item", 2)
	m.RecordSale("IQD", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Overpayments.WithLabelValues("company_debt", "USD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DebtsSettled.WithLabelValues("company_debt")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StockShortfalls.WithLabelValues("sale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SalesRecorded.WithLabelValues("IQD", "true")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordPayment("x", true, true, true)
		nilMetrics.RecordReturn("x", "whole", 1)
		nilMetrics.RecordSale("USD", false)
	})
}
