package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/photos", "200")
	before := testutil.ToFloat64(counter)

	ObserveRequest("GET", "/photos", "200", 120*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "success", Result(nil))
	assert.Equal(t, "failure", Result(errors.New("boom")))
}
