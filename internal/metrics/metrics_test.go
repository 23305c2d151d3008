package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveEvent(t *testing.T) {
	before := testutil.ToFloat64(eventsTotal.WithLabelValues("mint_confirmed", OutcomeApplied))

	ObserveEvent("mint_confirmed", OutcomeApplied, 15*time.Millisecond)
	ObserveEvent("mint_confirmed", OutcomeApplied, 5*time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(eventsTotal.WithLabelValues("mint_confirmed", OutcomeApplied)))
}

func TestObservePublication(t *testing.T) {
	before := testutil.ToFloat64(publicationsTotal.WithLabelValues(PublicationFailed))

	ObservePublication(PublicationFailed)

	assert.Equal(t, before+1, testutil.ToFloat64(publicationsTotal.WithLabelValues(PublicationFailed)))
}

func TestHandler(t *testing.T) {
	SetLastBlock(4242)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "teleport_last_handled_block 4242"))
}
