package recommend

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/khanglvm/editorial-toolkit/internal/metrics"
	"github.com/khanglvm/editorial-toolkit/internal/storage"
)

func TestRecorder_StopFlushes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	log := &memActivity{}
	r := NewRecorder(log, zerolog.Nop())
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return at }

	r.RecordShown("u1", []string{"alpha", "bravo"})
	r.RecordShown("u2", []string{"charlie"})
	r.Stop()

	events := log.ofType(storage.ActivityRecommendationShown)
	require.Len(t, events, 2)
	assert.Equal(t, "u1", events[0].UserID)
	assert.Equal(t, []string{"alpha", "bravo"}, events[0].Details.ToolSlugs)
	assert.True(t, events[0].CreatedAt.Equal(at))
}

func TestRecorder_FlushesInBackground(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	log := &memActivity{}
	r := NewRecorder(log, zerolog.Nop())
	defer r.Stop()

	r.RecordShown("u1", []string{"alpha"})

	assert.Eventually(t, func() bool {
		return len(log.ofType(storage.ActivityRecommendationShown)) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRecorder_CopiesSlugs(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	log := &memActivity{}
	r := NewRecorder(log, zerolog.Nop())

	slugs := []string{"alpha"}
	r.RecordShown("u1", slugs)
	slugs[0] = "mutated"
	r.Stop()

	events := log.ofType(storage.ActivityRecommendationShown)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"alpha"}, events[0].Details.ToolSlugs)
}

func TestRecorder_EmptyIgnored(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	log := &memActivity{}
	r := NewRecorder(log, zerolog.Nop())
	r.RecordShown("u1", nil)
	r.Stop()

	assert.Empty(t, log.ofType(storage.ActivityRecommendationShown))
}

func TestRecorder_DropsAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	log := &memActivity{}
	r := NewRecorder(log, zerolog.Nop())
	r.Stop()
	r.Stop()

	before := testutil.ToFloat64(metrics.ShownRecordsDropped)
	r.RecordShown("u1", []string{"alpha"})
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ShownRecordsDropped))
	assert.Empty(t, log.ofType(storage.ActivityRecommendationShown))
}

func TestRecorder_WriteFailureCounted(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	log := &memActivity{failing: true}
	r := NewRecorder(log, zerolog.Nop())

	before := testutil.ToFloat64(metrics.ShownRecordsDropped)
	r.RecordShown("u1", []string{"alpha"})
	r.Stop()

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ShownRecordsDropped))
}
