package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectors(t *testing.T) {
	t.Run("Counters Increment Per Label Set", func(t *testing.T) {
		before := testutil.ToFloat64(ControlActions.WithLabelValues("next", "ok"))
		ControlActions.WithLabelValues("next", "ok").Inc()

		if got := testutil.ToFloat64(ControlActions.WithLabelValues("next", "ok")); got != before+1 {
			t.Errorf("expected %v, got %v", before+1, got)
		}
	})

	t.Run("Collectors Lint Clean", func(t *testing.T) {
		problems, err := testutil.CollectAndLint(HTTPRequests)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, p := range problems {
			t.Errorf("lint problem %s: %s", p.Metric, p.Text)
		}
	})
}
