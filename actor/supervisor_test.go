package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSupervisionRestartBudgetScenario(t *testing.T) {
	// spec §8 scenario 3: max_restarts=1, within=5s, decider always Restart.
	strategy := NewSupervisorStrategy(OneForOne, 1, 5*time.Second, func(*ActorError) Directive {
		return DirectiveRestart
	})
	stats := NewRestartStatistics()
	base := time.Unix(0, 0)

	d1 := strategy.HandleFailure(stats, Recoverable("boom"), base.Add(1*time.Second))
	assert.Equal(t, DirectiveRestart, d1)

	d2 := strategy.HandleFailure(stats, Recoverable("boom again"), base.Add(2*time.Second))
	assert.Equal(t, DirectiveStop, d2)

	// stats reset after Stop.
	assert.Equal(t, 0, len(stats.failures))
}

func TestSupervisionEscalateResetsStats(t *testing.T) {
	strategy := NewSupervisorStrategy(OneForOne, 5, time.Minute, func(*ActorError) Directive {
		return DirectiveEscalate
	})
	stats := NewRestartStatistics()
	stats.RecordFailure(time.Now(), time.Minute)

	d := strategy.HandleFailure(stats, Fatal("bad"), time.Now())
	assert.Equal(t, DirectiveEscalate, d)
	assert.Equal(t, 0, len(stats.failures))
}

func TestRestartStatisticsWindowEviction(t *testing.T) {
	rs := NewRestartStatistics()
	base := time.Unix(0, 0)
	assert.Equal(t, 1, rs.RecordFailure(base, time.Second))
	assert.Equal(t, 1, rs.RecordFailure(base.Add(5*time.Second), time.Second)) // prior evicted
}
