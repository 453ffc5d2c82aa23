package actor

import "time"

// Directive is a supervision outcome for a child failure (spec glossary).
type Directive int

const (
	DirectiveRestart Directive = iota
	DirectiveStop
	DirectiveEscalate
)

// StrategyKind selects which siblings are affected by a restart decision
// (spec §3/§4.H).
type StrategyKind int

const (
	OneForOne StrategyKind = iota
	AllForOne
)

// Decider maps a failure reason to a baseline directive.
type Decider func(reason *ActorError) Directive

// DefaultDecider restarts on any Recoverable error and escalates Fatal ones.
func DefaultDecider(reason *ActorError) Directive {
	if reason != nil && reason.Fatal {
		return DirectiveEscalate
	}
	return DirectiveRestart
}

// SupervisorStrategy is spec §3/§6's public supervision contract: a kind
// (OneForOne/AllForOne), a restart budget (max restarts within a window),
// and a decider.
type SupervisorStrategy struct {
	Kind        StrategyKind
	MaxRestarts uint32
	Within      time.Duration
	Decide      Decider
}

// NewSupervisorStrategy builds a strategy, matching spec §6's
// `SupervisorStrategy.new(kind, max_restarts, within, decider_fn)`.
func NewSupervisorStrategy(kind StrategyKind, maxRestarts uint32, within time.Duration, decide Decider) SupervisorStrategy {
	if decide == nil {
		decide = DefaultDecider
	}
	return SupervisorStrategy{Kind: kind, MaxRestarts: maxRestarts, Within: within, Decide: decide}
}

var defaultSupervisorStrategy = NewSupervisorStrategy(OneForOne, 10, 10*time.Second, DefaultDecider)

// HandleFailure implements spec §4.H's handle_failure: the decider yields a
// baseline directive; a Restart directive is checked against the restart
// budget and downgraded to Stop if the budget within the window is
// exceeded, resetting the statistics either way once the strategy commits
// to Stop or Escalate.
func (s SupervisorStrategy) HandleFailure(stats *RestartStatistics, reason *ActorError, now time.Time) Directive {
	directive := s.Decide(reason)
	switch directive {
	case DirectiveRestart:
		count := stats.RecordFailure(now, s.Within)
		if s.MaxRestarts > 0 && uint32(count) > s.MaxRestarts {
			stats.Reset()
			return DirectiveStop
		}
		return DirectiveRestart
	case DirectiveStop, DirectiveEscalate:
		stats.Reset()
		return directive
	default:
		return DirectiveStop
	}
}
