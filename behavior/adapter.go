package behavior

import "github.com/asynkron/actorcore/actor"

// AdapterFailure describes why an Adapter's conversion function could not
// produce a typed message; defined in the actor package (actor.AdapterFailure)
// so it can ride along on AdapterFailureEvent without the actor package
// importing this one back.
type AdapterFailure = actor.AdapterFailure

// AdapterFunc converts an untyped upstream value into M, or reports why it
// couldn't.
type AdapterFunc[U any, M any] func(u U) (M, *AdapterFailure)

type adapterFailureMessage[M any] struct{ failure AdapterFailure }

// Adapter is the typed layer's ActorRef<U> of spec §4.L: external code
// (e.g. a subscription callback expecting U) calls Tell, which converts U
// into M and forwards it to target's Runner. A failed conversion is
// delivered to the Runner as a MessageAdaptionFailure signal instead of
// silently dropped.
type Adapter[U any, M any] struct {
	target  actor.Ref
	convert AdapterFunc[U, M]
}

// NewAdapter builds an Adapter forwarding onto target via convert.
func NewAdapter[U any, M any](target actor.Ref, convert AdapterFunc[U, M]) Adapter[U, M] {
	return Adapter[U, M]{target: target, convert: convert}
}

// Tell converts u and forwards the result (or the failure) to the adapted
// actor.
func (a Adapter[U, M]) Tell(u U) {
	converted, failure := a.convert(u)
	if failure != nil {
		a.target.Tell(&adapterFailureMessage[M]{failure: *failure})
		return
	}
	a.target.Tell(converted)
}
