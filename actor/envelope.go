package actor

// MessageHeader carries out-of-band key/value metadata alongside a message.
type MessageHeader map[string]string

// ReadonlyMessageHeader is the read-only view handed to receive paths.
type ReadonlyMessageHeader interface {
	Get(key string) string
	Keys() []string
	Length() int
}

func (h MessageHeader) Get(key string) string { return h[key] }
func (h MessageHeader) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	return keys
}
func (h MessageHeader) Length() int { return len(h) }

var emptyHeader = MessageHeader{}

// Envelope is the owned AnyMessage of spec §3: a type-erased payload plus
// optional reply-to and sender. Plain messages that need neither are sent
// unwrapped (messageOrEnvelope, following the teacher's convention); tell
// sites wrap only when there is a sender/reply-to/header to carry.
type Envelope struct {
	Header  MessageHeader
	Message interface{}
	Sender  Ref
	ReplyTo Ref
}

// WrapEnvelope ensures message carries envelope metadata, reusing an
// existing *Envelope unchanged.
func WrapEnvelope(message interface{}) interface{} {
	if message == nil {
		return message
	}
	if _, ok := message.(*Envelope); ok {
		return message
	}
	return &Envelope{Message: message}
}

// UnwrapEnvelopeMessage returns the user payload, unwrapping an *Envelope if
// present.
func UnwrapEnvelopeMessage(messageOrEnvelope interface{}) interface{} {
	if env, ok := messageOrEnvelope.(*Envelope); ok {
		return env.Message
	}
	return messageOrEnvelope
}

// UnwrapEnvelopeSender returns the sender Ref carried by an envelope, or the
// null Ref if messageOrEnvelope was not wrapped.
func UnwrapEnvelopeSender(messageOrEnvelope interface{}) Ref {
	if env, ok := messageOrEnvelope.(*Envelope); ok {
		return env.Sender
	}
	return Ref{}
}

// UnwrapEnvelopeReplyTo returns the reply-to Ref carried by an envelope.
func UnwrapEnvelopeReplyTo(messageOrEnvelope interface{}) Ref {
	if env, ok := messageOrEnvelope.(*Envelope); ok {
		return env.ReplyTo
	}
	return Ref{}
}

// UnwrapEnvelopeHeader returns the envelope's header, or an empty header.
func UnwrapEnvelopeHeader(messageOrEnvelope interface{}) ReadonlyMessageHeader {
	if env, ok := messageOrEnvelope.(*Envelope); ok && env.Header != nil {
		return env.Header
	}
	return emptyHeader
}

// View is the borrowed AnyMessageView of spec §3: the read-only shape handed
// into receive paths (dispatcher -> invoker -> pipeline). It never outlives
// the dispatch call that produced it.
type View struct {
	Payload interface{}
	Sender  Ref
	ReplyTo Ref
	Header  ReadonlyMessageHeader
}

// ViewOf builds a View from a raw-or-enveloped message.
func ViewOf(messageOrEnvelope interface{}) View {
	return View{
		Payload: UnwrapEnvelopeMessage(messageOrEnvelope),
		Sender:  UnwrapEnvelopeSender(messageOrEnvelope),
		ReplyTo: UnwrapEnvelopeReplyTo(messageOrEnvelope),
		Header:  UnwrapEnvelopeHeader(messageOrEnvelope),
	}
}

// As attempts a typed downcast of the view's payload.
func As[T any](v View) (T, bool) {
	t, ok := v.Payload.(T)
	return t, ok
}
