package bollywood

// Producer is a function that creates a new instance of an Actor.
type Producer func() Actor

// Props is a configuration object used to create actors.
type Props struct {
	producer Producer
	trapExit bool
}

// NewProps creates a new Props object with the given actor producer.
func NewProps(producer Producer) *Props {
	if producer == nil {
		panic("bollywood: producer cannot be nil")
	}
	return &Props{
		producer: producer,
	}
}

// WithTrapExit makes the actor receive exit signals from linked actors as
// Exit messages instead of terminating with them.
func (p *Props) WithTrapExit() *Props {
	p.trapExit = true
	return p
}

// TrapsExit reports whether actors built from these props trap exits.
func (p *Props) TrapsExit() bool {
	return p.trapExit
}

// Produce creates a new actor instance using the configured producer.
func (p *Props) Produce() Actor {
	return p.producer()
}
