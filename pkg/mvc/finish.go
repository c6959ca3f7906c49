package mvc

import (
	"context"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/sender"
)

// SendResponseListener hands the finished response to the send chain.
type SendResponseListener struct {
	chain *sender.Chain
}

// NewSendResponseListener creates a listener over chain.
func NewSendResponseListener(chain *sender.Chain) *SendResponseListener {
	return &SendResponseListener{chain: chain}
}

// Chain returns the send chain so callers can attach more transmitters.
func (l *SendResponseListener) Chain() *sender.Chain { return l.chain }

// Attach implements Aggregate.
func (l *SendResponseListener) Attach(bus *Manager) {
	bus.Attach(EventFinish, l.SendResponse, constants.PrioritySend)
}

// SendResponse is the finish listener.
func (l *SendResponseListener) SendResponse(ctx context.Context, e *Event) (any, error) {
	resp := e.Response()
	if resp == nil {
		return nil, nil
	}
	se := sender.NewSendEvent(resp, e.ResponseWriter())
	se.SetTarget(e)
	if _, err := l.chain.Trigger(ctx, se); err != nil {
		return nil, err
	}
	return nil, nil
}
