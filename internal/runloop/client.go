package runloop

import (
	"errors"
	"fmt"
)

var (
	// ErrRuntimeUnavailable is returned once the run loop has exited. It is
	// fatal for the session.
	ErrRuntimeUnavailable = errors.New("runtime unavailable")

	// ErrRequestOutstanding is returned by Send while the response to the
	// previous request has not been received.
	ErrRequestOutstanding = errors.New("a request is already outstanding")

	// ErrNoRequest is returned by Receive when nothing was sent.
	ErrNoRequest = errors.New("no request outstanding")
)

// Client is the interactive side of the protocol. At most one request is
// outstanding at a time. A Client must be used from a single goroutine.
type Client struct {
	requests  chan<- Request
	responses <-chan Response
	done      <-chan struct{}

	outstanding bool
	closed      bool
}

// Send enqueues exactly one request.
func (c *Client) Send(req Request) error {
	if c.closed {
		return ErrRuntimeUnavailable
	}
	if c.outstanding {
		return fmt.Errorf("send %s: %w", req.Kind, ErrRequestOutstanding)
	}
	select {
	case c.requests <- req:
		c.outstanding = true
		return nil
	case <-c.done:
		return ErrRuntimeUnavailable
	}
}

// Receive blocks until the response to the outstanding request arrives.
// There is no timeout. If the run loop has exited, Receive returns
// ErrRuntimeUnavailable instead of blocking forever.
func (c *Client) Receive() (Response, error) {
	if !c.outstanding {
		if c.closed {
			return Response{}, ErrRuntimeUnavailable
		}
		return Response{}, ErrNoRequest
	}
	resp, ok := <-c.responses
	c.outstanding = false
	if !ok {
		return Response{}, ErrRuntimeUnavailable
	}
	return resp, nil
}

// Exchange sends req and waits for its response.
func (c *Client) Exchange(req Request) (Response, error) {
	if err := c.Send(req); err != nil {
		return Response{}, err
	}
	return c.Receive()
}

// Close tells the run loop that no more requests will be sent. It is safe
// to call more than once.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.requests)
}
