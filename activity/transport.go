package activity

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
)

// Transport registers every round trip with a Tracker. A request settles when
// the transport fails, when its response body is read to EOF or closed, or
// when its context is cancelled, whichever comes first.
type Transport struct {
	Base    http.RoundTripper // http.DefaultTransport when nil
	Tracker *Tracker
}

var _ http.RoundTripper = (*Transport)(nil)

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	_, settle := t.Tracker.Start()
	stop := context.AfterFunc(req.Context(), settle)
	done := func() {
		stop()
		settle()
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		done()
		return nil, err
	}
	if resp.Body == nil {
		done()
		return resp, nil
	}
	resp.Body = &trackedBody{ReadCloser: resp.Body, done: done}
	return resp, nil
}

type trackedBody struct {
	io.ReadCloser
	once sync.Once
	done func()
}

func (b *trackedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if errors.Is(err, io.EOF) {
		b.once.Do(b.done)
	}
	return n, err
}

func (b *trackedBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.done)
	return err
}
