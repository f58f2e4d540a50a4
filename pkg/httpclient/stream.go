package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tombee/exa/pkg/sse"
)

// Stream issues a request that answers with server-sent events and returns
// a reader over the event stream. The caller must Close the reader.
//
// A failing status is decoded and returned as an *errors.APIError before
// any event is read. Config.Timeout bounds the wait for response headers and
// each gap between reads, not the whole stream; a stalled stream fails with
// a timeout *errors.TransportError wrapping ErrStreamIdle.
func (c *Connection) Stream(ctx context.Context, method, path string, params any) (_ *sse.Reader, err error) {
	ctx, span := c.inst.start(ctx, method, path)
	reqCtx, w := c.watch(ctx)
	defer func() {
		if err != nil {
			w.stop()
		}
	}()
	start := time.Now()
	status := 0
	defer func() {
		c.inst.finish(ctx, span, method, status, err, time.Since(start))
	}()

	req, body, err := c.newRequest(reqCtx, method, path, params)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.dumpRequest(ctx, req, body)

	httpResp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, c.transportError(req, w.cause(err))
	}
	status = httpResp.StatusCode

	if httpResp.StatusCode >= 400 {
		defer httpResp.Body.Close()
		raw, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, c.transportError(req, w.cause(err))
		}
		c.dumpResponse(ctx, httpResp, raw)

		resp, err := decodeResponse(httpResp, raw)
		if err != nil {
			return nil, err
		}
		if err := raiseForStatus(resp); err != nil {
			return nil, err
		}
		w.stop()
		return sse.NewReader(bytes.NewReader(raw)), nil
	}

	return sse.NewReader(&watchedBody{body: httpResp.Body, w: w, wrap: func(err error) error {
		return c.transportError(req, err)
	}}), nil
}

// ErrStreamIdle is the cause of a stream aborted for receiving no data within
// Config.Timeout. It matches context.DeadlineExceeded.
var ErrStreamIdle = fmt.Errorf("stream idle: %w", context.DeadlineExceeded)

// idleWatch cancels a request context when it is not kicked within idle.
type idleWatch struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	timer  *time.Timer
	idle   time.Duration
}

func (c *Connection) watch(ctx context.Context) (context.Context, *idleWatch) {
	ctx, cancel := context.WithCancelCause(ctx)
	w := &idleWatch{ctx: ctx, cancel: cancel, idle: c.cfg.Timeout}
	if w.idle > 0 {
		w.timer = time.AfterFunc(w.idle, func() { cancel(ErrStreamIdle) })
	}
	return ctx, w
}

func (w *idleWatch) kick() {
	if w.timer != nil {
		w.timer.Reset(w.idle)
	}
}

func (w *idleWatch) stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.cancel(nil)
}

// cause replaces err with ErrStreamIdle when the watch fired.
func (w *idleWatch) cause(err error) error {
	if errors.Is(context.Cause(w.ctx), ErrStreamIdle) {
		return ErrStreamIdle
	}
	return err
}

// watchedBody kicks the idle watch on every read that returns data.
type watchedBody struct {
	body io.ReadCloser
	w    *idleWatch
	wrap func(error) error
}

func (b *watchedBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 {
		b.w.kick()
	}
	if err != nil && !errors.Is(err, io.EOF) {
		if cause := b.w.cause(err); cause == ErrStreamIdle {
			err = b.wrap(cause)
		}
	}
	return n, err
}

func (b *watchedBody) Close() error {
	b.w.stop()
	return b.body.Close()
}
