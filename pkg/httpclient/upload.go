package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	exaerrors "github.com/tombee/exa/pkg/errors"
)

// Upload PUTs data to a presigned URL, such as the one returned when an
// import is created. The API key is not sent: the URL carries its own
// credentials and may point at a third-party host.
func (c *Connection) Upload(ctx context.Context, uploadURL string, data []byte, contentType string) (resp *Response, err error) {
	ctx, span := c.inst.start(ctx, http.MethodPut, "upload")
	start := time.Now()
	status := 0
	defer func() {
		c.inst.finish(ctx, span, http.MethodPut, status, err, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, exaerrors.Wrap(err, "creating upload request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.dumpRequest(ctx, req, nil)

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, c.transportError(req, err)
	}
	defer httpResp.Body.Close()
	status = httpResp.StatusCode

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.transportError(req, err)
	}
	c.dumpResponse(ctx, httpResp, raw)

	resp, err = decodeResponse(httpResp, raw)
	if err != nil {
		return nil, err
	}
	if err := raiseForStatus(resp); err != nil {
		return nil, err
	}
	return resp, nil
}
