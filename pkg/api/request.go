package api

import (
	"github.com/creativehub/nexus/pkg/client"
	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/creativehub/nexus/pkg/logger"
	"github.com/go-resty/resty/v2"
)

const apiPrefix = "/api/v1"

// newRequest starts a request, failing fast while the client is disconnected
func newRequest() (*resty.Request, error) {
	c, err := client.Ready()
	if err != nil {
		return nil, err
	}
	return c.R(), nil
}

// do executes req and converts transport and API failures into CLIErrors
func do(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, apiPrefix+path)
	if err != nil {
		cliErr := clierrors.Classify(err)
		logger.Warn("Request failed", "method", method, "path", path, "type", cliErr.Type, "err", err)
		return nil, cliErr
	}
	if resp.IsError() {
		cliErr := clierrors.FromResponse(resp.StatusCode(), resp.Body())
		logger.Debug("API error", "method", method, "path", path, "status", resp.StatusCode(), "code", cliErr.Code)
		return resp, cliErr
	}
	return resp, nil
}

// call is the common path: build, send, and decode into result
func call(method, path string, body, result interface{}, query map[string]string) error {
	req, err := newRequest()
	if err != nil {
		return err
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	_, err = do(req, method, path)
	return err
}
