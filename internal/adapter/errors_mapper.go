// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	var sentinel error
	switch resp.StatusCode() {
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusUnprocessableEntity:
		sentinel = ErrUnprocessable
	case http.StatusTooManyRequests:
		sentinel = ErrTooManyRequests
	case http.StatusBadGateway:
		sentinel = ErrBadGateway
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		sentinel = ErrServiceUnavailable
	case http.StatusInternalServerError:
		sentinel = ErrInternalServerError
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}

	return fmt.Errorf("%w: %s", sentinel, body)
}

// mapBatchError maps a failed batch response. A body naming the rejected
// change becomes a [BatchError].
func mapBatchError(resp *resty.Response) error {
	err := mapHTTPError(resp)
	if err == nil {
		return nil
	}

	var batchResp struct {
		Error string `json:"error"`
		Index *int   `json:"index"`
	}
	if json.Unmarshal(resp.Body(), &batchResp) != nil || batchResp.Index == nil || *batchResp.Index < 0 {
		return err
	}
	return &BatchError{Index: *batchResp.Index, Err: err}
}
