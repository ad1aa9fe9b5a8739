/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"time"
)

// loggingTransport logs every outbound request when verbose output is on.
type loggingTransport struct {
	cfg *Config
	rt  http.RoundTripper
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	startTime := time.Now()

	resp, err := l.rt.RoundTrip(req)
	if err != nil {
		logf(l.cfg, "FETCH: %s %s failed after %s: %v",
			req.Method,
			req.URL,
			time.Since(startTime).Round(time.Millisecond),
			err,
		)

		return nil, err
	}

	logf(l.cfg, "FETCH: %s %s returned %s in %s",
		req.Method,
		req.URL,
		resp.Status,
		time.Since(startTime).Round(time.Millisecond),
	)

	return resp, nil
}

func newHTTPClient(cfg *Config) *http.Client {
	return &http.Client{
		Transport: &loggingTransport{cfg: cfg, rt: http.DefaultTransport},
	}
}
