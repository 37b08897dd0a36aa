// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package httpserver

import (
	"encoding/json"
	"github.com/orbs-network/orbs-tally/instrumentation/trace"
	"github.com/orbs-network/orbs-tally/services/presentation"
	"github.com/orbs-network/scribe/log"
	"net/http"
)

func (s *HttpServer) robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, err := w.Write([]byte("User-agent: *\nDisallow: /\n"))
	if err != nil {
		s.logger.Info("error writing robots.txt response", log.Error(err))
	}
}

func (s *HttpServer) filterOn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	for _, f := range s.logger.Filters() {
		if c, ok := f.(log.ConditionalFilter); ok {
			c.On()
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("filter on"))
}

func (s *HttpServer) filterOff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	for _, f := range s.logger.Filters() {
		if c, ok := f.(log.ConditionalFilter); ok {
			c.Off()
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("filter off"))
}

func (s *HttpServer) dumpMetrics(w http.ResponseWriter, r *http.Request) {
	bytes, _ := json.Marshal(s.metricRegistry.ExportAll())
	s.writeJson(w, http.StatusOK, bytes)
}

func (s *HttpServer) getTallyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponseAndLog(w, &httpErr{http.StatusMethodNotAllowed, log.String("method", r.Method), "tally only supports GET"})
		return
	}

	data, err := presentation.ViewOf(s.tally.Latest()).Marshal()
	if err != nil {
		s.writeErrorResponseAndLog(w, &httpErr{http.StatusInternalServerError, log.Error(err), "failed rendering tally"})
		return
	}
	s.writeJson(w, http.StatusOK, data)
}

func (s *HttpServer) refreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorResponseAndLog(w, &httpErr{http.StatusMethodNotAllowed, log.String("method", r.Method), "refresh only supports POST"})
		return
	}

	ctx := trace.NewFromRequest(r.Context(), r)
	if !s.refresher.Trigger(ctx) {
		s.writeErrorResponseAndLog(w, &httpErr{http.StatusTooManyRequests, trace.LogFieldFrom(ctx), "refresh was requested too recently"})
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("refresh started"))
}
