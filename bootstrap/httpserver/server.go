// Copyright 2019 the orbs-tally authors
// This file is part of the orbs-tally library in the Orbs project.
//
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
// The above notice should be included in all copies or substantial portions of the software.

package httpserver

import (
	"context"
	"fmt"
	"github.com/orbs-network/orbs-tally/config"
	"github.com/orbs-network/orbs-tally/instrumentation/metric"
	"github.com/orbs-network/orbs-tally/services/tally"
	"github.com/orbs-network/scribe/log"
	"golang.org/x/net/netutil"
	"net"
	"net/http"
	"net/http/pprof"
	"time"
)

var LogTag = log.String("adapter", "http-server")

type httpErr struct {
	code     int
	logField *log.Field
	message  string
}

type TallyReader interface {
	Latest() *tally.AggregationResult
}

type RefreshTrigger interface {
	Trigger(ctx context.Context) bool
}

type HttpServer struct {
	httpServer     *http.Server
	logger         log.Logger
	tally          TallyReader
	refresher      RefreshTrigger
	stream         http.Handler
	metricRegistry metric.Registry
	config         config.HttpServerConfig

	port   int
	closed chan struct{}
}

type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	err = tc.SetKeepAlive(true)
	if err != nil {
		return nil, err
	}
	err = tc.SetKeepAlivePeriod(35 * time.Second)
	if err != nil {
		return nil, err
	}
	return tc, nil
}

func NewHttpServer(cfg config.HttpServerConfig, logger log.Logger, tally TallyReader, refresher RefreshTrigger, stream http.Handler, metricRegistry metric.Registry) *HttpServer {
	server := &HttpServer{
		logger:         logger.WithTags(LogTag),
		tally:          tally,
		refresher:      refresher,
		stream:         stream,
		metricRegistry: metricRegistry,
		config:         cfg,
		closed:         make(chan struct{}),
	}

	if listener, err := server.listen(server.config.HttpAddress()); err != nil {
		panic(fmt.Sprintf("failed to start http server: %s", err.Error()))
	} else {
		server.port = listener.Addr().(*net.TCPAddr).Port
		server.httpServer = &http.Server{
			Handler: server.createRouter(),
		}

		// We prefer not to use `HttpServer.ListenAndServe` because we want to block until the socket is listening or exit immediately
		go server.serve(listener)
	}

	server.logger.Info("started http server", log.String("address", server.config.HttpAddress()), log.Int("port", server.port))

	return server
}

func (s *HttpServer) serve(listener net.Listener) {
	defer close(s.closed)
	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		s.logger.Error("http server stopped unexpectedly", log.Error(err))
	}
}

func (s *HttpServer) Port() int {
	return s.port
}

func (s *HttpServer) listen(addr string) (net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	var l net.Listener = tcpKeepAliveListener{listener.(*net.TCPListener)}
	if max := s.config.HttpMaxConnections(); max > 0 {
		l = netutil.LimitListener(l, int(max))
	}
	return l, nil
}

func (s *HttpServer) GracefulShutdown(shutdownContext context.Context) {
	if err := s.httpServer.Shutdown(shutdownContext); err != nil {
		s.logger.Error("failed to stop http server gracefully", log.Error(err))
	}
}

func (s *HttpServer) WaitUntilShutdown(shutdownContext context.Context) {
	select {
	case <-s.closed:
	case <-shutdownContext.Done():
	}
}

func (s *HttpServer) createRouter() http.Handler {
	router := http.NewServeMux()
	router.Handle("/api/v1/tally", http.HandlerFunc(wrapHandlerWithCORS(s.getTallyHandler)))
	router.Handle("/api/v1/tally/refresh", http.HandlerFunc(wrapHandlerWithCORS(s.refreshHandler)))
	if s.stream != nil {
		router.Handle("/api/v1/tally/stream", s.stream)
	}
	router.Handle("/metrics", http.HandlerFunc(wrapHandlerWithCORS(s.dumpMetrics)))
	router.Handle("/status", http.HandlerFunc(wrapHandlerWithCORS(s.getStatus)))
	router.Handle("/robots.txt", http.HandlerFunc(s.robots))
	router.Handle("/debug/logs/filter-on", http.HandlerFunc(s.filterOn))
	router.Handle("/debug/logs/filter-off", http.HandlerFunc(s.filterOff))

	if s.config.Profiling() {
		registerPprof(router)
	}

	return router
}

func (s *HttpServer) writeJson(w http.ResponseWriter, code int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		s.logger.Info("error writing response", log.Error(err))
	}
}

func (s *HttpServer) writeErrorResponseAndLog(w http.ResponseWriter, m *httpErr) {
	if m.logField == nil {
		s.logger.Info(m.message)
	} else {
		s.logger.Info(m.message, m.logField)
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(m.code)
	_, err := w.Write([]byte(m.message))
	if err != nil {
		s.logger.Info("error writing response", log.Error(err))
	}
}

func registerPprof(router *http.ServeMux) {
	router.HandleFunc("/debug/pprof/", pprof.Index)
	router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

// Allows handler to be called via XHR requests from any host
func wrapHandlerWithCORS(f func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
		} else {
			f(w, r)
		}
	}
}
