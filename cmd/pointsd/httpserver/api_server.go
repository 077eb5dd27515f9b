// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/stakepoints/log"
)

var logger = log.WithContext("pkg", "httpserver")

const (
	maxRequestBodySize = 200 * 1024
	shutdownTimeout    = 5 * time.Second
)

// APIServer is the public api server bound to its listener.
type APIServer struct {
	listener net.Listener
	srv      *http.Server
}

// ListenAPI binds addr for handler. Requests running longer than timeout are
// answered with 503, a zero timeout disables the limit.
func ListenAPI(addr string, handler http.Handler, timeout time.Duration) (*APIServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	if timeout > 0 {
		handler = http.TimeoutHandler(handler, timeout, "request timeout")
	}
	handler = requestBodyLimit(handler)

	return &APIServer{
		listener: listener,
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second},
	}, nil
}

// URL returns the base url of the server.
func (s *APIServer) URL() string {
	return "http://" + s.listener.Addr().String() + "/"
}

// Serve serves requests until ctx is done, then shuts down gracefully.
func (s *APIServer) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve API")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("API server shutdown", "err", err)
			return s.srv.Close()
		}
		return nil
	})
	return g.Wait()
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		h.ServeHTTP(w, r)
	})
}
