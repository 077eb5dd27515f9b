// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakepoints/co"
)

// startSideServer serves an operator facing handler next to the public api.
// It returns the url of root on the bound listener and a function that stops
// the server and waits for it to exit.
func startSideServer(name, addr, root string, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen %s API addr [%v]", name, addr)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("side server stopped", "name", name, "err", err)
		}
	})
	return "http://" + listener.Addr().String() + root, func() {
		srv.Close()
		goes.Wait()
	}, nil
}
