// Copyright (C) 2024 FeatherDB Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/featherdb/fdb/internal/fdbconfig"
	"github.com/featherdb/fdb/internal/fdblog"
	"github.com/featherdb/fdb/internal/fdbmetrics"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("c", "fdbd.yaml", "cluster topology config file")
	tabletName := fs.String("name", "", "this process's tablet name, must match an entry in the config file")
	fs.Usage = usage(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := fdblog.NewStdLogger(fmt.Sprintf("fdbd[%s] ", *tabletName))

	cfg, err := fdbconfig.Load(*configPath)
	if err != nil {
		return fmt.Errorf("fdbd: %w", err)
	}
	self, ok := cfg.TabletByName(*tabletName)
	if !ok {
		return fmt.Errorf("fdbd: no tablet named %q in %s", *tabletName, *configPath)
	}

	fdbmetrics.MustRegister(prometheus.DefaultRegisterer)

	t := newTabletServer(cfg, self, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go t.runGCLoop(ctx)

	srv := &http.Server{Addr: self.Addr, Handler: t.handler()}
	serveErr := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s, tables=%v", self.Addr, self.Tables)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutting down")
		return srv.Shutdown(context.Background())
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("fdbd: %w", err)
		}
		return nil
	}
}
