// Command navserver serves path queries on a mesh file over a websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/config"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/logger"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/meshfile"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/pathservice"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/server"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

func main() {
	configPath := flag.String("config", "", "JSON configuration file")
	meshPath := flag.String("mesh", "", "JSON mesh file (required)")
	addr := flag.String("addr", "", "listen address, overrides server.addr")
	flag.Parse()

	if err := run(*configPath, *meshPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "navserver:", err)
		os.Exit(1)
	}
}

func run(configPath, meshPath, addr string) error {
	if meshPath == "" {
		return errors.New("-mesh is required")
	}
	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	polygons, err := meshfile.Load(meshPath)
	if err != nil {
		return err
	}
	opts, err := cfg.MeshOptions(log)
	if err != nil {
		return err
	}
	mesh, err := navmesh.New(polygons, opts...)
	if err != nil {
		return err
	}
	log.Info("mesh loaded",
		zap.String("file", meshPath),
		zap.Int("cells", len(mesh.Cells())),
		zap.Int("portals", mesh.PortalCount()))

	ctx := context.Background()
	paths, err := pathservice.Start(ctx, mesh, pathservice.Options{
		Timeout:   cfg.Server.QueryTimeout(),
		Logger:    log,
		ActorLogs: cfg.Log.ActorLogs,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := paths.Stop(ctx); err != nil {
			log.Warn("path service stop failed", zap.Error(err))
		}
	}()

	l, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}
	log.Info("listening", zap.String("url", "http://"+l.Addr().String()))

	hs := &http.Server{
		Handler:      server.New(paths, mesh, cfg.Server, log),
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- hs.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		log.Error("failed to serve", zap.Error(err))
	case sig := <-sigs:
		log.Info("terminating", zap.Stringer("signal", sig))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}
