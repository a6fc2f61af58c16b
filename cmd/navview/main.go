// Command navview opens a window to draw, edit and query a navigation mesh.
package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/config"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/editor"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/logger"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/meshfile"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/viewer"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

func main() {
	configPath := flag.String("config", "", "JSON configuration file")
	meshPath := flag.String("mesh", "", "JSON mesh file, created on save when missing")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	l, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer l.Sync()

	var polygons [][]geometry.Vector2D
	if *meshPath != "" {
		polygons, err = meshfile.Load(*meshPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			l.Info("starting an empty mesh", zap.String("file", *meshPath))
		case err != nil:
			l.Fatal("cannot load mesh", zap.Error(err))
		}
	}
	opts, err := cfg.MeshOptions(l)
	if err != nil {
		l.Fatal("invalid mesh options", zap.Error(err))
	}
	ed, err := editor.New(polygons, opts...)
	if err != nil {
		l.Fatal("cannot build mesh", zap.Error(err))
	}

	ebiten.SetWindowSize(cfg.Viewer.Width, cfg.Viewer.Height)
	ebiten.SetWindowTitle("Navmesh editor")
	if err := ebiten.RunGame(viewer.NewGame(cfg, ed, *meshPath, l)); err != nil {
		l.Fatal("viewer stopped", zap.Error(err))
	}
}
