// Command navtui shows a mesh file and a path in the terminal. Arrow keys move the goal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/config"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/logger"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/meshfile"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/termview"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

func main() {
	configPath := flag.String("config", "", "JSON configuration file")
	meshPath := flag.String("mesh", "", "JSON mesh file (required)")
	flag.Parse()

	if err := run(*configPath, *meshPath); err != nil {
		fmt.Fprintln(os.Stderr, "navtui:", err)
		os.Exit(1)
	}
}

func run(configPath, meshPath string) error {
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
	// the terminal belongs to the screen: log only to a file
	if cfg.Log.File == "" {
		cfg.Log.Level = "fatal"
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

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	view := termview.NewViewer(mesh)
	view.Fit(s.Size())
	view.Draw(s)
	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventResize:
			view.Fit(s.Size())
			s.Sync()
		case *tcell.EventKey:
			if !view.HandleKey(ev) {
				log.Info("quit", zap.Int("pathPoints", len(view.Path)))
				return nil
			}
		case nil:
			return nil
		}
		view.Draw(s)
	}
}
