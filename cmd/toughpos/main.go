package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/toughpos/config"
	"github.com/talkincode/toughpos/internal/adminapi"
	"github.com/talkincode/toughpos/internal/app"
	"github.com/talkincode/toughpos/internal/webserver"
)

var (
	h         = flag.Bool("h", false, "help usage")
	showVer   = flag.Bool("v", false, "show version")
	conffile  = flag.String("c", "", "config yaml file")
	initcfg   = flag.Bool("initcfg", false, "write default config > /etc/toughpos.yml")
	seed      = flag.Bool("seed", false, "reinstall the demo catalog and exit")
	BuildTime = ""
	Version   = "develop"
)

func printHelp() {
	if *h {
		ustr := fmt.Sprintf("toughpos version: %s, Usage: toughpos -h\nOptions:", Version)
		_, _ = fmt.Fprint(os.Stderr, ustr)
		flag.PrintDefaults()
		os.Exit(0)
	}
}

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("toughpos %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	printHelp()

	if *initcfg {
		if err := config.WriteConfig(config.DefaultAppConfig(), "/etc/toughpos.yml"); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *seed {
		application.Seed(true)
		zap.S().Infof("demo catalog installed, %d products", application.Catalog().Count())
		return
	}

	srv := webserver.NewServer(cfg)
	adminapi.Init(srv, application)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Errorf("toughpos stopped: %s", err.Error())
	}
}
