package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/utilbot/juxtapose/internal/appinit"
	"github.com/utilbot/juxtapose/internal/cache"
	"github.com/utilbot/juxtapose/internal/compose"
	"github.com/utilbot/juxtapose/internal/controller"
	"github.com/utilbot/juxtapose/internal/fetch"
	"github.com/utilbot/juxtapose/internal/keyring"
	"github.com/utilbot/juxtapose/internal/preview"
	"github.com/utilbot/juxtapose/internal/service"
	"github.com/utilbot/juxtapose/internal/token"
	"github.com/utilbot/juxtapose/internal/utils/timingutils"
)

func main() {
	var configPath string

	serveFunc := getServeFunc(&configPath)

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "Start as server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "conf",
						Aliases:     []string{"c"},
						Value:       "serve.yaml",
						EnvVars:     []string{"JUXTAPOSE_CONF"},
						Destination: &configPath,
					},
				},
				Action: serveFunc,
			},
		},
	}

	// Run the cli helper
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func getServeFunc(configPath *string) func(c *cli.Context) error {
	serveFunc := func(c *cli.Context) error {
		// Load serve info from `serve.yaml`
		serverInfo, err := appinit.LoadServerInfo(*configPath)
		if err != nil {
			return err
		}

		timingutils.Enabled = serverInfo.ShowTimingLogs

		// Load the master key material and derive the service keys
		keyMaterial, err := appinit.LoadMasterKeyMaterial(serverInfo.KeyFile)
		if err != nil {
			return err
		}

		kr, err := keyring.New(keyMaterial)
		if err != nil {
			return err
		}

		tokenSvc := token.NewService(kr)

		// Instantiate the fetcher shared by the image pipeline and the file previews
		fetcher := fetch.NewFetcher(serverInfo.Fetch.MaxBytes, time.Duration(serverInfo.Fetch.TimeoutMs)*time.Millisecond)

		// Instantiate the compositor and start its worker pool
		compositor, err := compose.NewCompositor(serverInfo.Compose.TargetWidth, serverInfo.Compose.MaxPixels)
		if err != nil {
			return err
		}

		pool := compose.NewPool(compositor, serverInfo.Compose.NumWorkers)
		if err := pool.Start(); err != nil {
			return err
		}

		// Instantiate the resolve cache
		var resolveCache cache.ResolveCache = &cache.NoopCache{}
		if serverInfo.Cache.Enabled {
			resolveCache, err = cache.NewSQLResolveCache(serverInfo.Cache.DSN, time.Duration(serverInfo.Cache.TTLMinutes)*time.Minute)
			if err != nil {
				return err
			}
		}

		baseURL, err := url.Parse(serverInfo.BaseURL)
		if err != nil {
			return errors.Wrap(err, "failed to parse the base URL")
		}

		// Instantiate a juxtapose service
		serviceInfo := &service.Info{
			TokenSvc: tokenSvc,
			Fetcher:  fetcher,
			Pool:     pool,
			Cache:    resolveCache,
			BaseURL:  baseURL,
		}

		juxtaposeSvc := &service.JuxtaposeService{ServiceInfo: serviceInfo}

		// Instantiate controllers
		pingPongController := &controller.PingPongController{}

		juxtaposeController := &controller.JuxtaposeController{
			GroupName:    "/juxtapose",
			JuxtaposeSvc: juxtaposeSvc,
		}

		previewController := &controller.PreviewController{
			GroupName: "/preview",
			Renderer:  &preview.Renderer{Fetcher: fetcher},
		}

		// Register controller handlers
		router := gin.Default()
		router.Use(controller.CORSMiddleware())
		apiv1Group := router.Group("/api/v1")
		if err := controller.RegisterHandlers(apiv1Group, pingPongController); err != nil {
			return err
		}
		if err := controller.RegisterHandlers(apiv1Group, juxtaposeController); err != nil {
			return err
		}
		if err := controller.RegisterHandlers(apiv1Group, previewController); err != nil {
			return err
		}

		// Start the HTTP server
		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%v", serverInfo.Port),
			Handler: router,
		}

		chanError := make(chan error)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil {
				chanError <- errors.Wrap(err, "failed to start the HTTP server")
			}
		}()

		// Listen Ctrl+C signals. On receiving a signal stops the app elegantly
		chanQuit := make(chan os.Signal, 1)
		signal.Notify(chanQuit, os.Interrupt)
		select {
		case err := <-chanError:
			return err
		case <-chanQuit:
			log.Infoln("Received an interrupt signal. Quitting the app...")

			// Stop the HTTP server elegantly
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			log.Infoln("Stopping the HTTP server...")
			if err := httpServer.Shutdown(ctx); err != nil {
				return errors.Wrap(err, "failed to stop the HTTP server")
			}

			// Stop the composition worker pool
			log.Infoln("Stopping the composition worker pool...")
			wg, err := pool.Stop()
			if err != nil {
				return err
			}
			wg.Wait()
		}

		return nil
	}

	return serveFunc
}
