package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/odontolegal/odontolegal-api/api/handlers"
	"github.com/odontolegal/odontolegal-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil {
		zap.S().Fatalw("failed to initialize odontolegal-api", "error", err)
	}

	zap.S().Infow("odontolegal-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseUrl,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%v", a.Config.Port),
		Handler: a.Router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("server stopped unexpectedly", "error", err)
		}
	}()

	// drain in-flight generation requests before tearing down the browser
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zap.S().Info("shutting down odontolegal-api")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Warnw("failed to shut down http server cleanly", "error", err)
	}
	a.Shutdown(ctx)
}
