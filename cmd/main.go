package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nasapuff/pkg/apod"
	"nasapuff/pkg/config"
	"nasapuff/pkg/handler"
	repo "nasapuff/pkg/repository"
	srvc "nasapuff/pkg/service"
	"nasapuff/pkg/state"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	cnf, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %s", err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := repo.Open(ctx, cnf.DB)
	cancel()
	if err != nil {
		logrus.Fatalf("failed to initialize db: %s", err.Error())
	}
	if db == nil {
		logrus.Info("picture history disabled")
	}

	repos := repo.NewRepository(db)
	client := apod.NewClient(nil, cnf.AstroURL, cnf.ApiKey)
	current := state.New()

	refresher := srvc.NewRefresher(client, current, repos.Picture, logrus.StandardLogger(), cnf.RefreshInterval)
	refresher.Start(context.Background())

	handlers := handler.NewHandler(srvc.NewService(repos, client, current))

	srv := newServer(cnf.Port, handlers.InitRoutes())
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Infof("nasapuff listening on :%s, refreshing every %s", cnf.Port, cnf.RefreshInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Printf("nasapuff Shutting Down")

	refresher.Stop()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	if db != nil {
		if err := db.Close(); err != nil {
			logrus.Errorf("error occured on db connection close: %s", err.Error())
		}
	}
}

type server struct {
	httpSrv *http.Server
}

func newServer(port string, h http.Handler) *server {
	return &server{httpSrv: &http.Server{
		Addr:           ":" + port,
		Handler:        h,
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    10 * time.Second,
	}}
}

func (s *server) Run() error {
	return s.httpSrv.ListenAndServe()
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
