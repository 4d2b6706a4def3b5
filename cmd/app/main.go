package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bagdasarian/campus-teams/internal/approval"
	"github.com/bagdasarian/campus-teams/internal/broker"
	"github.com/bagdasarian/campus-teams/internal/clients"
	"github.com/bagdasarian/campus-teams/internal/config"
	"github.com/bagdasarian/campus-teams/internal/db"
	"github.com/bagdasarian/campus-teams/internal/handler"
	"github.com/bagdasarian/campus-teams/internal/handler/middleware"
	"github.com/bagdasarian/campus-teams/internal/handler/server"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/bagdasarian/campus-teams/internal/repository/postgres"
	"github.com/bagdasarian/campus-teams/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.App.ServiceName, cfg.App.Env)
	if err := run(cfg, log); err != nil {
		log.Error("service stopped with error", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Info("service stopped")
	log.Sync()
}

func run(cfg *config.Config, log *logger.Logger) error {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := db.MustLoad(ctx, cfg)
	log.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.DBName)
	defer database.Close()

	teamRepo := postgres.NewTeamRepository(database)
	campusRepo := postgres.NewCampusRepository(database)
	txManager := postgres.NewTxManager(database)

	publisher := broker.NewPublisher(cfg, log)
	defer publisher.Close()

	emitter := broker.NewAuditPublisher(publisher)
	reducer := approval.NewReducer(txManager, emitter, log)
	consumer := broker.NewConsumer(cfg, approval.NewHandler(reducer, cfg.Consumer.HandlerTimeout, log), log)

	authClient := clients.NewAuthClient(cfg, log)
	competitionsClient := clients.NewCompetitionsClient(cfg, log)

	teamService := service.NewTeamService(teamRepo, campusRepo, authClient, publisher, log)
	memberService := service.NewMemberService(teamRepo, authClient, publisher, log)
	competitionService := service.NewCompetitionService(teamRepo, competitionsClient)

	h := handler.NewHandler(teamService, memberService, competitionService, consumer, log)
	router := server.NewRouter(h, middleware.NewAuth(cfg.Auth, log), log)
	srv := server.NewServer(router, cfg.Server.Addr, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(gctx)
	})
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
