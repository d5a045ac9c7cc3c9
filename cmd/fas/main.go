package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/nirik/fas"
	"github.com/nirik/fas/internal/config"
	"github.com/nirik/fas/internal/infra/database"
	"github.com/nirik/fas/internal/infra/gateway"
	"github.com/nirik/fas/internal/infra/geo"
	"github.com/nirik/fas/internal/infra/repository"
	"github.com/nirik/fas/internal/infra/telemetry"
	"github.com/nirik/fas/internal/present/rest"
	authmw "github.com/nirik/fas/internal/present/rest/middleware"
	"github.com/nirik/fas/internal/service"
	"github.com/nirik/fas/internal/usecase"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "/etc/fas/config.yaml", "path to the configuration file")
	printConfig := flag.Bool("print-config", false, "print the loaded configuration and exit")
	issueToken := flag.String("issue-token", "", "issue a session token for the given username and exit")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *printConfig {
		fas.JsonPrint("config", conf)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Server.EnableTrace {
		shutdown, err := telemetry.SetupTraceProvider(ctx, conf.Server.TraceEndpoint, "fas", version)
		if err != nil {
			panic(err)
		}
		defer shutdown(context.Background())
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}
	if err := database.Migrate(db); err != nil {
		panic("failed to migrate database")
	}
	if err := database.SeedGroups(db, conf.Accounts); err != nil {
		panic(fmt.Sprintf("failed to seed groups: %v", err))
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	var queue gateway.MailQueue
	if conf.Server.AmqpURL != "" {
		queue, err = gateway.NewAMQPQueue(conf.Server.AmqpURL, conf.Server.MailQueue)
		if err != nil {
			panic(fmt.Sprintf("failed to connect to the mail broker: %v", err))
		}
	} else {
		queue = gateway.NewRedisQueue(rdb, conf.Server.MailQueue)
	}
	defer queue.Close()

	mail := gateway.NewMailGateway(queue, conf.Server.MailRatePerSecond, 0)
	go mail.Run(ctx)

	signalService := service.NewSignalService(rdb)
	events := gateway.AuditFanout{signalService}
	if len(conf.Server.KafkaBrokers) > 0 {
		kafka := gateway.NewKafkaPublisher(conf.Server.KafkaBrokers, conf.Server.KafkaTopic)
		defer kafka.Close()
		events = append(events, kafka)
	}

	persons := repository.NewPersonRepository(db)
	groups := repository.NewGroupRepository(db)
	memberships := repository.NewMembershipRepository(db)
	audit := repository.NewAuditRepository(db)
	tx := repository.NewTxManager(db)
	admin := usecase.NewGroupAdminChecker(conf.Accounts, groups, memberships)

	agreementUsecase := usecase.NewAgreementUsecase(conf.Accounts, persons, groups, memberships, audit, tx, geo.NewCountries(), mail, events)
	revocationUsecase := usecase.NewRevocationUsecase(conf.Accounts, persons, groups, memberships, audit, tx, admin, mail, events)
	membershipUsecase := usecase.NewMembershipUsecase(conf.Accounts, persons, groups, memberships, audit, tx, admin, mail, events)
	groupUsecase := usecase.NewGroupUsecase(persons, groups, audit, tx, admin, events)

	sessions := service.NewSessionService(mc, conf.Server.SessionTTL)
	if *issueToken != "" {
		person, err := persons.GetByUsername(ctx, *issueToken)
		if err != nil {
			slog.Error("failed to find person", slog.String("error", err.Error()), slog.String("username", *issueToken))
			os.Exit(1)
		}
		token, err := sessions.Issue(ctx, person)
		if err != nil {
			slog.Error("failed to issue session", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}
	handler := rest.NewHandler(conf.Accounts, agreementUsecase, revocationUsecase, membershipUsecase, groupUsecase, signalService)

	e := echo.New()
	e.HideBanner = true
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("fas"))
	}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(authmw.NewAuthMiddleware(sessions).IdentifyIdentity)
	handler.RegisterRoutes(e)

	go func() {
		if err := e.Start(conf.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", slog.String("error", err.Error()))
	}
}
