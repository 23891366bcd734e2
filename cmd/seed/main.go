package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/config"
	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/sanctuary-platform/console/backend/internal/moderation"
	"github.com/sanctuary-platform/console/backend/internal/repository"
	"github.com/sanctuary-platform/console/backend/internal/seed"
	"github.com/sanctuary-platform/console/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var siteID int64

	flag.IntVar(&op, "op", 0, "operation to run (1: insert random users, 2: insert random pending content, 3: seed full demo dataset)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.Int64Var(&siteID, "site-id", 0, "site to attach the inserted records to")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not dial, so ping to fail fast on a bad DSN.
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation specified")
	case 1:
		if n <= 0 {
			slog.Error("invalid user count")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("failed to generate user", slog.String("error", err.Error()))
				continue
			}
			if siteID > 0 {
				user.SiteID = &siteID
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("failed to insert user", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("users inserted", slog.Int("count", n-cnt))
	case 2:
		if siteID <= 0 {
			slog.Error("a valid site id is required")
			return
		}
		if n <= 0 {
			slog.Error("invalid record count")
			return
		}

		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("failed to load users", slog.String("error", err.Error()))
			return
		}

		authors := make([]*domain.User, 0)
		for _, user := range users {
			if user.Role == domain.RoleGuide && user.SiteID != nil && *user.SiteID == siteID {
				authors = append(authors, user)
			}
		}
		if len(authors) == 0 {
			slog.Error("the site has no guides to author content", slog.Int64("site_id", siteID))
			return
		}

		kinds := []domain.ContentKind{
			domain.KindMedia,
			domain.KindMassSchedule,
			domain.KindEvent,
			domain.KindNearbyPlace,
		}

		eng := moderation.NewEngine(repo)

		cnt := 0
		for i := 0; i < n; i++ {
			kind := kinds[rand.Intn(len(kinds))]
			author := authors[rand.Intn(len(authors))]

			if _, err := eng.Submit(moderation.SubmitRequest{
				SiteID:   siteID,
				Kind:     kind,
				Payload:  utils.GenerateRandomContentPayload(kind),
				AuthorID: author.ID,
			}); err != nil {
				slog.Error("failed to insert content item", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("pending content inserted", slog.Int("count", cnt))
	case 3:
		seed.SeedDemoData(cfg, repo)
	default:
		slog.Error("unknown operation")
	}
}
