package main

import (
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	userapi "github.com/goliatone/go-user-api"
)

func main() {
	cfg, err := userapi.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr(cfg.DBAddr()),
		pgdriver.WithUser(cfg.DBUser),
		pgdriver.WithPassword(cfg.DBPassword),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(true),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	store := userapi.NewUsersRepository(db)
	service := userapi.NewUserService(store)
	provider := userapi.NewUserProvider(store)
	tokens := userapi.NewTokenService(cfg, nil)

	controller := userapi.NewUserController(service, provider, tokens)
	guard := userapi.NewGuard(cfg, tokens)

	app := fiber.New(fiber.Config{
		AppName: "go-user-api",
	})
	app.Use(requestid.New())
	app.Use(recover.New())

	userapi.RegisterUserRoutes(app, controller, guard)

	log.Fatal(app.Listen(":" + cfg.Port))
}
