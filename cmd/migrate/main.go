package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/lib/pq"
	"github.com/limbo/studytrack/internal/repository"
	"github.com/limbo/studytrack/pkg/config"
	"github.com/pressly/goose"
)

// Usage: migrate [-dir ./migrations] up|down|status|version|redo
func main() {
	dir := flag.String("dir", "./migrations", "directory with migration files")
	flag.Parse()
	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	db, err := sql.Open("postgres", dbCfg.ConnString()+"?sslmode="+cfg.GetStringOr("POSTGRES_SSLMODE", "disable"))
	if err != nil {
		log.Fatal("opening database error: " + err.Error())
	}
	defer db.Close()
	if err = goose.SetDialect("postgres"); err != nil {
		log.Fatal(err)
	}
	if err = goose.Run(command, db, *dir, flag.Args()[min(1, flag.NArg()):]...); err != nil {
		log.Fatal("migration "+command+" error: ", err)
	}
}
