package main

import (
	"errors"
	"flag"
	"log"

	"shop_backend/internal/pkg/config"
	"shop_backend/pkg/database"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// 用法: migrate [-path migrations] [up|down|force N]
func main() {
	path := flag.String("path", "migrations", "migration files directory")
	version := flag.Int("version", -1, "version for force")
	flag.Parse()

	config.LoadConfig()

	m, err := migrate.New("file://"+*path, database.MigrateDSN(config.GlobalConfig.Database))
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		// 只回滚一步，避免误删全部表
		err = m.Steps(-1)
	case "force":
		if *version < 0 {
			log.Fatal("force requires -version")
		}
		err = m.Force(*version)
	default:
		log.Fatalf("unknown command %q", cmd)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatalf("database is dirty at version %d, fix it and run: migrate -version %d force", dirty.Version, dirty.Version-1)
		}
		log.Fatal(err)
	}

	v, isDirty, _ := m.Version()
	log.Printf("Migration %s done, version=%d dirty=%v", cmd, v, isDirty)
}
