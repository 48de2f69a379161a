package database

import (
	"database/sql"
	"fmt"
	"log"

	"algoarena/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

var DB *sql.DB

func Connect() {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	// Pool sized from config so judge workers and the API share one budget.
	DB.SetMaxOpenConns(config.AppConfig.DBMaxOpenConns)
	DB.SetMaxIdleConns(config.AppConfig.DBMaxIdleConns)
	DB.SetConnMaxLifetime(config.AppConfig.DBConnLifetime)

	if err = DB.Ping(); err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	fmt.Println("Successfully connected to PostgreSQL database!")
}

func Close() {
	if DB != nil {
		DB.Close()
		fmt.Println("Database connection closed.")
	}
}
