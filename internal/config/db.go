package config

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var DB *sql.DB

func InitDB() {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC",
		GetEnv("DB_USER", "root"),
		GetEnv("DB_PASSWORD", ""),
		GetEnv("DB_HOST", "127.0.0.1"),
		GetEnv("DB_PORT", "3306"),
		GetEnv("DB_NAME", "delivery"),
	)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal("Gagal buka koneksi MySQL:", err)
	}

	DB.SetMaxOpenConns(GetEnvInt("DB_MAX_OPEN_CONNS", 25))
	DB.SetMaxIdleConns(GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		log.Fatal("MySQL tidak nyambung:", err)
	}

	log.Println("MySQL connected (" + GetEnv("DB_NAME", "delivery") + ")")
}

func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}
