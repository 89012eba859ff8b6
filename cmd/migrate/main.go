package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"celflicks/internal/db"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// migrate applies the embedded schema to DB_ADDR. With -print it only
// writes the DDL to stdout.
func main() {
	printOnly := flag.Bool("print", false, "print the schema instead of applying it")
	flag.Parse()

	if *printOnly {
		fmt.Print(db.Schema())
		return
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	addr := os.Getenv("DB_ADDR")
	if addr == "" {
		log.Fatal("DB_ADDR is required")
	}

	conn, err := sql.Open("postgres", addr)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		log.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(ctx, conn); err != nil {
		log.Fatal(err)
	}

	log.Println("schema applied")
}
