package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"stockdesk/config"
	"stockdesk/internal/pkg/database"
)

// Aplica as migrações de sql/ (tabela document_sequences do backend postgres).
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Usando apenas o ambiente do sistema: %v", err)
	}

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./sql", "diretório com os arquivos de migração")
	flag.Parse()

	dbURL, err := config.LoadDatabaseURL()
	if err != nil {
		log.Fatalf("goose: %v", err)
	}

	db, err := database.NewPostgresDB(dbURL)
	if err != nil {
		log.Fatalf("goose: falha ao conectar ao DB: %v\n", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: falha ao fechar o DB: %v\n", err)
		}
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose: %v", err)
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s: ok\n", command)
}
