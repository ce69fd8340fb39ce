// staffctl provisions chef and admin accounts from the command line.
// Customers self-register through the API; staff accounts are created
// by an operator with database access, so this never goes near HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/qrdine/qrdine-server/internal/config"
	"github.com/qrdine/qrdine-server/internal/database"
	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/repository"
	"github.com/qrdine/qrdine-server/internal/utils"
)

func main() {
	username := flag.String("username", "", "login name for the new staff account")
	password := flag.String("password", "", "initial password")
	email := flag.String("email", "", "contact email")
	phone := flag.String("phone", "", "contact phone (optional)")
	role := flag.String("role", model.RoleChef, "account role: chef or admin")
	flag.Parse()

	if *username == "" || *password == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *role != model.RoleChef && *role != model.RoleAdmin {
		log.Fatalf("role must be %q or %q", model.RoleChef, model.RoleAdmin)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	hash, err := utils.HashPassword(*password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := repository.NewUserRepo(db).CreateStaff(ctx, *username, *email, *phone, *role, hash)
	if err == repository.ErrUsernameExists {
		log.Fatalf("username %q is already taken", *username)
	}
	if err != nil {
		log.Fatalf("create staff account: %v", err)
	}
	fmt.Printf("created %s account %q (id=%d)\n", *role, *username, id)
}
