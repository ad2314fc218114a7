// Command create-admin provisions an admin account.  Admins cannot register
// through the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/apparte-kost/internal/config"
	"github.com/iliyamo/apparte-kost/internal/database"
	"github.com/iliyamo/apparte-kost/internal/model"
	"github.com/iliyamo/apparte-kost/internal/repository"
	"github.com/iliyamo/apparte-kost/internal/utils"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "Admin", "display name")
	password := flag.String("password", "", "password; generated when empty")
	flag.Parse()

	log := logrus.New()
	if *email == "" {
		log.Fatal("-email is required")
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Password: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	defer db.Close()
	if err := database.Apply(ctx, db); err != nil {
		log.WithError(err).Fatal("apply schema")
	}

	// emails are unique across admins, users and listings
	owner, err := repository.NewIdentityRepo(db).EmailOwner(ctx, *email)
	switch {
	case err == nil:
		log.WithField("kind", owner.Kind).Fatal("email already registered")
	case !errors.Is(err, repository.ErrNotFound):
		log.WithError(err).Fatal("check email")
	}

	plain := *password
	if plain == "" {
		if plain, err = utils.RandomString(12); err != nil {
			log.WithError(err).Fatal("generate password")
		}
	}
	hash, err := utils.HashPassword(plain, cfg.BcryptCost)
	if err != nil {
		log.WithError(err).Fatal("hash password")
	}

	admin := &model.Admin{Email: *email, PasswordHash: hash, Name: *name}
	if err := repository.NewAdminRepo(db).Create(ctx, admin); err != nil {
		log.WithError(err).Fatal("create admin")
	}

	fmt.Printf("admin created\n  id:       %d\n  email:    %s\n  password: %s\n", admin.ID, admin.Email, plain)
}
