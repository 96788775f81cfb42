// Command create-admin seeds an admin account for the payment review
// dashboard. Run once per admin:
//
//	create-admin -username reviewer -password 's3cret'
package main

import (
	"errors"
	"flag"
	"os"

	"tryout-service/internal/config"
	"tryout-service/internal/hashing"
	"tryout-service/internal/model"
	"tryout-service/internal/repository/scylla"
	"tryout-service/internal/util"
)

func main() {
	username := flag.String("username", "", "admin username")
	password := flag.String("password", "", "admin password (or set ADMIN_PASSWORD)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if *username == "" || *password == "" {
		util.Fatal("username and password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		util.Fatal("Failed to load configuration", util.ErrorField(err))
	}
	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	client, err := scylla.NewScyllaClient(cfg)
	if err != nil {
		util.Fatal("Failed to connect to ScyllaDB", util.ErrorField(err))
	}
	defer client.Close()

	passwordHash, err := hashing.HashAdminPassword(*password)
	if err != nil {
		util.Fatal("Failed to hash password", util.ErrorField(err))
	}

	admins := scylla.NewAdminRepository(client)
	admin := &model.AdminUser{
		Username:     *username,
		PasswordHash: passwordHash,
		Role:         model.AdminRole,
	}
	if err := admins.CreateAdmin(admin); err != nil {
		if errors.Is(err, scylla.ErrAlreadyExists) {
			util.Fatal("Admin username already exists", util.String("username", *username))
		}
		util.Fatal("Failed to create admin", util.ErrorField(err))
	}

	util.Info("Admin account created", util.String("username", *username))
}
