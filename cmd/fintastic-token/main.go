// Command fintastic-token mints a bearer token for an owner id, for local
// development and scripted clients.
package main

import (
	"flag"
	"fmt"
	"os"

	"fintastic/internal/auth"
	"fintastic/internal/cli"
	"fintastic/internal/config"
	applog "fintastic/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	owner := flag.String("owner", "", "owner id to put in the token subject")
	secret := flag.String("secret", cfg.JWTSecret, "signing secret (defaults to JWT_SECRET)")
	expiresIn := flag.Duration("expires-in", cfg.JWTExpiresIn, "token lifetime")
	flag.Parse()

	logger := cli.SetupLogger(os.Stderr, cfg.LogLevel, applog.ComponentAuth)

	if *owner == "" {
		fmt.Fprintln(os.Stderr, "usage: fintastic-token -owner <id> [-secret s] [-expires-in 720h]")
		os.Exit(2)
	}

	tokens, err := auth.NewTokenService(*secret, *expiresIn)
	if err != nil {
		logger.Error("Failed to create token service", applog.FieldError, err)
		os.Exit(1)
	}
	token, err := tokens.GenerateToken(*owner)
	if err != nil {
		logger.Error("Failed to generate token", applog.FieldOwnerID, *owner, applog.FieldError, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
