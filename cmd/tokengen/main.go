// Command tokengen issues access tokens for local development and manual
// testing. Production tokens come from the user subsystem.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/srgulbay/flashbox/internal/config"
	"github.com/srgulbay/flashbox/internal/service/auth"
)

func main() {
	userFlag := flag.String("user", "", "user ID to issue the token for (random when empty)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid user ID %q: %v\n", *userFlag, err)
			os.Exit(1)
		}
		userID = parsed
	}

	secretVar := config.EnvPrefix + "_AUTH_JWT_SECRET"
	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: os.Getenv(secretVar)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating token service (is %s set?): %v\n", secretVar, err)
		os.Exit(1)
	}

	token, err := svc.GenerateToken(context.Background(), userID, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User: %s\nExpires: %s\nToken: %s\n",
		userID, time.Now().Add(*ttl).UTC().Format(time.RFC3339), token)
}
