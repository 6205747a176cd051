// Command tokengen mints a bearer token for an existing user id, for local runs and smoke
// tests. It reads AUTH_JWT_SECRET and AUTH_ACCESS_TOKEN_TTL_MINUTES like the API does.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/config"
	"github.com/spec-kit/ticket-admin/internal/repository/memory"
)

func main() {
	userID := flag.String("user", memory.DemoAdminID, "user id to put in the token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to AUTH_ACCESS_TOKEN_TTL_MINUTES")
	flag.Parse()

	if _, err := uuid.Parse(*userID); err != nil {
		log.Fatalf("invalid -user %q: %v", *userID, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lifetime := cfg.Auth.AccessTokenTTL()
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, expiresAt, err := auth.NewTokenManager(cfg.Auth.JWTSecret, lifetime).GenerateToken(*userID)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}
