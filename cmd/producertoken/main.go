// Command producertoken issues a bearer token that lets a producer post to
// /v1/notifications/events. It needs JWT_PRIVATE_KEY_PATH and
// JWT_PUBLIC_KEY_PATH.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/contoso-notify/internal/config"
	jwtinfra "github.com/contoso-notify/internal/infrastructure/jwt"
	"github.com/joho/godotenv"
)

func main() {
	producer := flag.String("producer", "", "producer name recorded in the token")
	scope := flag.String("scope", jwtinfra.ScopePublish, "space-separated scopes")
	flag.Parse()

	if *producer == "" {
		log.Fatal("-producer is required")
	}
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.JWTPrivateKeyPath == "" {
		log.Fatal("JWT_PRIVATE_KEY_PATH is required to sign tokens")
	}
	p, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("load keys: %v", err)
	}
	token, err := p.Sign(*producer, *scope)
	if err != nil {
		log.Fatalf("sign: %v", err)
	}
	fmt.Println(token)
}
