// Package main is a development utility that mints a JWT for an existing user
// so the API can be exercised with curl without going through login. It signs
// with TECNM_JWT_SECRET, exactly like the server, and prints the token together
// with a ready-to-run curl command. The role in the token is informational: the
// server always takes the role from the stored account.
//
//	TECNM_JWT_SECRET=... go run ./scripts/generate-token.go -user 1 -email admin@tecnm.mx
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/auth"
)

func main() {
	userID := flag.Int64("user", 1, "user id (users.id)")
	email := flag.String("email", "admin@tecnm.mx", "user email")
	role := flag.String("role", string(auth.RoleAdmin), "role claim (admin, coordinador, docente)")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	if err := auth.ValidateRole(*role); err != nil {
		log.Fatal(err)
	}
	if err := auth.ValidateJWTSecret(); err != nil {
		log.Fatal(err)
	}

	token, err := auth.GenerateJWT(*userID, *email, auth.Role(*role), *ttl)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("==========================================================")
	fmt.Println("JWT Generated")
	fmt.Println("==========================================================")
	fmt.Printf("\nUser: %d (%s), expires in %s\n", *userID, *email, *ttl)
	fmt.Printf("\nToken: %s\n", token)
	fmt.Println("\n==========================================================")
	fmt.Println("Try it:")
	fmt.Println("==========================================================")
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:8080/api/v1/auth/me\n", token)
}
