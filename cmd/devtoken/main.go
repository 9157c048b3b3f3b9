// Command devtoken issues an access token signed with JWT_SECRET_KEY for local testing.
//
//	go run ./cmd/devtoken -user 0190... -employee 0190... -role manager
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/jwt"
	"github.com/joho/godotenv"
)

func main() {
	userID := flag.String("user", "", "user id (required)")
	employeeID := flag.String("employee", "", "employee id, empty for users without a profile")
	role := flag.String("role", string(user.RoleEmployee), "owner, manager or employee")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET_KEY and -user are required")
		os.Exit(2)
	}
	if !user.Role(*role).IsValid() {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	actor := user.Actor{UserID: *userID, Role: user.Role(*role)}
	if *employeeID != "" {
		actor.EmployeeID = employeeID
	}

	token, expiresAt, err := jwt.NewJWTService(secret, *ttl).GenerateAccessToken(actor)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
