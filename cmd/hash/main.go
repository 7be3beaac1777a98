// Package main is a utility for generating bcrypt hashes of user passwords.
// The backend stores only bcrypt hashes in users.password, so this tool is used
// when seeding staff accounts directly in the database without going through
// the API. The password is read from the first argument or, when absent, from
// the first line of stdin.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/auth"
)

func main() {
	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: hash <password>  (or pipe the password on stdin)")
			os.Exit(2)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
