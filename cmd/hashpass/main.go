package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// hashpass prints the bcrypt hash to put in AUTH_BASIC_PASS_HASH. With
// -check it verifies a password against an existing hash instead.
func main() {
	check := flag.String("check", "", "hash to verify the password against")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	fmt.Fprint(os.Stderr, "password: ")
	plain, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && plain == "" {
		log.Fatal(err)
	}
	plain = strings.TrimRight(plain, "\r\n")
	if plain == "" {
		log.Fatal("empty password")
	}

	if *check != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(*check), []byte(plain)); err != nil {
			fmt.Println("FAIL:", err)
			os.Exit(1)
		}
		fmt.Println("SUCCESS")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), *cost)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(hash))
}
