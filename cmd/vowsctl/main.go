package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vows-and-wishes/config"

	"github.com/sirupsen/logrus"
)

const usage = `Usage: vowsctl <command> [flags]

Commands:
  services      list services (--category, --location, --search)
  search        type a search per line, results follow each quiet period
  show          show one service and its booked dates
  availability  print booked dates and open slots of a service
  book          book a service (--service, --date, --time, --mode)
  chat          print the WhatsApp link for a service
  login         sign in and remember the session
  register      create an account and sign in
  profile       print or update the signed-in user
  logout        end the session
  seed          ask the backend to load its sample catalog
`

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetOutput(os.Stderr)

	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name, args := os.Args[1], os.Args[2:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	if err := cmd(ctx, cfg, log, args); err != nil {
		var shown reportedError
		if !errors.As(err, &shown) {
			log.Errorf("%s: %v", name, err)
		}
		os.Exit(1)
	}
}
