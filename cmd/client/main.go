package main

import (
	"context"
	"log"

	"github.com/bpay/bpay/internal/client/cli"
	"github.com/bpay/bpay/internal/client/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	cli.NewApp(cfg).Run(context.Background())

}
