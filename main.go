package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"saree-api/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		logrus.WithError(err).Error("saree-api failed")
		os.Exit(1)
	}
}
