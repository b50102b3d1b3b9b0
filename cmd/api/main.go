package main

import (
	"go.uber.org/fx"

	"github.com/almada-laundry/almada/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
