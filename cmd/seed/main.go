package main

import (
	"context"
	"errors"
	"os"

	"pattern-sphere-be/internal/bootstrap"
	"pattern-sphere-be/internal/config"
	"pattern-sphere-be/internal/dto"
	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/pkg/apperror"

	"github.com/fatih/color"
)

// Seeds the title feature and the Basic template through the services, so
// the value table is provisioned the same way the API does it.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	seedLogger := logger.NewIsolatedLogger("seed.log")

	uowFactory, _, err := bootstrap.OpenStore(cfg)
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	container := bootstrap.NewContainer(uowFactory, cfg, seedLogger)
	defer container.Close()

	color.Cyan("Seeding catalog...")

	_, err = container.FeatureService.Create(ctx, &dto.CreateFeatureRequest{
		Name:     "title",
		Type:     "string",
		Required: true,
		Notes:    "Display name of a pattern",
	})
	report("feature title", err)

	_, err = container.TemplateService.Create(ctx, &dto.CreateTemplateRequest{
		Name:  "Basic",
		Notes: "A pattern with a title only",
	})
	report("template Basic", err)

	color.Green("Seeding complete.")
}

func report(what string, err error) {
	switch {
	case err == nil:
		color.Green("  created %s", what)
	case errors.Is(err, apperror.ErrDuplicateName):
		color.Yellow("  %s already exists, skipped", what)
	default:
		color.Red("  failed to create %s: %v", what, err)
		os.Exit(1)
	}
}
