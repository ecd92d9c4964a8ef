// Command loaddata imports tag and ingredient fixtures from JSON files.
// Rows that already exist are skipped.
//
//	loaddata -ingredients data/ingredients.json -tags data/tags.json
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	tagsPath := flag.String("tags", "", "path to a JSON array of {name, slug}")
	ingredientsPath := flag.String("ingredients", "", "path to a JSON array of {name, measurement_unit}")
	flag.Parse()

	if *tagsPath == "" && *ingredientsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	reference := service.NewReferenceService(db)
	ctx := context.Background()

	if *tagsPath != "" {
		var tags []models.Tag
		if err := readJSON(*tagsPath, &tags); err != nil {
			logging.Fatal().Err(err).Msg("failed to read tags")
		}
		n, err := reference.LoadTags(ctx, tags)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to load tags")
		}
		logging.Info().Int64("inserted", n).Int("total", len(tags)).Msg("tags loaded")
	}

	if *ingredientsPath != "" {
		var ingredients []models.Ingredient
		if err := readJSON(*ingredientsPath, &ingredients); err != nil {
			logging.Fatal().Err(err).Msg("failed to read ingredients")
		}
		n, err := reference.LoadIngredients(ctx, ingredients)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to load ingredients")
		}
		logging.Info().Int64("inserted", n).Int("total", len(ingredients)).Msg("ingredients loaded")
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
