package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/halsokollen/ingredicheck/backend/config"
	"github.com/halsokollen/ingredicheck/backend/internal/reference"
)

// Synchronizes the reference dataset files with the S3 bucket. -pull fetches
// the latest snapshots; -push validates the local files and uploads them.
func main() {
	pull := flag.Bool("pull", false, "Download the datasets from S3")
	push := flag.Bool("push", false, "Validate and upload the local datasets to S3")
	flag.Parse()

	if *pull == *push {
		log.Fatal("specify exactly one of -pull or -push")
	}

	cfg := &config.Config{}
	config.LoadAnalysisSettings(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s3cfg, err := config.NewS3Config(ctx)
	if err != nil {
		log.Fatalf("failed to configure S3: %v", err)
	}

	datasets := map[string]string{
		"substance_guide.json":      cfg.SubstanceGuidePath,
		"novel_food_catalogue.json": cfg.NovelFoodPath,
		"known_safe.json":           cfg.KnownSafePath,
	}

	if *pull {
		for key, path := range datasets {
			if err := s3cfg.DownloadDataset(ctx, key, path); err != nil {
				log.Fatalf("failed to download %s: %v", key, err)
			}
			log.Printf("downloaded %s -> %s", key, path)
		}
	}

	// Validate before and after: a snapshot that does not load is useless
	// to the analyzer, whichever direction it traveled.
	lib, err := reference.Load(cfg.SubstanceGuidePath, cfg.NovelFoodPath, cfg.KnownSafePath)
	if err != nil {
		log.Fatalf("dataset validation failed: %v", err)
	}
	log.Printf("datasets valid: %d substance guide entries, %d novel food entries",
		len(lib.SubstanceGuide), len(lib.NovelFoods))

	if *push {
		for key, path := range datasets {
			if err := s3cfg.UploadDataset(ctx, path, key); err != nil {
				log.Fatalf("failed to upload %s: %v", key, err)
			}
			log.Printf("uploaded %s -> s3://%s/%s", path, s3cfg.BucketName, key)
		}
	}
}
