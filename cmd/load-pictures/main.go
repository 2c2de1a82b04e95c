package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"campus-spot/internal/catalog"
	"campus-spot/internal/config"
	"campus-spot/internal/db"

	"github.com/rs/zerolog/log"
)

func main() {
	filePath := flag.String("file", "pictures.csv", "path to pictures csv (pictureid,lat,lon,place,link)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	cfg.SetupLogging()

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open pictures file")
	}
	defer file.Close()

	pictures, err := readPictures(file)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read pictures")
	}
	if gap := firstGap(pictures); gap > 0 {
		log.Warn().Int("missing_id", gap).Msg("picture ids are not contiguous from 1; challenges may draw a missing id")
	}

	written, err := catalog.NewGormCatalog(conn).Upsert(context.Background(), pictures...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to upsert pictures")
	}
	log.Info().Int("pictures", written).Msg("loaded pictures")
}

// readPictures parses the catalog csv. The first row is a header; blank or
// short rows are skipped.
func readPictures(r io.Reader) ([]catalog.Picture, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var pictures []catalog.Picture
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: picture id: %w", i+1, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: latitude: %w", i+1, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: longitude: %w", i+1, err)
		}
		place := strings.TrimSpace(row[3])
		link := strings.TrimSpace(row[4])
		if place == "" || link == "" {
			continue
		}
		pictures = append(pictures, catalog.Picture{
			ID:          id,
			Coordinates: catalog.Coordinates{Lat: lat, Lon: lon},
			Place:       place,
			Link:        link,
		})
	}
	return pictures, nil
}

// firstGap returns the smallest id in [1, len] that is missing, or 0.
func firstGap(pictures []catalog.Picture) int {
	ids := make([]int, 0, len(pictures))
	for _, pic := range pictures {
		ids = append(ids, pic.ID)
	}
	sort.Ints(ids)
	want := 1
	for _, id := range ids {
		if id < want {
			continue
		}
		if id != want {
			return want
		}
		want++
	}
	return 0
}
