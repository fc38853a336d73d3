/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/transflow/internal"
	"github.com/valpere/transflow/internal/config"
	"github.com/valpere/transflow/internal/detector"
	"github.com/valpere/transflow/internal/orchestrator"
	"github.com/valpere/transflow/internal/retriever"
	"github.com/valpere/transflow/internal/store"
	"github.com/valpere/transflow/internal/validator"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string

	translateBackend  string
	googleCredentials string
	googleProjectID   string
	mymemoryEmail     string

	translateDBPath    string
	translateThreshold float64
	translateInterval  time.Duration
	translateValidate  bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate one file end to end",
	Long: `Translate a file in one shot: extract text, segment it into units,
machine-translate each unit with translation-memory and glossary support,
and write the assembled translation to the output file.

Translation memory and glossary live in the database given by --db;
reviewed entries accumulated by earlier runs and by the HTTP service are
reused automatically.

Example:
  transflow translate -i report.pdf -o report.uk.txt -t uk`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		data, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		ctx := context.Background()

		cfg := &config.Config{
			Backend:           translateBackend,
			GoogleCredentials: googleCredentials,
			GoogleProjectID:   googleProjectID,
			MyMemoryEmail:     mymemoryEmail,
		}
		svc, err := buildBackend(cfg)
		if err != nil {
			return err
		}

		content, err := buildExtractor(cfg).Extract(ctx, filepath.Base(inputFile), data)
		if err != nil {
			return fmt.Errorf("failed to extract text: %w", err)
		}

		if sourceLang == "auto" {
			if detected, ok := detector.New().DetectISO(content); ok {
				sourceLang = detected
				fmt.Fprintf(os.Stderr, "Detected source language: %s\n", sourceLang)
			} else {
				return fmt.Errorf("could not detect source language, pass --source")
			}
		}

		db, err := store.New(translateDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		retr := retriever.New(db, translateThreshold)
		orch := orchestrator.New(db, svc, retr, nil, orchestrator.Config{
			Interval: translateInterval,
		}, nil)
		if translateValidate {
			orch.SetValidator(validator.New())
		}

		f := &internal.File{
			ID:               uuid.New().String(),
			ProjectID:        "cli",
			Name:             filepath.Base(inputFile),
			Content:          content,
			Type:             internal.FileWork,
			SourceLang:       sourceLang,
			TargetLang:       targetLang,
			ProcessingStatus: internal.StatusUploaded,
		}
		if err := db.CreateFile(ctx, f); err != nil {
			return fmt.Errorf("failed to store file: %w", err)
		}

		if err := orch.Parse(ctx, f.ID); err != nil {
			return fmt.Errorf("segmentation failed: %w", err)
		}
		if err := orch.Translate(ctx, f.ID); err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		units, err := db.ListUnits(ctx, f.ID)
		if err != nil {
			return fmt.Errorf("failed to load units: %w", err)
		}

		targets := make([]string, 0, len(units))
		failed := 0
		for _, u := range units {
			if u.Target == orchestrator.FailurePlaceholder {
				failed++
			}
			targets = append(targets, u.Target)
		}

		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(outputFile, []byte(strings.Join(targets, "\n")), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("Successfully translated %s to %s (%d units)\n", sourceLang, targetLang, len(units))
		if failed > 0 {
			fmt.Printf("Warning: %d units failed, marked %q in the output\n", failed, orchestrator.FailurePlaceholder)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for translation (required)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")

	translateCmd.Flags().StringVar(&translateBackend, "backend", "mymemory", "Translation backend (google, mymemory)")
	translateCmd.Flags().StringVarP(&googleCredentials, "credentials", "c", "", "Path to Google Cloud credentials")
	translateCmd.Flags().StringVarP(&googleProjectID, "project", "p", "", "Google Cloud Project ID")
	translateCmd.Flags().StringVar(&mymemoryEmail, "mymemory-email", "", "MyMemory email (for higher limits)")

	translateCmd.Flags().StringVar(&translateDBPath, "db", "./data/transflow.db", "Database path for translation memory and glossary")
	translateCmd.Flags().Float64Var(&translateThreshold, "threshold", 0.7, "Minimum similarity for fuzzy TM matches")
	translateCmd.Flags().DurationVar(&translateInterval, "interval", 500*time.Millisecond, "Minimum spacing between backend calls")
	translateCmd.Flags().BoolVar(&translateValidate, "validate", false, "Reject backend output that is not in the target language")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("output")
	translateCmd.MarkFlagRequired("target")
}
