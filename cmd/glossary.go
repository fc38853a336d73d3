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
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valpere/transflow/internal"
	"github.com/valpere/transflow/internal/store"
)

var glossaryDBPath string

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the terminology glossary",
	Long: `Curate the term base used during translation. Every unit that contains
a glossary term gets the term pair passed to the backend, pinning proper
nouns, product names and domain vocabulary to one agreed translation.`,
}

var (
	glossaryListSource string
	glossaryListTarget string
)

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show glossary terms",
	Long:  `Show glossary terms, optionally narrowed to one language pair.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		terms, err := db.ListGlossaryTerms(context.Background(), glossaryListSource, glossaryListTarget)
		if err != nil {
			return fmt.Errorf("failed to list glossary: %w", err)
		}
		if len(terms) == 0 {
			fmt.Println("No glossary terms found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TERM\tTRANSLATION\tLANGS\tDOMAIN\tID")
		for _, term := range terms {
			fmt.Fprintf(w, "%s\t%s\t%s→%s\t%s\t%s\n",
				term.Source, term.Target, term.SourceLang, term.TargetLang, term.Domain, term.ID)
		}
		return w.Flush()
	},
}

var (
	glossaryAddSource string
	glossaryAddTarget string
	glossaryAddDomain string
)

var glossaryAddCmd = &cobra.Command{
	Use:   "add <term> <translation>",
	Short: "Pin a term to a translation",
	Long: `Pin a source-language term to its agreed target-language translation.
Adding the same term again replaces the stored translation.

Example:
  transflow glossary add "Kyiv" "Київ" -s en -t uk --domain geography`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if glossaryAddSource == "" || glossaryAddTarget == "" {
			return fmt.Errorf("both --source and --target language codes are required")
		}

		db, err := store.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		term := &internal.GlossaryTerm{
			ID:         uuid.New().String(),
			Source:     args[0],
			Target:     args[1],
			SourceLang: glossaryAddSource,
			TargetLang: glossaryAddTarget,
			Domain:     glossaryAddDomain,
		}
		if err := db.AddGlossaryTerm(context.Background(), term); err != nil {
			return fmt.Errorf("failed to add glossary term: %w", err)
		}
		fmt.Printf("Pinned %q → %q for %s→%s\n", term.Source, term.Target, term.SourceLang, term.TargetLang)
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a glossary term",
	Long:  `Remove one glossary term. IDs are shown in the last column of "glossary list".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeleteGlossaryTerm(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete glossary term: %w", err)
		}
		fmt.Printf("Removed term %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryCmd.PersistentFlags().StringVar(&glossaryDBPath, "db", "./data/transflow.db", "Database path")

	glossaryListCmd.Flags().StringVarP(&glossaryListSource, "source", "s", "", "Only terms with this source language")
	glossaryListCmd.Flags().StringVarP(&glossaryListTarget, "target", "t", "", "Only terms with this target language")

	glossaryAddCmd.Flags().StringVarP(&glossaryAddSource, "source", "s", "", "Source language code")
	glossaryAddCmd.Flags().StringVarP(&glossaryAddTarget, "target", "t", "", "Target language code")
	glossaryAddCmd.Flags().StringVar(&glossaryAddDomain, "domain", "", "Subject domain tag for the term")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
}
