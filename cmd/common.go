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
	"fmt"
	"strings"

	"github.com/valpere/transflow/internal/config"
	"github.com/valpere/transflow/internal/extractor"
	"github.com/valpere/transflow/internal/translator"
)

// buildBackend constructs the translation service named in the configuration.
func buildBackend(cfg *config.Config) (translator.Service, error) {
	switch cfg.Backend {
	case "google":
		return translator.NewGoogleService(cfg.GoogleCredentials, cfg.GoogleProjectID), nil
	case "mymemory":
		return translator.NewMyMemoryService(cfg.MyMemoryEmail), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// buildExtractor constructs the text extractor, overriding the pdftotext
// defaults when PDF commands are configured.
func buildExtractor(cfg *config.Config) *extractor.Extractor {
	if cfg.PDFCommand == "" || cfg.PDFFallbackCommand == "" {
		return extractor.New()
	}
	return extractor.New(extractor.WithPDFCommands(
		parseCommand(cfg.PDFCommand),
		parseCommand(cfg.PDFFallbackCommand),
	))
}

func parseCommand(s string) extractor.Command {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return extractor.Command{}
	}
	return extractor.Command{Name: fields[0], Args: fields[1:]}
}
