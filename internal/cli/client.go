package cli

import (
	"encoding/json"
	"io"

	"github.com/crewdeck/crewdeck/internal/api"
	"github.com/crewdeck/crewdeck/internal/config"
)

// loadClient builds the crew API client from the effective config.
func loadClient() (*config.Config, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout()),
		api.WithHeaderInjector(api.BearerToken(cfg.API.Token)),
	)
	return cfg, client, nil
}

// printJSON writes an indented JSON payload, used by every --json flag.
func printJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// shortID trims a uuid down to a readable column.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
