package commands

import (
	"context"
	"database/sql"

	"consumelog-backend/lib/configutil"
	"consumelog-backend/lib/eventlog"
	"consumelog-backend/lib/fediverse"
	"consumelog-backend/lib/notion"
	"consumelog-backend/lib/serviceutil"
	"consumelog-backend/services/consumption"

	_ "modernc.org/sqlite"
)

type Config struct {
	Notion    notion.Config               `json:"notion"`
	Fediverse []fediverse.Config          `json:"fediverse"`
	Email     *consumption.EmailConfig    `json:"email"`
	// EventLog is the path of the local run journal, sqlite. Empty
	// disables journaling.
	EventLog string `json:"event_log"`
	// BangumiAPIBase overrides the bangumi api endpoint, for testing.
	BangumiAPIBase string `json:"bangumi_api_base"`
}

func readConfig() Config {
	cfg, err := configutil.ReadRecursively[Config]("consumelog.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func openJournal(ctx context.Context, path string) *eventlog.Store {
	if path == "" {
		return nil
	}
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		serviceutil.Fatal("failed to open event log", err)
	}
	journal := eventlog.NewStore(sqlite)
	err = journal.Init(ctx)
	if err != nil {
		serviceutil.Fatal("failed to init event log", err)
	}
	return &journal
}
