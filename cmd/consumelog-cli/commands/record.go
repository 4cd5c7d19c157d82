package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"consumelog-backend/lib/fediverse"
	"consumelog-backend/lib/notion"
	"consumelog-backend/lib/serviceutil"
	"consumelog-backend/services/consumption"
	"consumelog-backend/services/consumption/scrapers/bangumi"
	"consumelog-backend/services/consumption/scrapers/douban"
	"consumelog-backend/services/consumption/scrapers/goodreads"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var recordFlags struct {
	database  string
	origin    string
	score     string
	review    string
	status    string
	category  string
	mediaType string
}

func init() {
	flags := recordCmd.Flags()
	flags.StringVar(&recordFlags.database, "database", "", `"book" or "media"`)
	flags.StringVar(&recordFlags.origin, "origin", "", "source page url of the item")
	flags.StringVar(&recordFlags.score, "score", "", "score from 1 to 5, empty means unscored")
	flags.StringVar(&recordFlags.review, "review", "", "short review text")
	flags.StringVar(&recordFlags.status, "status", "读过", "book reading status (想读/在读/读过/放弃)")
	flags.StringVar(&recordFlags.category, "category", "", "book category")
	flags.StringVar(&recordFlags.mediaType, "type", "", "media type (Anime/Light Novel/Manga/Game), inferred when empty")
	rootCmd.AddCommand(recordCmd)
}

// envFallback lets the command run from automation that passes inputs
// through the environment instead of argv.
func envFallback(value, env string) string {
	if value != "" {
		return value
	}
	return os.Getenv(env)
}

func buildInput() (consumption.Input, error) {
	database := envFallback(recordFlags.database, "INPUT_DATABASE")
	origin := envFallback(recordFlags.origin, "INPUT_ORIGIN")
	if origin == "" {
		return consumption.Input{}, fmt.Errorf("an origin url is required")
	}

	score := 0
	if raw := envFallback(recordFlags.score, "INPUT_SCORE"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 5 {
			return consumption.Input{}, fmt.Errorf("score must be 1-5, got %q", raw)
		}
		score = parsed
	}
	review := envFallback(recordFlags.review, "INPUT_REVIEW")

	switch strings.ToLower(database) {
	case "book", string(consumption.DatabaseBook):
		return consumption.Input{
			Database: consumption.DatabaseBook,
			Origin:   origin,
			Book: &consumption.BookInput{
				Status:   consumption.BookStatus(envFallback(recordFlags.status, "INPUT_STATUS")),
				Review:   review,
				Score:    score,
				Category: envFallback(recordFlags.category, "INPUT_CATEGORY"),
			},
		}, nil
	case "media", strings.ToLower(string(consumption.DatabaseMedia)):
		return consumption.Input{
			Database: consumption.DatabaseMedia,
			Origin:   origin,
			Media: &consumption.MediaInput{
				Review: review,
				Score:  score,
				Type:   consumption.MediaType(envFallback(recordFlags.mediaType, "INPUT_TYPE")),
			},
		}, nil
	}
	return consumption.Input{}, fmt.Errorf("unknown database %q, want book or media", database)
}

func buildRetrievers(cfg Config) []consumption.RetrieverEntry {
	doubanScraper, err := douban.New()
	if err != nil {
		serviceutil.Fatal("failed to initialize douban scraper", err)
	}
	goodreadsScraper, err := goodreads.New()
	if err != nil {
		serviceutil.Fatal("failed to initialize goodreads scraper", err)
	}

	apiBase := cfg.BangumiAPIBase
	if apiBase == "" {
		apiBase = bangumi.DefaultAPIBase
	}
	bangumiScraper := bangumi.New(apiBase)

	return []consumption.RetrieverEntry{
		{Keyword: "douban.com", Retriever: doubanScraper},
		{Keyword: "bangumi.tv", Retriever: bangumiScraper},
		{Keyword: "bgm.tv", Retriever: bangumiScraper},
		{Keyword: "goodreads.com", Retriever: goodreadsScraper},
	}
}

func buildResponders(cfg Config) []consumption.Responder {
	responders := []consumption.Responder{
		consumption.StoreResponder{Store: notion.New(cfg.Notion)},
	}
	for _, instance := range cfg.Fediverse {
		client := fediverse.New(instance)
		responders = append(responders, consumption.FeedResponder{
			Poster:   client,
			Markdown: client.Markdown(),
		})
	}
	if cfg.Email != nil {
		responders = append(responders, consumption.EmailResponder{Config: *cfg.Email})
	}
	return responders
}

var recordCmd = &cobra.Command{
	Use:   "record --database <book|media> --origin <url> [flags]",
	Short: "Records one consumption event: scrape, upsert into notion, post to the feed.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		input, err := buildInput()
		if err != nil {
			serviceutil.Fatal("invalid input", err)
		}

		journal := openJournal(cmd.Context(), cfg.EventLog)
		responders := buildResponders(cfg)
		service := consumption.NewService(buildRetrievers(cfg), responders, journal)

		results, err := service.Process(cmd.Context(), input)
		if err != nil {
			serviceutil.Fatal("failed to process event", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Responder", "Success", "Message"})
		failed := false
		for i, result := range results {
			t.AppendRow(table.Row{responders[i].Name(), result.Success, result.Message})
			if !result.Success {
				failed = true
			}
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		if failed {
			os.Exit(1)
		}
	},
}
