package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"

	"bookshelf/internal/collection"
	"bookshelf/internal/config"
	"bookshelf/internal/logging"
	"bookshelf/internal/metadata"
	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/store"
	"bookshelf/internal/user"
)

type seedEntry struct {
	isbn   string
	read   bool
	rating *int
}

func intPtr(n int) *int { return &n }

var demoCollection = []seedEntry{
	{isbn: "9780547928241", read: true, rating: intPtr(5)}, // The Hobbit
	{isbn: "9780547928203", read: true, rating: intPtr(4)}, // The Fellowship of the Ring
	{isbn: "9780553382563", read: true, rating: intPtr(4)}, // Heir to the Empire
	{isbn: "9780345428547"},                                // Dark Tide I: Onslaught
}

func main() {
	var (
		username = flag.String("username", "test", "Demo account username")
		email    = flag.String("email", "a@a.a", "Demo account email")
		password = flag.String("password", "test", "Demo account password")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.LoadDatabase()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	repos, err := store.Open(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.DBDriver).Str("dsn", config.RedactDSN(cfg.DBDSN)).Msg("cannot open database")
	}
	defer repos.Close()

	if err := seed(ctx, repos, *username, *email, *password); err != nil {
		logging.Fatal().Err(err).Msg("seed failed")
	}
}

// seed creates the demo account and its collection. Running it twice leaves
// the data unchanged.
func seed(ctx context.Context, repos store.Repositories, username, email, password string) error {
	users := user.NewService(repos.Users)
	entries := collection.NewService(repos.Collection)

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	u, err := users.Register(ctx, email, username, hash)
	switch {
	case errors.Is(err, user.ErrAlreadyExists):
		if u, err = users.GetByIdentifier(ctx, username); err != nil {
			return err
		}
		logging.Info().Str("username", username).Msg("demo user already exists")
	case err != nil:
		return err
	default:
		logging.Info().Str("username", username).Str("user_id", u.ID).Msg("created demo user")
	}

	for _, se := range demoCollection {
		_, err := entries.Add(ctx, u.ID, string(metadata.OpenLibrary), se.isbn)
		if errors.Is(err, collection.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}
		read := se.read
		if _, err := entries.Update(ctx, u.ID, se.isbn, collection.Patch{Read: &read, Rating: se.rating}); err != nil {
			return err
		}
		logging.Info().Str("isbn", se.isbn).Msg("added to collection")
	}
	return nil
}
