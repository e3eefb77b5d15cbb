// Package config reads the environment shared by the import tools. Values may be set in
// the process environment or in a .env file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/sfomuseum/runtimevar"
	_ "gocloud.dev/runtimevar/constantvar"
	_ "gocloud.dev/runtimevar/filevar"
)

// DefaultCollection is the collection POI records are written to.
const DefaultCollection = "spots"

type Config struct {
	// StoreURI overrides the store URI derived from the Firebase settings.
	StoreURI        string  `env:"ALLSPOTS_STORE_URI"`
	Collection      string  `env:"ALLSPOTS_COLLECTION" envDefault:"spots"`
	FirebaseProject string  `env:"FIREBASE_PROJECT_ID"`
	CloudProject    string  `env:"GOOGLE_CLOUD_PROJECT"`
	Credentials     string  `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	PlacesAPIKey    string  `env:"GOOGLE_PLACES_API_KEY"`
	BatchSize       int     `env:"FIRESTORE_BATCH_SIZE" envDefault:"250"`
	BatchSleep      float64 `env:"FIRESTORE_BATCH_SLEEP" envDefault:"0.2"`
	CheckpointURI   string  `env:"FIRESTORE_PROGRESS_DIR"`
	UserAgent       string  `env:"ALLSPOTS_USER_AGENT"`
}

// Load reads the .env files in 'files', or ./.env when none are given, then parses the
// environment. A missing default .env file is not an error.
func Load(files ...string) (*Config, error) {

	err := godotenv.Load(files...)

	if err != nil {

		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("Failed to load env files, %w", err)
		}
	}

	cfg := &Config{}

	err = env.Parse(cfg)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse environment, %w", err)
	}

	return cfg, nil
}

// Project returns the Firebase project id, falling back on the Google Cloud project.
func (c *Config) Project() string {

	if c.FirebaseProject != "" {
		return c.FirebaseProject
	}

	return c.CloudProject
}

// Store returns the URI of the store records are written to: StoreURI when set, else a
// firestore:// URI built from the project, collection and credentials.
func (c *Config) Store() (string, error) {

	if c.StoreURI != "" {
		return c.StoreURI, nil
	}

	project := c.Project()

	if project == "" {
		return "", fmt.Errorf("Missing store URI or Firebase project id")
	}

	collection := c.Collection

	if collection == "" {
		collection = DefaultCollection
	}

	uri := fmt.Sprintf("firestore://%s/%s", project, collection)

	if c.Credentials != "" {

		q := url.Values{}
		q.Set("credentials", c.Credentials)

		uri = fmt.Sprintf("%s?%s", uri, q.Encode())
	}

	return uri, nil
}

// Sleep returns BatchSleep as a duration.
func (c *Config) Sleep() time.Duration {
	return time.Duration(c.BatchSleep * float64(time.Second))
}

// PlacesKey returns the Places API key, resolving it with Secret.
func (c *Config) PlacesKey(ctx context.Context) (string, error) {
	return Secret(ctx, c.PlacesAPIKey)
}

// Secret returns 'v', or the value of the gocloud.dev/runtimevar variable it names when
// 'v' is a URI (for example constant://?val=... or file:///path/to/key).
func Secret(ctx context.Context, v string) (string, error) {

	if !strings.Contains(v, "://") {
		return v, nil
	}

	secret, err := runtimevar.StringVar(ctx, v)

	if err != nil {
		return "", fmt.Errorf("Failed to resolve secret, %w", err)
	}

	return strings.TrimSpace(secret), nil
}

// StoreURI returns 'uri' when it is set and otherwise the store URI derived from the
// environment, reading 'env_file' first when it is set.
func StoreURI(uri string, env_file string) (string, error) {

	if uri != "" {
		return uri, nil
	}

	var files []string

	if env_file != "" {
		files = append(files, env_file)
	}

	cfg, err := Load(files...)

	if err != nil {
		return "", err
	}

	return cfg.Store()
}
