package twitchhls

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Production endpoints and the web player's client identification.
const (
	ClientID     = "kimne78kx3ncx6brgo4mv6wki5h1ko"
	UsherAPIMask = "https://usher.ttvnw.net/api/channel/hls/%s.m3u8"
	GraphQLURL   = "https://gql.twitch.tv/gql"
	UserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("usher_mask", isUsherMask); err != nil {
		panic(err)
	}
	return v
}

// isUsherMask accepts an http(s) URL with one %s verb for the login.
// The validator's own url check cannot be used because %s is not a valid
// escape.
func isUsherMask(fl validator.FieldLevel) bool {
	mask := fl.Field().String()
	if strings.Count(mask, "%") != 1 || !strings.Contains(mask, "%s") {
		return false
	}
	u, err := url.Parse(fmt.Sprintf(mask, "login"))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Config holds the endpoints and headers used by Client. UsherURL is a
// format string taking the channel login.
type Config struct {
	GQLURL    string `validate:"required,url"`
	UsherURL  string `validate:"required,usher_mask"`
	ClientID  string `validate:"required"`
	UserAgent string `validate:"required"`
}

// DefaultConfig returns the production Twitch endpoints.
func DefaultConfig() Config {
	return Config{
		GQLURL:    GraphQLURL,
		UsherURL:  UsherAPIMask,
		ClientID:  ClientID,
		UserAgent: UserAgent,
	}
}

// LoadConfig starts from DefaultConfig and applies TWITCHHLS_* overrides.
// When envPath is set the file is loaded first; a missing file is not an error.
func LoadConfig(envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read %s: %w", envPath, err)
		}
	}

	cfg := DefaultConfig()
	cfg.GQLURL = envOr("TWITCHHLS_GQL_URL", cfg.GQLURL)
	cfg.UsherURL = envOr("TWITCHHLS_USHER_URL", cfg.UsherURL)
	cfg.ClientID = envOr("TWITCHHLS_CLIENT_ID", cfg.ClientID)
	cfg.UserAgent = envOr("TWITCHHLS_USER_AGENT", cfg.UserAgent)

	return cfg, cfg.Validate()
}

// Validate checks c against its struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
