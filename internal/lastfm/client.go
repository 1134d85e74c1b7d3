package lastfm

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned when an operation requires authentication.
var ErrNotAuthenticated = errors.New("not authenticated")

const authPage = "https://www.last.fm/api/auth/"

// Client wraps the Last.fm API for now-playing updates and scrobbles.
type Client struct {
	api        *lastfm.Api
	apiKey     string
	sessionKey string
}

// New creates a new Last.fm client with the given API credentials.
func New(apiKey, apiSecret string) *Client {
	return &Client{
		api:    lastfm.New(apiKey, apiSecret),
		apiKey: apiKey,
	}
}

// SetSessionKey sets the authenticated session key.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
	c.api.SetSession(key)
}

// SessionKey returns the current session key.
func (c *Client) SessionKey() string {
	return c.sessionKey
}

// IsAuthenticated returns true if a session key is set.
func (c *Client) IsAuthenticated() bool {
	return c.sessionKey != ""
}

// GetToken requests an authentication token from Last.fm.
func (c *Client) GetToken() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// GetAuthURL returns the page where the user approves token.
func (c *Client) GetAuthURL(token string) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("token", token)
	return authPage + "?" + q.Encode()
}

// GetSession exchanges an approved token for a session key and makes the
// client use it. The username is "unknown" when the profile lookup fails.
func (c *Client) GetSession(token string) (username, sessionKey string, err error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return "", "", fmt.Errorf("get session: %w", err)
	}
	c.sessionKey = c.api.GetSessionKey()

	info, err := c.api.User.GetInfo(nil)
	if err != nil {
		return "unknown", c.sessionKey, nil //nolint:nilerr // username is cosmetic
	}
	return info.Name, c.sessionKey, nil
}

// UpdateNowPlaying tells Last.fm the track is playing.
func (c *Client) UpdateNowPlaying(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.UpdateNowPlaying(trackParams(track, false)); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

// Scrobble records a play of track.
func (c *Client) Scrobble(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.Scrobble(trackParams(track, true)); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

// trackParams builds the API parameters for track. Scrobbles also carry the
// time the play started.
func trackParams(track ScrobbleTrack, withTimestamp bool) lastfm.P {
	p := lastfm.P{
		"artist": track.Artist,
		"track":  track.Track,
	}
	if track.Album != "" {
		p["album"] = track.Album
	}
	if track.Duration > 0 {
		p["duration"] = int(track.Duration.Seconds())
	}
	if withTimestamp {
		p["timestamp"] = track.Timestamp.Unix()
	}
	return p
}
