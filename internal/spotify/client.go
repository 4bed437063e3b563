package spotify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	zspotify "github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"
)

// Client wraps the Spotify API client with rate limiting and retries on
// server errors.
type Client struct {
	api     *zspotify.Client
	limiter *rate.Limiter
}

func NewClient(api *zspotify.Client) *Client {
	return &Client{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	var id string
	err := c.call(ctx, func() error {
		user, err := c.api.CurrentUser(ctx)
		if err != nil {
			return err
		}
		id = user.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return id, nil
}

// CurrentUser returns the current user's ID and display name.
func (c *Client) CurrentUser(ctx context.Context) (id, displayName string, err error) {
	err = c.call(ctx, func() error {
		user, err := c.api.CurrentUser(ctx)
		if err != nil {
			return err
		}
		id = user.ID
		displayName = user.DisplayName
		return nil
	})
	if err != nil {
		return "", "", fmt.Errorf("getting current user: %w", err)
	}
	return id, displayName, nil
}

func (c *Client) call(ctx context.Context, fn func() error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return retry.Do(
		fn,
		retry.Attempts(4),
		retry.RetryIf(func(err error) bool {
			var serr zspotify.Error
			if errors.As(err, &serr) {
				if serr.Status/100 == 5 {
					fmt.Printf("spotify errored, retrying: %v\n", serr)
					return true
				}
			}
			return false
		}),
	)
}

// TimeRange maps a human period name onto the API's time ranges.
func TimeRange(name string) (zspotify.Range, error) {
	switch name {
	case "short", "short_term":
		return zspotify.ShortTermRange, nil
	case "medium", "medium_term", "":
		return zspotify.MediumTermRange, nil
	case "long", "long_term":
		return zspotify.LongTermRange, nil
	}
	return "", fmt.Errorf("unknown time range %q (want short, medium, or long)", name)
}
