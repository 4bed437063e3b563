// Package webhook delivers milestone notifications to user-registered
// endpoints.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"

	"github.com/skylerx/mystats/internal/milestone"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the request body, keyed
	// with the webhook secret.
	SignatureHeader = "X-MyStats-Signature"

	eventMilestoneAchieved = "milestone.achieved"
)

// Event is the wire payload posted to the endpoint.
type Event struct {
	Event     string    `json:"event"`
	UserID    string    `json:"userId"`
	Milestone Milestone `json:"milestone"`
	SentAt    time.Time `json:"sentAt"`
}

type Milestone struct {
	EntityType    string    `json:"entityType"`
	EntityID      string    `json:"entityId,omitempty"`
	MilestoneType string    `json:"milestoneType"`
	Value         int64     `json:"value"`
	Name          string    `json:"name"`
	ReachedAt     time.Time `json:"reachedAt"`
}

// Notifier posts signed milestone events.
type Notifier struct {
	client *http.Client
}

func NewNotifier() *Notifier {
	return &Notifier{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts one milestone.achieved event per crossing, signing each body
// with the endpoint's secret. Delivery is retried on transport errors and
// 5xx responses; a 4xx response fails immediately since retrying won't help.
func (n *Notifier) Notify(ctx context.Context, url, secret string, crossed []milestone.UserMilestone) error {
	for _, m := range crossed {
		event := Event{
			Event:  eventMilestoneAchieved,
			UserID: m.UserID,
			Milestone: Milestone{
				EntityType:    m.EntityType,
				EntityID:      m.EntityID,
				MilestoneType: m.MilestoneType,
				Value:         m.Value,
				Name:          m.Name,
				ReachedAt:     m.ReachedAt,
			},
			SentAt: time.Now().UTC(),
		}
		if err := n.deliver(ctx, url, secret, event); err != nil {
			return fmt.Errorf("delivering milestone %q/%d: %w", m.Name, m.Value, err)
		}
	}
	return nil
}

func (n *Notifier) deliver(ctx context.Context, url, secret string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(SignatureHeader, Sign(secret, body))

			resp, err := n.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode/100 == 2 {
				return nil
			}
			err = fmt.Errorf("endpoint returned %d", resp.StatusCode)
			if resp.StatusCode/100 == 4 {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
	)
}

// Sign computes the hex HMAC-SHA256 of body under the given secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the body under the secret.
// Comparison is constant time.
func Verify(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
