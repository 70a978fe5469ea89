package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

const resendAPIURL = "https://api.resend.com/emails"

// ResendSender delivers through the Resend HTTP API. One attempt per
// user action; the caller surfaces failures instead of retrying.
type ResendSender struct {
	client *http.Client
	apiURL string
	apiKey string
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: &http.Client{Timeout: 10 * time.Second},
		apiURL: resendAPIURL,
		apiKey: apiKey,
		from:   from,
	}
}

type resendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (s *ResendSender) Send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(&resendRequest{
		From:    s.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail api responded %d", resp.StatusCode)
	}

	return nil
}
