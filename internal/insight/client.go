package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
)

var (
	ErrMissingCredential = errors.New("insight api key is not configured")
	ErrEmptyAnswer       = errors.New("insight service returned no text")
)

// Analyzer turns a prompt into free text commentary
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Client talks to an OpenAI compatible chat completions endpoint
type Client struct {
	Endpoint string
	ApiKey   string
	Model    string
	Timeout  time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.ApiKey) == "" {
		return "", ErrMissingCredential
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	var resp chatResponse
	var code int
	err := gout.POST(c.Endpoint).
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + c.ApiKey}).
		SetJSON(gout.H{
			"model":    c.Model,
			"messages": []chatMessage{{Role: "user", Content: prompt}},
		}).
		BindJSON(&resp).
		Code(&code).
		SetTimeout(timeout).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "insight request")
	}
	if code != 200 {
		msg := fmt.Sprintf("insight service status %d", code)
		if resp.Error != nil && resp.Error.Message != "" {
			msg += ": " + resp.Error.Message
		}
		return "", errors.New(msg)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyAnswer
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
