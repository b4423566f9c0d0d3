package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// RefPrefix marks a configuration value that names an SSM parameter instead
// of holding the secret itself, e.g. "ssm:/expense-assistant/openai-token".
const RefPrefix = "ssm:"

// ssmAPI is the minimal AWS SSM interface required by Client.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// tokenPayload is the JSON shape secrets may be stored in.
type tokenPayload struct {
	Token string `json:"token"`
}

// Client reads decrypted parameters from SSM.
type Client struct {
	api ssmAPI
}

func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api}, nil
}

// IsRef reports whether value points at an SSM parameter.
func IsRef(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), RefPrefix)
}

// Resolve returns value unchanged unless it is an SSM reference, in which
// case the parameter is fetched. Parameters holding {"token": "..."} are
// unwrapped to the token.
func (c *Client) Resolve(ctx context.Context, value string) (string, error) {
	value = strings.TrimSpace(value)
	if !IsRef(value) {
		return value, nil
	}
	raw, err := c.GetParameter(ctx, strings.TrimPrefix(value, RefPrefix))
	if err != nil {
		return "", err
	}
	secret, err := unwrapToken(raw)
	if err != nil {
		return "", fmt.Errorf("paramstore: resolve %q: %w", value, err)
	}
	return secret, nil
}

func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("paramstore: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

func unwrapToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") {
		if raw == "" {
			return "", errors.New("secret is empty")
		}
		return raw, nil
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("unmarshal token payload: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("token is empty")
	}
	return tp.Token, nil
}
