package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/printdesk/internal/config"
	"github.com/aretw0/printdesk/pkg/client"
)

// clientKeys binds the flags added by addClientFlags.
var clientKeys = map[string]string{
	"client.host": "host",
	"client.user": "user",
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", "http://localhost:8080", "URL of the printdesk server")
	cmd.Flags().String("user", "", "User name sent to the server")
}

func newClient(cfg config.Config) *client.Client {
	opts := []client.Option{client.WithTimeout(cfg.Client.Timeout)}
	if cfg.Client.User != "" {
		opts = append(opts, client.WithUser(cfg.Client.User))
	}
	return client.New(cfg.Client.Host, opts...)
}

// parseIDs accepts ids as repeated values or comma separated lists.
func parseIDs(values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// parseOptions turns key=value pairs into plugin options. Values are decoded
// as YAML scalars, so "copies=2" yields an integer and "cut=true" a bool.
func parseOptions(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	opts := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q, expected key=value", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
			value = raw
		}
		opts[key] = value
	}
	return opts, nil
}
