package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrNotConfigured = errors.New("storage connection string not configured")

const memoryScheme = "memory://"

// Target is a parsed storage connection string.
type Target struct {
	Memory    bool
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// ParseConnectionString accepts either a URL of the form
// http(s)://ACCESS:SECRET@host:port?region=r, a semicolon separated
// key=value list (AccountName, AccountKey, BlobEndpoint, EndpointSuffix,
// DefaultEndpointsProtocol, Region), or memory:// for the in-process store.
func ParseConnectionString(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, ErrNotConfigured
	}
	if strings.HasPrefix(raw, memoryScheme) {
		return Target{Memory: true}, nil
	}
	if strings.Contains(raw, "://") && !strings.Contains(raw, ";") {
		return parseURLTarget(raw)
	}
	return parseKeyValueTarget(raw)
}

func parseURLTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return Target{}, errors.New("endpoint host is empty")
	}

	target := Target{
		Endpoint: u.Host,
		UseSSL:   u.Scheme == "https",
		Region:   u.Query().Get("region"),
	}
	if u.User != nil {
		target.AccessKey = u.User.Username()
		target.SecretKey, _ = u.User.Password()
	}
	return target, nil
}

func parseKeyValueTarget(raw string) (Target, error) {
	values := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return Target{}, fmt.Errorf("malformed segment %q", pair)
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	target := Target{
		AccessKey: values["accountname"],
		SecretKey: values["accountkey"],
		Region:    values["region"],
		UseSSL:    !strings.EqualFold(values["defaultendpointsprotocol"], "http"),
	}

	if blobEndpoint := values["blobendpoint"]; blobEndpoint != "" {
		u, err := url.Parse(blobEndpoint)
		if err != nil || u.Host == "" {
			return Target{}, fmt.Errorf("invalid BlobEndpoint %q", blobEndpoint)
		}
		target.Endpoint = u.Host
		target.UseSSL = u.Scheme == "https"
		return target, nil
	}

	if suffix := values["endpointsuffix"]; suffix != "" {
		target.Endpoint = suffix
		return target, nil
	}

	return Target{}, errors.New("connection string has no BlobEndpoint or EndpointSuffix")
}
