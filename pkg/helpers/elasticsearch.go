package helpers

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

const usersIndexMapping = `{
  "mappings": {
    "properties": {
      "id":               {"type": "keyword"},
      "name":             {"type": "text"},
      "email":            {"type": "text", "analyzer": "simple"},
      "current_badge":    {"type": "keyword"},
      "completed_levels": {"type": "integer"},
      "created_at":       {"type": "date"}
    }
  }
}`

// EnsureUsersIndex creates the users index when it does not exist yet.
func EnsureUsersIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := es.Indices.Exists([]string{index}, es.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := es.Indices.Create(index,
		es.Indices.Create.WithContext(c),
		es.Indices.Create.WithBody(strings.NewReader(usersIndexMapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return &ESError{Status: res.Status()}
	}
	return nil
}

// ESError reports a non-2xx Elasticsearch response.
type ESError struct {
	Status string
}

func (e *ESError) Error() string { return "elasticsearch: " + e.Status }
