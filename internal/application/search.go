package application

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/codecraftkids/codecraft-api/internal/domain/entity"
	"github.com/codecraftkids/codecraft-api/pkg/helpers"
)

// SearchHit is a learner matched by name.
type SearchHit struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	CurrentBadge    string `json:"currentBadge"`
	CompletedLevels []int  `json:"completedLevels"`
}

type userDoc struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	CurrentBadge    string `json:"current_badge"`
	CompletedLevels []int  `json:"completed_levels"`
	CreatedAt       string `json:"created_at"`
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := userDoc{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		CurrentBadge:    u.CurrentBadge,
		CompletedLevels: u.Clone().CompletedLevels,
		CreatedAt:       u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.warn("es index failed", err, logrus.Fields{"user_id": u.ID})
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.warn("es index response error", &helpers.ESError{Status: res.Status()}, logrus.Fields{"user_id": u.ID})
	}
	return nil
}

// SearchUsers matches learners by name. Without Elasticsearch it returns no hits.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]SearchHit, error) {
	q = strings.TrimSpace(q)
	if s.ES == nil || s.ESUsersIndex == "" || q == "" {
		return []SearchHit{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"name": map[string]any{"query": q, "fuzziness": "AUTO"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, &helpers.ESError{Status: res.Status()}
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		levels := h.Source.CompletedLevels
		if levels == nil {
			levels = []int{}
		}
		out = append(out, SearchHit{
			ID:              h.Source.ID,
			Name:            h.Source.Name,
			CurrentBadge:    h.Source.CurrentBadge,
			CompletedLevels: levels,
		})
	}
	return out, nil
}
