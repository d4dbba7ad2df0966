package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/urgekeeper/internal/common"
	"github.com/dmitrijs2005/urgekeeper/internal/records"
	"github.com/dmitrijs2005/urgekeeper/internal/server/repositories/settings"
)

// SettingsService keeps one document per owner and kind.
type SettingsService struct {
	repo settings.Repository
}

func NewSettingsService(repo settings.Repository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Put(ctx context.Context, owner string, kind records.Type, doc map[string]any) error {
	if kind != records.TypePreferences {
		return fmt.Errorf("%w: %q is not a settings kind", common.ErrorInvalidArgument, kind)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInvalidArgument, err)
	}
	return s.repo.Put(ctx, owner, objectKind(kind), data)
}

// Get returns common.ErrorNotFound when nothing was stored yet.
func (s *SettingsService) Get(ctx context.Context, owner string, kind records.Type) (map[string]any, error) {
	if kind != records.TypePreferences {
		return nil, fmt.Errorf("%w: %q is not a settings kind", common.ErrorInvalidArgument, kind)
	}
	data, err := s.repo.Get(ctx, owner, objectKind(kind))
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: corrupt settings document: %v", common.ErrorInternal, err)
	}
	return doc, nil
}

func objectKind(kind records.Type) string {
	return strings.ToLower(string(kind))
}
