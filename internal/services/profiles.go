package services

import (
	"context"
	"fmt"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/anonto42/socialnet/backend/internal/repositories"
)

// loadProfiles resolves ids to compact profiles in one query. Users that no longer exist come
// back as a bare id so callers can still render the record.
func loadProfiles(ctx context.Context, users repositories.UserRepository, ids []uint) (map[uint]models.UserCompact, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	profiles := make(map[uint]models.UserCompact, len(unique))
	if len(unique) == 0 {
		return profiles, nil
	}

	found, err := users.GetUsersByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	for i := range found {
		profiles[found[i].ID] = found[i].ToCompact()
	}
	for _, id := range unique {
		if _, ok := profiles[id]; !ok {
			profiles[id] = models.UserCompact{ID: id}
		}
	}
	return profiles, nil
}
