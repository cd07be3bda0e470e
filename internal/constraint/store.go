package constraint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/cache"
)

// StateField — поле hash с JSON состояния.
const StateField = "state"

// HashRepository хранит состояния в cache.HashStore.
//
// Ключ: "{prefix}:constraint:{deliveryConfig}:{environment}:{reference}:{version}".
type HashRepository struct {
	store  cache.HashStore
	prefix string
}

// NewHashRepository создаёт HashRepository. Пустой prefix — cache.DefaultPrefix.
func NewHashRepository(store cache.HashStore, prefix string) *HashRepository {
	if prefix == "" {
		prefix = cache.DefaultPrefix
	}
	return &HashRepository{store: store, prefix: prefix}
}

// Key возвращает ключ состояния.
func (r *HashRepository) Key(deliveryConfig, environment, reference, version string) string {
	return strings.Join([]string{r.prefix, "constraint", deliveryConfig, environment, reference, version}, ":")
}

// StoreState сохраняет состояние.
func (r *HashRepository) StoreState(ctx context.Context, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal constraint state: %w", err)
	}
	key := r.Key(state.DeliveryConfig, state.Environment, state.ArtifactReference, state.ArtifactVersion)
	if err := r.store.HSet(ctx, key, StateField, string(data)); err != nil {
		return fmt.Errorf("%w: hset %s: %v", ErrStateUnavailable, key, err)
	}
	return nil
}

// GetState возвращает состояние. found=false, если оценок ещё не было.
func (r *HashRepository) GetState(ctx context.Context, deliveryConfig, environment, reference, version string) (State, bool, error) {
	key := r.Key(deliveryConfig, environment, reference, version)

	raw, found, err := r.store.HGet(ctx, key, StateField)
	if err != nil {
		return State{}, false, fmt.Errorf("%w: hget %s: %v", ErrStateUnavailable, key, err)
	}
	if !found {
		return State{}, false, nil
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return State{}, false, fmt.Errorf("%w: %s: %v", ErrCorruptState, key, err)
	}
	return state, true, nil
}

// GetOrCreate возвращает сохранённое состояние для идентификаторов fresh
// или сохраняет fresh, если оценок ещё не было.
func (r *HashRepository) GetOrCreate(ctx context.Context, fresh State) (State, error) {
	state, found, err := r.GetState(ctx, fresh.DeliveryConfig, fresh.Environment, fresh.ArtifactReference, fresh.ArtifactVersion)
	if err != nil || found {
		return state, err
	}
	if err := r.StoreState(ctx, fresh); err != nil {
		return State{}, err
	}
	return fresh, nil
}
