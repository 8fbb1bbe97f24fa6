package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"marketDash/internal/modules/dashboard/application/usecase"
	"marketDash/internal/modules/dashboard/domain"
)

var (
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrInvalidPayload    = errors.New("invalid payload")
)

const (
	actionState        = "state"
	actionFetch        = "fetch"
	actionFetchAll     = "fetchall"
	actionApplyFilters = "applyfilters"
	actionResetFilters = "resetfilters"
	actionSort         = "sort"
	actionClearSort    = "clearsort"
	actionNextPage     = "nextpage"
	actionPrevPage     = "prevpage"
	actionCancel       = "cancel"
)

// storeActions lists the actions that target a single store.
var storeActions = []string{
	actionState,
	actionFetch,
	actionApplyFilters,
	actionResetFilters,
	actionSort,
	actionClearSort,
	actionNextPage,
	actionPrevPage,
	actionCancel,
}

// canonicalAction folds "applyFilters", "apply_filters" and "apply-filters" into one key.
func canonicalAction(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	return strings.NewReplacer("_", "", "-", "").Replace(lowered)
}

// executeStoreAction runs one store operation and returns the resulting state.
func executeStoreAction(ctx context.Context, store *usecase.Store, action string, payload json.RawMessage) (domain.State, error) {
	switch canonicalAction(action) {
	case actionState:
		return store.State(), nil
	case actionFetch, "refresh":
		return store.Fetch(ctx), nil
	case actionApplyFilters:
		patch, err := decodeFilterPatch(payload)
		if err != nil {
			return domain.State{}, err
		}
		return store.ApplyFilters(patch), nil
	case actionResetFilters:
		return store.ResetFilters(), nil
	case actionSort:
		command, err := decodeCommand[domain.SortCommand](payload)
		if err != nil {
			return domain.State{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if strings.TrimSpace(command.Field) == "" {
			return domain.State{}, fmt.Errorf("%w: sort field is required", ErrInvalidPayload)
		}
		return store.Sort(command.Field, domain.ParseDirection(command.Direction)), nil
	case actionClearSort:
		return store.ClearSort(), nil
	case actionNextPage:
		return store.NextPage(), nil
	case actionPrevPage:
		return store.PrevPage(), nil
	case actionCancel:
		store.Cancel()
		return store.State(), nil
	default:
		return domain.State{}, fmt.Errorf("%w: %s", ErrUnsupportedAction, action)
	}
}

// decodeFilterPatch accepts either {"criteria": {...}} or the bare criteria object.
func decodeFilterPatch(payload json.RawMessage) (domain.CriteriaPatch, error) {
	wrapped, err := decodeCommand[domain.FilterCommand](payload)
	if err != nil {
		return domain.CriteriaPatch{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !isEmptyPatch(wrapped.Criteria) {
		return wrapped.Criteria, nil
	}
	bare, err := decodeCommand[domain.CriteriaPatch](payload)
	if err != nil {
		return domain.CriteriaPatch{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return bare, nil
}

func isEmptyPatch(patch domain.CriteriaPatch) bool {
	return patch.DateFrom == nil && patch.DateTo == nil && patch.Limit == nil && len(patch.Filters) == 0
}

func decodeCommand[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 || string(raw) == "null" {
		return payload, nil
	}
	return payload, json.Unmarshal(raw, &payload)
}
