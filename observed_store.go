package launchargs

import (
	"context"

	"github.com/goliatone/go-launchargs/pkg/activity"
)

// ObservedStore wraps a Store and emits an activity event after every
// successful Modify or Reset.
type ObservedStore struct {
	*Store
	app     string
	emitter *activity.Emitter
}

// Observe wraps store so its mutations are reported through emitter. app is
// recorded on every event.
func Observe(store *Store, app string, emitter *activity.Emitter) *ObservedStore {
	if store == nil {
		store = NewStore()
	}
	return &ObservedStore{Store: store, app: app, emitter: emitter}
}

// Modify applies patch to the wrapped store and reports the change. Errors
// from activity hooks are returned after the store has been updated.
func (s *ObservedStore) Modify(ctx context.Context, patch any) error {
	if err := s.Store.Modify(patch); err != nil {
		return err
	}
	if !s.emitter.Enabled() {
		return nil
	}
	entries, _ := asStringMap(patch)
	var keys, deleted []string
	for _, key := range sortedKeys(entries) {
		if IsDelete(entries[key]) {
			deleted = append(deleted, key)
			continue
		}
		keys = append(keys, key)
	}
	return s.emitter.Emit(ctx, activity.BuildArgsModifiedEvent(activity.ArgsEventInput{
		App:     s.app,
		Keys:    keys,
		Deleted: deleted,
	}))
}

// Reset clears the wrapped store and reports it.
func (s *ObservedStore) Reset(ctx context.Context) error {
	s.Store.Reset()
	if !s.emitter.Enabled() {
		return nil
	}
	return s.emitter.Emit(ctx, activity.BuildArgsResetEvent(activity.ArgsEventInput{App: s.app}))
}
