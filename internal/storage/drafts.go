package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/drafts"
)

// draftBackend is the raw key/value area a backend offers for drafts.
type draftBackend interface {
	get(ctx context.Context, seller uuid.UUID, key string) ([]byte, bool, error)
	put(ctx context.Context, seller uuid.UUID, key string, value []byte) error
	del(ctx context.Context, seller uuid.UUID, keys ...string) error
}

// draftRepo implements the Drafts contract on top of any backend, so merge,
// legacy key and corruption handling behave the same everywhere.
type draftRepo struct {
	be  draftBackend
	log *zap.Logger
}

func (r *draftRepo) Save(ctx context.Context, seller uuid.UUID, step drafts.Step, fields drafts.Fields) error {
	if !step.Valid() {
		return fmt.Errorf("save draft: unknown step %q", step)
	}
	current, err := r.Load(ctx, seller, step)
	if err != nil {
		r.log.Warn("draft save failed", zap.String("seller", seller.String()), zap.String("step", string(step)), zap.Error(err))
		return fmt.Errorf("save draft %s: %w", step, err)
	}
	b, err := current.Merge(fields).Marshal()
	if err != nil {
		r.log.Warn("draft save failed", zap.String("seller", seller.String()), zap.String("step", string(step)), zap.Error(err))
		return fmt.Errorf("encode draft %s: %w", step, err)
	}
	if err := r.be.put(ctx, seller, step.StorageKey(), b); err != nil {
		r.log.Warn("draft save failed", zap.String("seller", seller.String()), zap.String("step", string(step)), zap.Error(err))
		return fmt.Errorf("save draft %s: %w", step, err)
	}
	return nil
}

func (r *draftRepo) Load(ctx context.Context, seller uuid.UUID, step drafts.Step) (drafts.Fields, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("load draft: unknown step %q", step)
	}
	f, found, err := r.read(ctx, seller, step.StorageKey())
	if err != nil {
		return nil, err
	}
	if !found && step == drafts.BasicInfo {
		f, _, err = r.read(ctx, seller, drafts.KeyLegacyBasicInfo)
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *draftRepo) read(ctx context.Context, seller uuid.UUID, key string) (drafts.Fields, bool, error) {
	b, ok, err := r.be.get(ctx, seller, key)
	if err != nil {
		return nil, false, fmt.Errorf("load draft %s: %w", key, err)
	}
	if !ok {
		return drafts.Fields{}, false, nil
	}
	f, err := drafts.ParseFields(b)
	if err != nil {
		r.log.Warn("discarding unreadable draft", zap.String("seller", seller.String()), zap.String("key", key), zap.Error(err))
		return drafts.Fields{}, false, nil
	}
	return f, len(f) > 0, nil
}

func (r *draftRepo) Clear(ctx context.Context, seller uuid.UUID, steps ...drafts.Step) error {
	var keys []string
	if len(steps) == 0 {
		for _, s := range drafts.Steps {
			keys = append(keys, s.StorageKey())
		}
		keys = append(keys, drafts.KeyLegacyBasicInfo)
	}
	for _, s := range steps {
		if !s.Valid() {
			return fmt.Errorf("clear draft: unknown step %q", s)
		}
		keys = append(keys, s.StorageKey())
		if s == drafts.BasicInfo {
			keys = append(keys, drafts.KeyLegacyBasicInfo)
		}
	}
	if err := r.be.del(ctx, seller, keys...); err != nil {
		r.log.Warn("draft clear failed", zap.String("seller", seller.String()), zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("clear drafts: %w", err)
	}
	return nil
}
