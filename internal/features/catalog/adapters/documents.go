package adapters

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/core/docstore"
	"storefront/internal/core/logger"

	"go.uber.org/zap"
)

// documents converts between T and the documents of one collection.
type documents[T any] struct {
	coll     docstore.Collection
	notFound error
}

func (d documents[T]) list(ctx context.Context) ([]T, error) {
	docs, err := d.coll.List(ctx)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](docs)
}

func (d documents[T]) get(ctx context.Context, id string) (*T, error) {
	doc, err := d.coll.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", d.notFound, id)
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := docstore.Decode(doc, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (d documents[T]) create(ctx context.Context, v *T) (string, error) {
	doc, err := docstore.Encode(v)
	if err != nil {
		return "", err
	}
	return d.coll.Create(ctx, doc)
}

// replace writes every field of v over the document id.
func (d documents[T]) replace(ctx context.Context, id string, v *T) error {
	doc, err := docstore.Encode(v)
	if err != nil {
		return err
	}
	delete(doc, docstore.IDField)
	return d.update(ctx, id, doc)
}

func (d documents[T]) update(ctx context.Context, id string, patch docstore.Document) error {
	err := d.coll.Update(ctx, id, patch)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", d.notFound, id)
	}
	return err
}

func (d documents[T]) delete(ctx context.Context, id string) error {
	err := d.coll.Delete(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", d.notFound, id)
	}
	return err
}

func (d documents[T]) findOne(ctx context.Context, field string, value any) (*T, error) {
	docs, err := d.coll.FindByField(ctx, field, value)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	var v T
	if err := docstore.Decode(docs[0], &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// subscribe skips documents that fail to decode.
func (d documents[T]) subscribe(ctx context.Context, fn func([]T)) (func(), error) {
	return d.coll.Subscribe(ctx, func(docs []docstore.Document) {
		out := make([]T, 0, len(docs))
		for _, doc := range docs {
			var v T
			if err := docstore.Decode(doc, &v); err != nil {
				logger.Get().Warn("Skipping undecodable document", zap.String("id", doc.ID()), zap.Error(err))
				continue
			}
			out = append(out, v)
		}
		fn(out)
	})
}

func decodeAll[T any](docs []docstore.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := docstore.Decode(doc, &v); err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID(), err)
		}
		out = append(out, v)
	}
	return out, nil
}
