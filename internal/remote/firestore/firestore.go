// Package firestore stores user documents in Cloud Firestore under
// users/{uid}/{collection}/{id}.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gfirestore "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"finboard/internal/remote"
)

const usersCollection = "users"

type Store struct {
	client *gfirestore.Client
}

// Config selects the Firestore project and credentials. Without credentials
// the client falls back to Application Default Credentials.
type Config struct {
	ProjectID       string
	CredentialsJSON []byte
	CredentialsFile string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firestore: project id is required")
	}
	var opts []option.ClientOption
	switch {
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gfirestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	slog.InfoContext(ctx, "Firestore client initialized", "project_id", cfg.ProjectID)
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) collection(userID, collection string) *gfirestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(userID).Collection(collection)
}

func (s *Store) Put(ctx context.Context, userID, collection, id string, doc remote.Document) error {
	if _, err := s.collection(userID, collection).Doc(id).Set(ctx, map[string]interface{}(doc)); err != nil {
		return fmt.Errorf("firestore put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID, collection, id string) (remote.Document, error) {
	snap, err := s.collection(userID, collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, remote.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get %s/%s: %w", collection, id, err)
	}
	return remote.Document(snap.Data()), nil
}

func (s *Store) Delete(ctx context.Context, userID, collection, id string) error {
	_, err := s.collection(userID, collection).Doc(id).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("firestore delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, userID, collection string) ([]remote.Document, error) {
	it := s.collection(userID, collection).Documents(ctx)
	defer it.Stop()
	var out []remote.Document
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore list %s: %w", collection, err)
		}
		out = append(out, remote.Document(snap.Data()))
	}
	return out, nil
}
