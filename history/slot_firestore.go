package history

import (
	"context"
	"strings"
	"time"

	"ai_news_generator/apperr"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const firestoreCollection = "history_slots"

type firestoreDoc struct {
	Data      []byte    `firestore:"data"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// FirestoreSlot 每个键对应 history_slots 集合下的一个文档。
type FirestoreSlot struct {
	client *firestore.Client
}

func NewFirestoreSlot(ctx context.Context, projectID, databaseID string) (*FirestoreSlot, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, goerr.New("missing firestore project", goerr.T(apperr.TagConfig))
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}
	return &FirestoreSlot{client: client}, nil
}

func (f *FirestoreSlot) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := f.client.Collection(firestoreCollection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get firestore doc", goerr.V("key", key))
	}
	var doc firestoreDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode firestore doc", goerr.V("key", key))
	}
	return doc.Data, nil
}

func (f *FirestoreSlot) Put(ctx context.Context, key string, data []byte) error {
	doc := firestoreDoc{Data: data, UpdatedAt: time.Now().UTC()}
	if _, err := f.client.Collection(firestoreCollection).Doc(key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to set firestore doc", goerr.V("key", key))
	}
	return nil
}

func (f *FirestoreSlot) Delete(ctx context.Context, key string) error {
	_, err := f.client.Collection(firestoreCollection).Doc(key).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to delete firestore doc", goerr.V("key", key))
	}
	return nil
}

func (f *FirestoreSlot) Close() error { return f.client.Close() }
