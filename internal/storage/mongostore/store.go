// Package mongostore implements the persistence bridge on MongoDB.
// One document per room: {roomId, files: [...], createdAt, updatedAt}.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Yash-Kunal/scriptly-deploy/internal/domain"
)

type Store struct {
	col *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{col: db.Collection("rooms")}
}

type roomDoc struct {
	RoomID    string            `bson:"roomId"`
	Files     []domain.RoomFile `bson:"files"`
	CreatedAt time.Time         `bson:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

// LoadOrCreate fetches the room's file set, seeding a default one on
// first contact. The upsert with $setOnInsert makes concurrent first
// joins converge on a single document.
func (s *Store) LoadOrCreate(ctx context.Context, room domain.RoomID) ([]domain.RoomFile, error) {
	now := time.Now()
	filter := bson.M{"roomId": string(room)}
	update := bson.M{
		"$setOnInsert": roomDoc{
			RoomID:    string(room),
			Files:     domain.DefaultFileSet(now),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc roomDoc
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("load room %q: %w", room, err)
	}
	return doc.Files, nil
}

// Upsert replaces the room's file set wholesale. Missing rooms are
// created; no merge with prior content.
func (s *Store) Upsert(ctx context.Context, room domain.RoomID, files []domain.RoomFile) error {
	now := time.Now()
	filter := bson.M{"roomId": string(room)}
	update := bson.M{
		"$set":         bson.M{"files": files, "updatedAt": now},
		"$setOnInsert": bson.M{"roomId": string(room), "createdAt": now},
	}
	if _, err := s.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("save room %q: %w", room, err)
	}
	return nil
}
