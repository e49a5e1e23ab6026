package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arefin/crud-backend/internal/apperror"
	"github.com/arefin/crud-backend/internal/model"
	"github.com/arefin/crud-backend/internal/repository"
)

// compile-time check that *Store implements repository.NoteRepository
var _ repository.NoteRepository = (*Store)(nil)

// noteDoc is the BSON shape of a note. The model uses the hex form of the
// ObjectID; conversion happens at this boundary only.
type noteDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID    string             `bson:"owner_id"`
	Title      string             `bson:"title"`
	Content    string             `bson:"content"`
	Tags       []string           `bson:"tags"`
	IsArchived bool               `bson:"is_archived"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d *noteDoc) toModel() *model.Note {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &model.Note{
		ID:         d.ID.Hex(),
		OwnerID:    d.OwnerID,
		Title:      d.Title,
		Content:    d.Content,
		Tags:       tags,
		IsArchived: d.IsArchived,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// ownerFilter builds the _id+owner filter shared by get/update/delete. An
// unparseable ID cannot match any document, so it reports not-found rather
// than a validation error.
func ownerFilter(id, ownerID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("note", id)
	}
	return bson.M{"_id": oid, "owner_id": ownerID}, nil
}

func (s *Store) notes() *mongo.Collection {
	return s.db.Collection(notesCollection)
}

func (s *Store) Create(ctx context.Context, note *model.Note) error {
	now := time.Now().UTC()
	doc := noteDoc{
		ID:         primitive.NewObjectID(),
		OwnerID:    note.OwnerID,
		Title:      note.Title,
		Content:    note.Content,
		Tags:       note.Tags,
		IsArchived: note.IsArchived,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := s.notes().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: inserting note: %w", err)
	}

	note.ID = doc.ID.Hex()
	note.CreatedAt = doc.CreatedAt
	note.UpdatedAt = doc.UpdatedAt
	return nil
}

func (s *Store) GetByID(ctx context.Context, id, ownerID string) (*model.Note, error) {
	filter, err := ownerFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	var doc noteDoc
	if err := s.notes().FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperror.NotFound("note", id)
		}
		return nil, fmt.Errorf("mongo: getting note %s: %w", id, err)
	}

	return doc.toModel(), nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string, archived *bool, opts repository.ListOptions) ([]model.Note, error) {
	filter := bson.M{"owner_id": ownerID}
	if archived != nil {
		filter["is_archived"] = *archived
	}
	return s.findNotes(ctx, filter, opts)
}

// Search matches the term case-insensitively against title or content.
// The term is quoted so regex metacharacters in user input match literally.
func (s *Store) Search(ctx context.Context, ownerID, term string, opts repository.ListOptions) ([]model.Note, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.M{
		"owner_id": ownerID,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		},
	}
	return s.findNotes(ctx, filter, opts)
}

func (s *Store) findNotes(ctx context.Context, filter bson.M, opts repository.ListOptions) ([]model.Note, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := s.notes().Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo: finding notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := make([]model.Note, 0, limit)
	for cursor.Next(ctx) {
		var doc noteDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decoding note: %w", err)
		}
		notes = append(notes, *doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo: iterating notes: %w", err)
	}

	return notes, nil
}

func (s *Store) Update(ctx context.Context, note *model.Note) error {
	filter, err := ownerFilter(note.ID, note.OwnerID)
	if err != nil {
		return err
	}

	note.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":       note.Title,
		"content":     note.Content,
		"tags":        note.Tags,
		"is_archived": note.IsArchived,
		"updated_at":  note.UpdatedAt,
	}}

	result, err := s.notes().UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongo: updating note %s: %w", note.ID, err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("note", note.ID)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id, ownerID string) error {
	filter, err := ownerFilter(id, ownerID)
	if err != nil {
		return err
	}

	result, err := s.notes().DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("mongo: deleting note %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return apperror.NotFound("note", id)
	}

	return nil
}
