package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/moviestream/internal/catalog"
)

// movieCollection is the collection movie-info records live in.
const movieCollection = "movieInfo"

// MovieRepository implements catalog.Repository on a MongoDB collection.
type MovieRepository struct {
	coll *mongo.Collection
}

// NewMovieRepository creates a repository bound to the movieInfo collection
// of db.
func NewMovieRepository(db *mongo.Database) *MovieRepository {
	return &MovieRepository{coll: db.Collection(movieCollection)}
}

var _ catalog.Repository = (*MovieRepository)(nil)

// movieDocument is the persisted shape of a record. BSON concerns stay in
// this package; the domain type crosses the boundary via the converters
// below.
type movieDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Name        string        `bson:"name"`
	Year        int           `bson:"year"`
	Cast        []string      `bson:"cast"`
	ReleaseDate time.Time     `bson:"releaseDate"`
}

func toDocument(m catalog.MovieInfo) (movieDocument, error) {
	doc := movieDocument{
		Name:        m.Name,
		Year:        m.Year,
		Cast:        m.Cast,
		ReleaseDate: m.ReleaseDate.Time,
	}
	if m.ID != "" {
		oid, err := bson.ObjectIDFromHex(m.ID)
		if err != nil {
			return movieDocument{}, fmt.Errorf("invalid movie id %q: %w", m.ID, err)
		}
		doc.ID = oid
	}
	return doc, nil
}

func (d movieDocument) toMovie() catalog.MovieInfo {
	return catalog.MovieInfo{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Year:        d.Year,
		Cast:        d.Cast,
		ReleaseDate: catalog.DateOf(d.ReleaseDate),
	}
}

// FindAll implements catalog.Repository.
func (r *MovieRepository) FindAll(ctx context.Context) ([]catalog.MovieInfo, error) {
	return r.find(ctx, bson.M{})
}

// FindByYear implements catalog.Repository.
func (r *MovieRepository) FindByYear(ctx context.Context, year int) ([]catalog.MovieInfo, error) {
	return r.find(ctx, bson.M{"year": year})
}

func (r *MovieRepository) find(ctx context.Context, filter bson.M) ([]catalog.MovieInfo, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find movie info: %w", err)
	}

	var docs []movieDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movie info: %w", err)
	}

	movies := make([]catalog.MovieInfo, 0, len(docs))
	for _, doc := range docs {
		movies = append(movies, doc.toMovie())
	}
	return movies, nil
}

// FindByID implements catalog.Repository. An id that is not a valid
// ObjectID hex cannot exist in the store and reports not-found.
func (r *MovieRepository) FindByID(ctx context.Context, id string) (catalog.MovieInfo, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return catalog.MovieInfo{}, catalog.ErrMovieNotFound
	}

	var doc movieDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return catalog.MovieInfo{}, catalog.ErrMovieNotFound
		}
		return catalog.MovieInfo{}, fmt.Errorf("find movie info %s: %w", id, err)
	}
	return doc.toMovie(), nil
}

// Save implements catalog.Repository. An empty id inserts and returns the
// record with the store-assigned id; a non-empty id replaces the existing
// document and reports not-found when it no longer exists.
func (r *MovieRepository) Save(ctx context.Context, movie catalog.MovieInfo) (catalog.MovieInfo, error) {
	doc, err := toDocument(movie)
	if err != nil {
		return catalog.MovieInfo{}, catalog.ErrMovieNotFound
	}

	if movie.ID == "" {
		result, err := r.coll.InsertOne(ctx, doc)
		if err != nil {
			return catalog.MovieInfo{}, fmt.Errorf("insert movie info: %w", err)
		}
		oid, ok := result.InsertedID.(bson.ObjectID)
		if !ok {
			return catalog.MovieInfo{}, fmt.Errorf("insert movie info: unexpected inserted id type %T", result.InsertedID)
		}
		doc.ID = oid
		return doc.toMovie(), nil
	}

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return catalog.MovieInfo{}, fmt.Errorf("replace movie info %s: %w", movie.ID, err)
	}
	if result.MatchedCount == 0 {
		// The record vanished between lookup and save.
		return catalog.MovieInfo{}, catalog.ErrMovieNotFound
	}
	return doc.toMovie(), nil
}

// DeleteByID implements catalog.Repository. Deletes are existence-checked:
// an unknown or malformed id reports not-found.
func (r *MovieRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return catalog.ErrMovieNotFound
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete movie info %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return catalog.ErrMovieNotFound
	}
	return nil
}
