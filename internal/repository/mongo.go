package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"octofit/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const stagingCollection = "leaderboard_staging"

var _ Store = (*MongoStore)(nil)

// MongoStore keeps one collection per kind in a MongoDB database
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to MongoDB and verifies the connection
func OpenMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// NewMongoStore creates a store over the named database
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (m *MongoStore) coll(kind Kind) *mongo.Collection {
	return m.db.Collection(string(kind))
}

// EnsureIndexes creates the unique and ordering indexes
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	specs := map[Kind][]mongo.IndexModel{
		KindUser: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "team_id", Value: 1}}},
		},
		KindTeam: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		KindActivity: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		KindLeaderboard: {
			{Keys: bson.D{{Key: "rank", Value: 1}}},
		},
	}
	for kind, indexes := range specs {
		if _, err := m.coll(kind).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create %s indexes: %w", kind, err)
		}
	}
	return nil
}

func mongoErr(err error, kind Kind, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return notFound(kind, id)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s: %v", ErrDuplicate, kind, err)
	}
	return fmt.Errorf("%s: %w", kind, err)
}

func insertDoc(ctx context.Context, c *mongo.Collection, kind Kind, id string, doc interface{}) error {
	_, err := c.InsertOne(ctx, doc)
	return mongoErr(err, kind, id)
}

func findDoc[T any](ctx context.Context, c *mongo.Collection, kind Kind, id string) (*T, error) {
	var out T
	if err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, mongoErr(err, kind, id)
	}
	return &out, nil
}

func replaceDoc(ctx context.Context, c *mongo.Collection, kind Kind, id string, doc interface{}) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mongoErr(err, kind, id)
	}
	if res.MatchedCount == 0 {
		return notFound(kind, id)
	}
	return nil
}

func deleteDoc(ctx context.Context, c *mongo.Collection, kind Kind, id string) error {
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr(err, kind, id)
	}
	if res.DeletedCount == 0 {
		return notFound(kind, id)
	}
	return nil
}

func findDocs[T any](ctx context.Context, c *mongo.Collection, kind Kind, q Query, order bson.D) ([]T, error) {
	if err := q.check(kind); err != nil {
		return nil, err
	}
	filter := bson.M{}
	if q.Field != "" {
		filter[q.Field] = q.Value
	}
	opts := options.Find().SetSort(order)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoErr(err, kind, "")
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mongoErr(err, kind, "")
	}
	return out, nil
}

// CreateUser inserts a new user
func (m *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := prepare(&u.ID, &u.CreatedAt, u); err != nil {
		return err
	}
	return insertDoc(ctx, m.coll(KindUser), KindUser, u.ID, u)
}

// GetUser retrieves a user by id
func (m *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findDoc[models.User](ctx, m.coll(KindUser), KindUser, id)
}

// UpdateUser replaces an existing user
func (m *MongoStore) UpdateUser(ctx context.Context, u *models.User) error {
	if err := models.Validate(u); err != nil {
		return err
	}
	return replaceDoc(ctx, m.coll(KindUser), KindUser, u.ID, u)
}

// DeleteUser removes a user
func (m *MongoStore) DeleteUser(ctx context.Context, id string) error {
	return deleteDoc(ctx, m.coll(KindUser), KindUser, id)
}

// ListUsers retrieves users matching q
func (m *MongoStore) ListUsers(ctx context.Context, q Query) ([]models.User, error) {
	return findDocs[models.User](ctx, m.coll(KindUser), KindUser, q,
		bson.D{{Key: "total_points", Value: -1}, {Key: "_id", Value: 1}})
}

// CreateTeam inserts a new team
func (m *MongoStore) CreateTeam(ctx context.Context, t *models.Team) error {
	if err := prepare(&t.ID, &t.CreatedAt, t); err != nil {
		return err
	}
	return insertDoc(ctx, m.coll(KindTeam), KindTeam, t.ID, t)
}

// GetTeam retrieves a team by id
func (m *MongoStore) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	return findDoc[models.Team](ctx, m.coll(KindTeam), KindTeam, id)
}

// UpdateTeam replaces an existing team
func (m *MongoStore) UpdateTeam(ctx context.Context, t *models.Team) error {
	if err := models.Validate(t); err != nil {
		return err
	}
	return replaceDoc(ctx, m.coll(KindTeam), KindTeam, t.ID, t)
}

// DeleteTeam removes a team
func (m *MongoStore) DeleteTeam(ctx context.Context, id string) error {
	return deleteDoc(ctx, m.coll(KindTeam), KindTeam, id)
}

// ListTeams retrieves teams matching q
func (m *MongoStore) ListTeams(ctx context.Context, q Query) ([]models.Team, error) {
	return findDocs[models.Team](ctx, m.coll(KindTeam), KindTeam, q,
		bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
}

// CreateWorkout inserts a new workout
func (m *MongoStore) CreateWorkout(ctx context.Context, w *models.Workout) error {
	if err := prepare(&w.ID, &w.CreatedAt, w); err != nil {
		return err
	}
	return insertDoc(ctx, m.coll(KindWorkout), KindWorkout, w.ID, w)
}

// GetWorkout retrieves a workout by id
func (m *MongoStore) GetWorkout(ctx context.Context, id string) (*models.Workout, error) {
	return findDoc[models.Workout](ctx, m.coll(KindWorkout), KindWorkout, id)
}

// UpdateWorkout replaces an existing workout
func (m *MongoStore) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	if err := models.Validate(w); err != nil {
		return err
	}
	return replaceDoc(ctx, m.coll(KindWorkout), KindWorkout, w.ID, w)
}

// DeleteWorkout removes a workout
func (m *MongoStore) DeleteWorkout(ctx context.Context, id string) error {
	return deleteDoc(ctx, m.coll(KindWorkout), KindWorkout, id)
}

// ListWorkouts retrieves workouts matching q
func (m *MongoStore) ListWorkouts(ctx context.Context, q Query) ([]models.Workout, error) {
	return findDocs[models.Workout](ctx, m.coll(KindWorkout), KindWorkout, q,
		bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
}

// CreateActivity inserts a new activity
func (m *MongoStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	if err := prepare(&a.ID, &a.Date, a); err != nil {
		return err
	}
	return insertDoc(ctx, m.coll(KindActivity), KindActivity, a.ID, a)
}

// GetActivity retrieves an activity by id
func (m *MongoStore) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	return findDoc[models.Activity](ctx, m.coll(KindActivity), KindActivity, id)
}

// UpdateActivity replaces an existing activity
func (m *MongoStore) UpdateActivity(ctx context.Context, a *models.Activity) error {
	if err := models.Validate(a); err != nil {
		return err
	}
	return replaceDoc(ctx, m.coll(KindActivity), KindActivity, a.ID, a)
}

// DeleteActivity removes an activity
func (m *MongoStore) DeleteActivity(ctx context.Context, id string) error {
	return deleteDoc(ctx, m.coll(KindActivity), KindActivity, id)
}

// ListActivities retrieves activities matching q
func (m *MongoStore) ListActivities(ctx context.Context, q Query) ([]models.Activity, error) {
	return findDocs[models.Activity](ctx, m.coll(KindActivity), KindActivity, q,
		bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}})
}

// GetLeaderboardEntry retrieves a leaderboard entry by id
func (m *MongoStore) GetLeaderboardEntry(ctx context.Context, id string) (*models.LeaderboardEntry, error) {
	return findDoc[models.LeaderboardEntry](ctx, m.coll(KindLeaderboard), KindLeaderboard, id)
}

// ListLeaderboard retrieves leaderboard entries matching q ordered by rank
func (m *MongoStore) ListLeaderboard(ctx context.Context, q Query) ([]models.LeaderboardEntry, error) {
	return findDocs[models.LeaderboardEntry](ctx, m.coll(KindLeaderboard), KindLeaderboard, q,
		bson.D{{Key: "rank", Value: 1}})
}

// ReplaceLeaderboard writes the new entries into a staging collection and
// renames it over the live one, so readers never see a partial leaderboard.
func (m *MongoStore) ReplaceLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error {
	if len(entries) == 0 {
		return mongoErr(m.coll(KindLeaderboard).Drop(ctx), KindLeaderboard, "")
	}

	staging := m.db.Collection(stagingCollection)
	if err := staging.Drop(ctx); err != nil {
		return fmt.Errorf("drop staging: %w", err)
	}

	docs := make([]interface{}, len(entries))
	for i := range entries {
		e := entries[i]
		if e.ID == "" {
			e.ID = models.NewID()
		}
		docs[i] = e
	}
	if _, err := staging.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("fill staging: %w", err)
	}
	if _, err := staging.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "rank", Value: 1}}}); err != nil {
		return fmt.Errorf("index staging: %w", err)
	}

	rename := bson.D{
		{Key: "renameCollection", Value: m.db.Name() + "." + stagingCollection},
		{Key: "to", Value: m.db.Name() + "." + string(KindLeaderboard)},
		{Key: "dropTarget", Value: true},
	}
	if err := m.client.Database("admin").RunCommand(ctx, rename).Err(); err != nil {
		return fmt.Errorf("swap leaderboard: %w", err)
	}
	return nil
}

// Reset drops every collection and recreates the indexes
func (m *MongoStore) Reset(ctx context.Context) error {
	for _, kind := range []Kind{KindUser, KindTeam, KindWorkout, KindActivity, KindLeaderboard} {
		if err := m.coll(kind).Drop(ctx); err != nil {
			return mongoErr(err, kind, "")
		}
	}
	return m.EnsureIndexes(ctx)
}

// Ping checks that the primary is reachable
func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
