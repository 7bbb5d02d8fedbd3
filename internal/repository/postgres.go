package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"octofit/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const leaderboardBatchSize = 500

var _ Store = (*PostgresStore)(nil)

// PostgresStore handles all PostgreSQL operations
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to PostgreSQL and configures the connection pool
func OpenPostgres(ctx context.Context, dsn string, maxOpen int) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen / 3)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, err
	}
	return db, nil
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// AutoMigrate runs database migrations
func (r *PostgresStore) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.Workout{},
		&models.Activity{},
		&models.LeaderboardEntry{},
	)
}

// translate maps gorm errors onto the store sentinels
func translate(err error, kind Kind, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(kind, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s: %v", ErrDuplicate, kind, err)
	}
	return fmt.Errorf("%s: %w", kind, err)
}

// scope applies the equality filter, ordering and limit of q
func (r *PostgresStore) scope(ctx context.Context, kind Kind, q Query, order ...string) (*gorm.DB, error) {
	if err := q.check(kind); err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx)
	if q.Field != "" {
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: q.Field}, Value: q.Value})
	}
	for _, o := range order {
		tx = tx.Order(o)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	return tx, nil
}

func (r *PostgresStore) create(ctx context.Context, kind Kind, id string, v interface{}) error {
	return translate(r.db.WithContext(ctx).Create(v).Error, kind, id)
}

func (r *PostgresStore) get(ctx context.Context, kind Kind, id string, dest interface{}) error {
	return translate(r.db.WithContext(ctx).First(dest, "id = ?", id).Error, kind, id)
}

// update overwrites every column of an existing row
func (r *PostgresStore) update(ctx context.Context, kind Kind, id string, model, v interface{}) error {
	res := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Select("*").Updates(v)
	if res.Error != nil {
		return translate(res.Error, kind, id)
	}
	if res.RowsAffected == 0 {
		return notFound(kind, id)
	}
	return nil
}

func (r *PostgresStore) delete(ctx context.Context, kind Kind, id string, model interface{}) error {
	res := r.db.WithContext(ctx).Delete(model, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, kind, id)
	}
	if res.RowsAffected == 0 {
		return notFound(kind, id)
	}
	return nil
}

// CreateUser inserts a new user
func (r *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := prepare(&u.ID, &u.CreatedAt, u); err != nil {
		return err
	}
	return r.create(ctx, KindUser, u.ID, u)
}

// GetUser retrieves a user by id
func (r *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.get(ctx, KindUser, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser overwrites an existing user
func (r *PostgresStore) UpdateUser(ctx context.Context, u *models.User) error {
	if err := models.Validate(u); err != nil {
		return err
	}
	return r.update(ctx, KindUser, u.ID, &models.User{}, u)
}

// DeleteUser removes a user
func (r *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	return r.delete(ctx, KindUser, id, &models.User{})
}

// ListUsers retrieves users matching q
func (r *PostgresStore) ListUsers(ctx context.Context, q Query) ([]models.User, error) {
	tx, err := r.scope(ctx, KindUser, q, "total_points DESC", "id ASC")
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := tx.Find(&users).Error; err != nil {
		return nil, translate(err, KindUser, "")
	}
	return users, nil
}

// CreateTeam inserts a new team
func (r *PostgresStore) CreateTeam(ctx context.Context, t *models.Team) error {
	if err := prepare(&t.ID, &t.CreatedAt, t); err != nil {
		return err
	}
	return r.create(ctx, KindTeam, t.ID, t)
}

// GetTeam retrieves a team by id
func (r *PostgresStore) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	if err := r.get(ctx, KindTeam, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTeam overwrites an existing team
func (r *PostgresStore) UpdateTeam(ctx context.Context, t *models.Team) error {
	if err := models.Validate(t); err != nil {
		return err
	}
	return r.update(ctx, KindTeam, t.ID, &models.Team{}, t)
}

// DeleteTeam removes a team
func (r *PostgresStore) DeleteTeam(ctx context.Context, id string) error {
	return r.delete(ctx, KindTeam, id, &models.Team{})
}

// ListTeams retrieves teams matching q
func (r *PostgresStore) ListTeams(ctx context.Context, q Query) ([]models.Team, error) {
	tx, err := r.scope(ctx, KindTeam, q, "name ASC", "id ASC")
	if err != nil {
		return nil, err
	}
	teams := []models.Team{}
	if err := tx.Find(&teams).Error; err != nil {
		return nil, translate(err, KindTeam, "")
	}
	return teams, nil
}

// CreateWorkout inserts a new workout
func (r *PostgresStore) CreateWorkout(ctx context.Context, w *models.Workout) error {
	if err := prepare(&w.ID, &w.CreatedAt, w); err != nil {
		return err
	}
	return r.create(ctx, KindWorkout, w.ID, w)
}

// GetWorkout retrieves a workout by id
func (r *PostgresStore) GetWorkout(ctx context.Context, id string) (*models.Workout, error) {
	var w models.Workout
	if err := r.get(ctx, KindWorkout, id, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdateWorkout overwrites an existing workout
func (r *PostgresStore) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	if err := models.Validate(w); err != nil {
		return err
	}
	return r.update(ctx, KindWorkout, w.ID, &models.Workout{}, w)
}

// DeleteWorkout removes a workout
func (r *PostgresStore) DeleteWorkout(ctx context.Context, id string) error {
	return r.delete(ctx, KindWorkout, id, &models.Workout{})
}

// ListWorkouts retrieves workouts matching q
func (r *PostgresStore) ListWorkouts(ctx context.Context, q Query) ([]models.Workout, error) {
	tx, err := r.scope(ctx, KindWorkout, q, "name ASC", "id ASC")
	if err != nil {
		return nil, err
	}
	workouts := []models.Workout{}
	if err := tx.Find(&workouts).Error; err != nil {
		return nil, translate(err, KindWorkout, "")
	}
	return workouts, nil
}

// CreateActivity inserts a new activity
func (r *PostgresStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	if err := prepare(&a.ID, &a.Date, a); err != nil {
		return err
	}
	return r.create(ctx, KindActivity, a.ID, a)
}

// GetActivity retrieves an activity by id
func (r *PostgresStore) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	var a models.Activity
	if err := r.get(ctx, KindActivity, id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateActivity overwrites an existing activity
func (r *PostgresStore) UpdateActivity(ctx context.Context, a *models.Activity) error {
	if err := models.Validate(a); err != nil {
		return err
	}
	return r.update(ctx, KindActivity, a.ID, &models.Activity{}, a)
}

// DeleteActivity removes an activity
func (r *PostgresStore) DeleteActivity(ctx context.Context, id string) error {
	return r.delete(ctx, KindActivity, id, &models.Activity{})
}

// ListActivities retrieves activities matching q
func (r *PostgresStore) ListActivities(ctx context.Context, q Query) ([]models.Activity, error) {
	tx, err := r.scope(ctx, KindActivity, q, "date DESC", "id ASC")
	if err != nil {
		return nil, err
	}
	activities := []models.Activity{}
	if err := tx.Find(&activities).Error; err != nil {
		return nil, translate(err, KindActivity, "")
	}
	return activities, nil
}

// GetLeaderboardEntry retrieves a leaderboard entry by id
func (r *PostgresStore) GetLeaderboardEntry(ctx context.Context, id string) (*models.LeaderboardEntry, error) {
	var e models.LeaderboardEntry
	if err := r.get(ctx, KindLeaderboard, id, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListLeaderboard retrieves leaderboard entries matching q ordered by rank
func (r *PostgresStore) ListLeaderboard(ctx context.Context, q Query) ([]models.LeaderboardEntry, error) {
	tx, err := r.scope(ctx, KindLeaderboard, q, "rank ASC")
	if err != nil {
		return nil, err
	}
	entries := []models.LeaderboardEntry{}
	if err := tx.Find(&entries).Error; err != nil {
		return nil, translate(err, KindLeaderboard, "")
	}
	return entries, nil
}

// ReplaceLeaderboard deletes every entry and inserts the new set in one
// transaction, so readers see either the old or the new leaderboard.
func (r *PostgresStore) ReplaceLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error {
	rows := append([]models.LeaderboardEntry(nil), entries...)
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = models.NewID()
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return fmt.Errorf("clear leaderboard: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, leaderboardBatchSize).Error; err != nil {
			return fmt.Errorf("insert leaderboard: %w", err)
		}
		return nil
	})
}

// Reset deletes every record of every kind
func (r *PostgresStore) Reset(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []interface{}{
			&models.LeaderboardEntry{},
			&models.Activity{},
			&models.Workout{},
			&models.User{},
			&models.Team{},
		} {
			if err := all.Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ping checks if database is reachable
func (r *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (r *PostgresStore) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
