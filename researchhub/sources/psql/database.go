package psql

import (
	"context"
	"fmt"
	"time"

	"researchhub/researchhub/config"
	"researchhub/researchhub/sources"
	"researchhub/researchhub/sources/psql/dao"
	"researchhub/researchhub/sources/psql/models"
	"researchhub/researchhub/utils/logging"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

// Store satisfies sources.Store on top of gorm.
type Store struct {
	*Database
	*dao.UserDAO
	*dao.ConversationDAO
}

var _ sources.Store = (*Store)(nil)

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func NewDatabase(ctx context.Context, cfg config.Config, opts ...Option) (*Store, error) {
	return Open(ctx, postgres.Open(cfg.PostgresDSN()), opts...)
}

// Open connects through any gorm dialector and migrates the schema.
func Open(ctx context.Context, dialector gorm.Dialector, opts ...Option) (*Store, error) {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        o.now,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	err = db.WithContext(ctx).
		AutoMigrate(
			&models.User{},
			&models.Conversation{},
			&models.ConversationMessage{},
		)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}
	logging.AppLogger.Info("connected to database", zap.String("dialect", db.Dialector.Name()))

	database := &Database{DB: db}
	return &Store{
		Database:        database,
		UserDAO:         dao.NewUserDAO(db, o.now),
		ConversationDAO: dao.NewConversationDAO(db, o.now),
	}, nil
}

func (db *Database) Driver() string {
	return config.DriverPostgres
}

func (db *Database) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *Database) Close(context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
